package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lodubay/galactic-dtd-paper/pkg/analog"
	"github.com/lodubay/galactic-dtd-paper/pkg/migration"
	"github.com/lodubay/galactic-dtd-paper/pkg/multizone"
	"github.com/lodubay/galactic-dtd-paper/pkg/postprocess"
	"github.com/lodubay/galactic-dtd-paper/pkg/utils"
)

const (
	// Application constants
	appName = "galactic-dtd"
	version = "v1.0.0"
)

var (
	// Configuration loaded by the root command
	globalConfig *utils.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Multizone stellar migration simulations",
	Long: `galactic-dtd runs the stellar radial-migration subsystem of a
multizone galactic chemical-evolution model. Each stellar population
formed during a run is assigned a final galactocentric radius from a
Gaussian migration prescription and a final vertical height from a
sech2 disk profile, and its trajectory between annular zones is
interpolated at every timestep under a configurable migration mode
(diffusion, linear, sudden or post-process).

Outputs are a tab-separated analog record file and a per-population
stars table, suitable for comparison against observational survey
samples.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		cfg, err := utils.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		globalConfig = cfg
		return nil
	},
}

// initCmd creates the default configuration file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize simulation configuration",
	Long: `Initialize the galactic-dtd configuration. This creates the default
configuration file under $HOME/.galactic-dtd.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Initializing %s %s\n", appName, version)
		return utils.SaveConfig(utils.DefaultConfig())
	},
}

// runCmd executes a full multizone migration run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a multizone migration simulation",
	Long: `Run the multizone migration simulation with the configured zone
grid, end time and migration mode. One stellar population forms per
zone per timestep; every live population is queried for its current
zone at every step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := globalConfig
		if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
			cfg.Simulation.Mode = mode
		}
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetUint64("seed")
			cfg.Simulation.Seed = seed
		}
		if noOutput, _ := cmd.Flags().GetBool("no-output"); noOutput {
			cfg.Output.Enabled = false
		}

		mode, err := migration.ParseMode(cfg.Simulation.Mode)
		if err != nil {
			return err
		}
		scheme, err := migration.NewScheme(cfg.Simulation.ZoneWidth,
			cfg.Simulation.EndTime, mode, cfg.Simulation.Seed)
		if err != nil {
			return err
		}
		if cfg.HasAnalogs() {
			ds, err := analog.Load(cfg.Analog.Dataset)
			if err != nil {
				return err
			}
			scheme.AttachAnalogs(ds)
		}

		params := multizone.Params{
			ZoneWidth: cfg.Simulation.ZoneWidth,
			MaxRadius: cfg.Simulation.MaxRadius,
			EndTime:   cfg.Simulation.EndTime,
			Timestep:  cfg.Simulation.Timestep,
			Seed:      cfg.Simulation.Seed,
			Version:   version,
		}
		if cfg.Output.Enabled {
			if err := scheme.EnableOutput(cfg.Output.AnalogFile); err != nil {
				return err
			}
			if err := scheme.SetWrite(true); err != nil {
				return err
			}
			params.StarsFile = cfg.Output.StarsFile
		}

		driver, err := multizone.New(params, scheme)
		if err != nil {
			return err
		}
		result, err := driver.Run()
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format run result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

// replaceZfinalCmd re-samples vertical heights in existing outputs
var replaceZfinalCmd = &cobra.Command{
	Use:   "replace-zfinal <analog-file> <stars-file>",
	Short: "Re-sample final vertical heights in an analog record file",
	Long: `Replace every zfinal value in an existing analog record file with a
fresh draw from the sech2 vertical profile, using the age and final
radius of the matching star particle. The analog and stars tables must
come from the same run; a row-count mismatch aborts the pass.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed := globalConfig.Simulation.Seed
		if cmd.Flags().Changed("seed") {
			seed, _ = cmd.Flags().GetUint64("seed")
		}
		return postprocess.Replace(args[0], args[1], seed)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replaceZfinalCmd)

	runCmd.Flags().String("mode", "", "Migration mode (diffusion, linear, sudden, post-process)")
	runCmd.Flags().Uint64("seed", 0, "Random seed override")
	runCmd.Flags().Bool("no-output", false, "Disable analog and stars output files")

	replaceZfinalCmd.Flags().Uint64("seed", 0, "Random seed override")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
