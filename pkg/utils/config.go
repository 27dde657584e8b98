package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lodubay/galactic-dtd-paper/pkg/migration"
)

// Config represents the simulation configuration
type Config struct {
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Analog     AnalogConfig     `yaml:"analog" mapstructure:"analog"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// SimulationConfig contains the multizone run parameters
type SimulationConfig struct {
	ZoneWidth float64 `yaml:"zone_width" mapstructure:"zone_width"` // kpc per zone
	MaxRadius float64 `yaml:"max_radius" mapstructure:"max_radius"` // kpc
	EndTime   float64 `yaml:"end_time" mapstructure:"end_time"`     // Gyr
	Timestep  float64 `yaml:"timestep" mapstructure:"timestep"`     // Gyr
	Mode      string  `yaml:"mode" mapstructure:"mode"`
	Seed      uint64  `yaml:"seed" mapstructure:"seed"`
}

// AnalogConfig points at the observational analog dataset
type AnalogConfig struct {
	Dataset string `yaml:"dataset" mapstructure:"dataset"` // CSV path, empty to disable
}

// OutputConfig contains the run's output file settings
type OutputConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	AnalogFile string `yaml:"analog_file" mapstructure:"analog_file"`
	StarsFile  string `yaml:"stars_file" mapstructure:"stars_file"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".galactic-dtd")

	return &Config{
		Simulation: SimulationConfig{
			ZoneWidth: 0.1,
			MaxRadius: 15.5,
			EndTime:   13.2,
			Timestep:  0.01,
			Mode:      string(migration.ModeDiffusion),
			Seed:      42,
		},
		Analog: AnalogConfig{
			Dataset: "",
		},
		Output: OutputConfig{
			Enabled:    true,
			AnalogFile: filepath.Join(dataDir, "analogdata.out"),
			StarsFile:  filepath.Join(dataDir, "stars.out"),
		},
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	homeDir, _ := os.UserHomeDir()
	viper.AddConfigPath(filepath.Join(homeDir, ".galactic-dtd"))
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	viper.SetEnvPrefix("GALACTIC_DTD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create default
			return createDefaultConfig()
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".galactic-dtd")
	configFile := filepath.Join(configDir, "config.yaml")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Configuration saved to: %s\n", configFile)
	return nil
}

// createDefaultConfig creates and saves a default configuration
func createDefaultConfig() (*Config, error) {
	config := DefaultConfig()

	if err := SaveConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig validates the configuration. Everything here fails
// fast, before any simulation steps run.
func validateConfig(config *Config) error {
	if config.Simulation.ZoneWidth <= 0 {
		return fmt.Errorf("zone width must be positive, got %g", config.Simulation.ZoneWidth)
	}
	if config.Simulation.MaxRadius <= config.Simulation.ZoneWidth {
		return fmt.Errorf("max radius %g must exceed the zone width %g",
			config.Simulation.MaxRadius, config.Simulation.ZoneWidth)
	}
	if config.Simulation.EndTime <= 0 {
		return fmt.Errorf("end time must be positive, got %g", config.Simulation.EndTime)
	}
	if config.Simulation.Timestep <= 0 {
		return fmt.Errorf("timestep must be positive, got %g", config.Simulation.Timestep)
	}
	if _, err := migration.ParseMode(config.Simulation.Mode); err != nil {
		return err
	}
	if config.Output.Enabled {
		if config.Output.AnalogFile == "" {
			return fmt.Errorf("analog output file cannot be empty when output is enabled")
		}
		if config.Output.StarsFile == "" {
			return fmt.Errorf("stars output file cannot be empty when output is enabled")
		}
	}
	return nil
}

// Mode returns the parsed migration mode.
func (c *Config) Mode() migration.Mode {
	mode, _ := migration.ParseMode(c.Simulation.Mode)
	return mode
}

// HasAnalogs checks whether an observational analog dataset is configured
func (c *Config) HasAnalogs() bool {
	return c.Analog.Dataset != ""
}
