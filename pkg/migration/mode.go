package migration

import "fmt"

// Mode denotes the time-dependence of stellar radial migration between
// a population's formation radius and its final radius.
type Mode string

const (
	// ModeDiffusion moves the population with a sqrt-of-elapsed-time
	// dependence, mimicking a diffusive random walk.
	ModeDiffusion Mode = "diffusion"
	// ModeLinear interpolates linearly between formation and end time.
	ModeLinear Mode = "linear"
	// ModeSudden keeps the population at its formation radius until a
	// single jump at the end of the simulation.
	ModeSudden Mode = "sudden"
	// ModePostProcess applies no migration during the run; final radii
	// are applied by an external pass after the simulation completes.
	ModePostProcess Mode = "post-process"
)

// ParseMode validates a migration mode keyword from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDiffusion, ModeLinear, ModeSudden, ModePostProcess:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unrecognized migration mode: %q", s)
	}
}
