package types

import "time"

// RunResult represents the outcome of one multizone simulation run.
type RunResult struct {
	ID        string        `json:"id"`
	Mode      string        `json:"mode"`
	Status    string        `json:"status"`
	Summary   RunSummary    `json:"summary"`
	Metadata  RunMetadata   `json:"metadata"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// RunSummary holds aggregate statistics over the formed populations.
type RunSummary struct {
	Populations     int     `json:"populations"`
	Timesteps       int     `json:"timesteps"`
	Zones           int     `json:"zones"`
	MeanRadiusFinal float64 `json:"mean_radius_final"` // kpc
	StdRadiusFinal  float64 `json:"std_radius_final"`  // kpc
	OutwardFraction float64 `json:"outward_fraction"`  // populations with Rfinal > Rform
	LinkedFraction  float64 `json:"linked_fraction"`   // populations with a backing analog
}

// RunMetadata records the configuration a run was produced with.
type RunMetadata struct {
	ZoneWidth   float64  `json:"zone_width"`  // kpc
	EndTime     float64  `json:"end_time"`    // Gyr
	Timestep    float64  `json:"timestep"`    // Gyr
	Seed        uint64   `json:"seed"`
	OutputFiles []string `json:"output_files,omitempty"`
	Version     string   `json:"version"`
}
