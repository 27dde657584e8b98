// Package migration implements the stellar-migration sampling
// subsystem of the multizone model: formation-time sampling of final
// galactocentric radii and vertical heights, time-interpolated
// trajectories between annular zones, and the analog record output
// written alongside a simulation.
package migration

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/lodubay/galactic-dtd-paper/pkg/analog"
)

// Population is the per-star-particle bookkeeping fixed at formation.
// Origin fields are never mutated after the formation call; only the
// zone reported for a query varies with query time.
type Population struct {
	ZoneOrigin   int
	TimeOrigin   float64 // Gyr
	RadiusOrigin float64 // kpc, zoneWidth * (zone + 0.5)
	RadiusFinal  float64 // kpc, sampled once at formation
	AnalogID     int     // analog.NoAnalog when no backing analog
	ZFinal       float64 // kpc, zero when no backing analog
}

// popKey identifies one population. The integrator forms at most one
// population per zone per timestep, so the pair is unique.
type popKey struct {
	zone  int
	tform float64
}

// Scheme is the zone-assignment callback invoked by the external
// multizone integrator once per zone per timestep. It wraps the
// per-particle state the integrator routes mass budgets by, rather
// than extending any integrator type, and owns its random source so a
// fixed seed reproduces a run exactly.
type Scheme struct {
	zoneWidth float64
	endTime   float64
	mode      Mode

	radial *RadialSampler
	rnd    *rand.Rand

	analogs *analog.Dataset // optional; nil means no backing analogs

	writer *AnalogWriter // nil when output is disabled
	write  bool

	index map[popKey]int
	pops  []Population
}

// NewScheme validates the zone grid, duration and mode and creates a
// scheme seeded from seed. Configuration problems fail here, before
// any simulation work.
func NewScheme(zoneWidth, endTime float64, mode Mode, seed uint64) (*Scheme, error) {
	if zoneWidth <= 0 {
		return nil, fmt.Errorf("zone width must be positive, got %g", zoneWidth)
	}
	if endTime <= 0 {
		return nil, fmt.Errorf("end time must be positive, got %g", endTime)
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	src := rand.NewSource(seed)
	return &Scheme{
		zoneWidth: zoneWidth,
		endTime:   endTime,
		mode:      mode,
		radial:    NewRadialSampler(src),
		rnd:       rand.New(src),
		index:     make(map[popKey]int),
	}, nil
}

// AttachAnalogs links the observational analog dataset. Each newly
// formed population draws one analog and carries its measured zfinal.
func (s *Scheme) AttachAnalogs(ds *analog.Dataset) {
	s.analogs = ds
}

// EnableOutput opens the analog record file. Must be called before the
// write gate is switched on.
func (s *Scheme) EnableOutput(path string) error {
	if s.writer != nil {
		return fmt.Errorf("analog output is already enabled")
	}
	w, err := NewAnalogWriter(path)
	if err != nil {
		return err
	}
	s.writer = w
	return nil
}

// SetWrite toggles whether formation calls append analog records. The
// driver switches it on before the run phase that needs output;
// lightweight runs leave it off.
func (s *Scheme) SetWrite(v bool) error {
	if v && s.writer == nil {
		return fmt.Errorf("cannot enable analog writes without an output file")
	}
	s.write = v
	return nil
}

// Mode returns the migration mode the scheme interpolates with.
func (s *Scheme) Mode() Mode {
	return s.mode
}

// AssignZone reports the zone a population occupies at the given time.
// A call with tform == time is the formation instant: it samples the
// population's final radius, links an observational analog and records
// its measured final height, and returns the input zone unchanged.
// Later calls interpolate the recorded trajectory.
func (s *Scheme) AssignZone(zone int, tform, time float64) (int, error) {
	if zone < 0 {
		return 0, fmt.Errorf("zone index must be non-negative, got %d", zone)
	}
	if tform == time {
		return s.form(zone, tform)
	}
	return s.track(zone, tform, time)
}

// form samples a new population. Re-forming an existing key resets and
// resamples that population in place.
func (s *Scheme) form(zone int, tform float64) (int, error) {
	radiusOrigin := s.zoneWidth * (float64(zone) + 0.5)
	age := s.endTime - tform
	radiusFinal := s.radial.Sample(age, radiusOrigin)

	analogID := analog.NoAnalog
	zFinal := 0.0
	if s.analogs != nil {
		if rec, ok := s.analogs.Record(s.analogs.Pick(s.rnd)); ok {
			analogID = rec.ID
			zFinal = rec.ZFinal
		}
	}

	pop := Population{
		ZoneOrigin:   zone,
		TimeOrigin:   tform,
		RadiusOrigin: radiusOrigin,
		RadiusFinal:  radiusFinal,
		AnalogID:     analogID,
		ZFinal:       zFinal,
	}
	key := popKey{zone: zone, tform: tform}
	i, existed := s.index[key]
	if existed {
		s.pops[i] = pop
	} else {
		s.index[key] = len(s.pops)
		s.pops = append(s.pops, pop)
	}

	// One record per population: a re-formation resets in-memory state
	// but never appends a duplicate.
	if s.write && !existed {
		if err := s.writer.Append(zone, tform, analogID, zFinal); err != nil {
			return 0, err
		}
	}
	return zone, nil
}

// track interpolates the recorded trajectory of an already-formed
// population and maps the radius back to a zone index.
func (s *Scheme) track(zone int, tform, time float64) (int, error) {
	i, ok := s.index[popKey{zone: zone, tform: tform}]
	if !ok {
		return 0, fmt.Errorf("no population formed in zone %d at t = %.4f Gyr", zone, tform)
	}
	p := s.pops[i]
	radius := s.mode.RadiusAt(time, p.RadiusOrigin, p.RadiusFinal, p.TimeOrigin, s.endTime)
	return ZoneAt(radius, s.zoneWidth), nil
}

// Populations returns the formed populations in formation order. The
// slice is owned by the scheme; callers must not mutate it.
func (s *Scheme) Populations() []Population {
	return s.pops
}

// Close flushes and closes the analog record stream. It should be
// called once by the driver after the run; with output disabled it is
// a no-op.
func (s *Scheme) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
