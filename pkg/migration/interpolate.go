package migration

import "math"

// RadiusAt returns the galactocentric radius a population occupies at
// query time t, given its formation radius, its sampled final radius
// and the formation/end times. Every mode reports rOrigin exactly at
// tOrigin and rFinal exactly at tEnd, so zone routing never sees a
// discontinuity at formation or finalization.
//
// For ModeSudden the single jump happens at tEnd. ModePostProcess
// holds the population at rOrigin for the whole run; the external
// post-process pass applies final radii through FinalRadius.
func (m Mode) RadiusAt(t, rOrigin, rFinal, tOrigin, tEnd float64) float64 {
	if t <= tOrigin {
		return rOrigin
	}
	if t >= tEnd {
		return rFinal
	}
	switch m {
	case ModeLinear:
		frac := (t - tOrigin) / (tEnd - tOrigin)
		return rOrigin + (rFinal-rOrigin)*frac
	case ModeDiffusion:
		frac := (t - tOrigin) / (tEnd - tOrigin)
		return rOrigin + (rFinal-rOrigin)*math.Sqrt(frac)
	case ModeSudden, ModePostProcess:
		return rOrigin
	default:
		return rOrigin
	}
}

// FinalRadius is the final-only query path used by post-run passes.
// Unlike RadiusAt it never consults the clock: every mode, including
// ModePostProcess, reports the sampled final radius.
func (m Mode) FinalRadius(rFinal float64) float64 {
	return rFinal
}

// ZoneAt maps a continuous galactocentric radius onto a discrete
// annular zone index. Radii are guaranteed positive upstream by the
// radial sampler's rejection loop.
func ZoneAt(radius, zoneWidth float64) int {
	return int(math.Floor(radius / zoneWidth))
}
