package migration

import (
	"math"

	"golang.org/x/exp/rand"
)

// VerticalSampler draws final vertical heights above the galactic
// midplane from a sech^2 density profile via inverse-CDF sampling.
type VerticalSampler struct {
	rnd *rand.Rand
}

// NewVerticalSampler creates a vertical sampler backed by the given
// random source.
func NewVerticalSampler(src rand.Source) *VerticalSampler {
	return &VerticalSampler{rnd: rand.New(src)}
}

// SechScale returns the scale height h_z of the vertical profile for a
// population of the given age in Gyr and final radius in kpc,
//
//	h_z = 0.25 exp((age - 5) / 7) exp((Rfinal - 8) / 6)
func SechScale(age, radiusFinal float64) float64 {
	return 0.25 * math.Exp((age-5)/7.0) * math.Exp((radiusFinal-8)/6.0)
}

// InvSechCDF inverts the CDF of the sech^2 profile, which takes the
// logistic form 1 / (1 + exp(-z/h)). The uniform variate u must lie in
// the open interval (0, 1).
func InvSechCDF(u, scale float64) float64 {
	return -scale * math.Log(1/u-1)
}

// Sample draws a final vertical height for a population of the given
// age and final radius.
func (s *VerticalSampler) Sample(age, radiusFinal float64) float64 {
	return InvSechCDF(s.uniformOpen(), SechScale(age, radiusFinal))
}

// uniformOpen draws from the open interval (0, 1). Endpoint draws are
// rejected and redrawn: u == 0 or u == 1 would send the inverse CDF to
// an infinity.
func (s *VerticalSampler) uniformOpen() float64 {
	for {
		if u := s.rnd.Float64(); u > 0 && u < 1 {
			return u
		}
	}
}
