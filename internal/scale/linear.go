// Package scale maps data domains to pixel ranges.
package scale

import (
	"math"
)

// Linear maps a numeric domain onto a pixel range. A zero-width domain maps
// every value to the start of the range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

func NewLinear(d0, d1 float64) *Linear {
	return &Linear{d0: d0, d1: d1, r1: 1}
}

func (s *Linear) Domain() (float64, float64) { return s.d0, s.d1 }
func (s *Linear) Range() (float64, float64)  { return s.r0, s.r1 }

func (s *Linear) SetRange(r0, r1 float64) *Linear {
	s.r0, s.r1 = r0, r1
	return s
}

func (s *Linear) Project(v float64) float64 {
	span := s.d1 - s.d0
	if span == 0 {
		return s.r0
	}
	return s.r0 + (v-s.d0)/span*(s.r1-s.r0)
}

func (s *Linear) Invert(px float64) float64 {
	span := s.r1 - s.r0
	if span == 0 {
		return s.d0
	}
	return s.d0 + (px-s.r0)/span*(s.d1-s.d0)
}

// Nice widens the domain outward to multiples of a 1, 2 or 5 × 10^k step
// chosen for roughly ten ticks.
func (s *Linear) Nice() *Linear {
	step := tickStep(s.d0, s.d1, 10)
	if step == 0 {
		return s
	}
	s.d0 = math.Floor(s.d0/step) * step
	s.d1 = math.Ceil(s.d1/step) * step
	return s
}

// Ticks returns about n evenly spaced round values inside the domain.
func (s *Linear) Ticks(n int) []float64 {
	lo, hi := s.d0, s.d1
	if hi < lo {
		lo, hi = hi, lo
	}
	step := tickStep(lo, hi, n)
	if step == 0 {
		return []float64{lo}
	}
	start := math.Ceil(lo/step) * step
	stop := math.Floor(hi/step)*step + step*0.5
	var out []float64
	for v := start; v < stop; v += step {
		out = append(out, cleanFloat(v, step))
	}
	return out
}

func tickStep(lo, hi float64, n int) float64 {
	span := math.Abs(hi - lo)
	if span == 0 || n <= 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return 0
	}
	step := math.Pow(10, math.Floor(math.Log10(span/float64(n))))
	err := float64(n) / span * step
	switch {
	case err <= 0.15:
		step *= 10
	case err <= 0.35:
		step *= 5
	case err <= 0.75:
		step *= 2
	}
	return step
}

// cleanFloat drops accumulated float noise below the step's precision.
func cleanFloat(v, step float64) float64 {
	digits := math.Max(0, -math.Floor(math.Log10(step)))
	p := math.Pow(10, digits)
	return math.Round(v*p) / p
}
