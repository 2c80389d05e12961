package bubble

import "math"

// Scale maps metric values to circle radii.
//
// r(v) = MinRadius + (MaxRadius-MinRadius) * sqrt(v / D), where D is the
// larger of Domain and the largest value in the triple being laid out. The
// square root keeps circle area proportional to value. Zero maps to
// MinRadius.
type Scale struct {
	MinRadius float64
	MaxRadius float64
	Domain    float64
}

// DefaultScale fits values up to 21, the top of the usual Fibonacci
// estimation range.
func DefaultScale() Scale {
	return Scale{MinRadius: 1.5, MaxRadius: 24, Domain: 21}
}

func (s Scale) normalized() Scale {
	d := DefaultScale()
	if s.MinRadius <= 0 {
		s.MinRadius = d.MinRadius
	}
	if s.MaxRadius <= s.MinRadius {
		s.MaxRadius = s.MinRadius + (d.MaxRadius - d.MinRadius)
	}
	if s.Domain <= 0 {
		s.Domain = d.Domain
	}
	return s
}

// Radii returns the radius for each value of the triple using one shared
// scale.
func (s Scale) Radii(values [3]float64) [3]float64 {
	s = s.normalized()
	domain := s.Domain
	for _, v := range values {
		if v > domain && !math.IsInf(v, 1) {
			domain = v
		}
	}
	var out [3]float64
	for i, v := range values {
		out[i] = s.radius(v, domain)
	}
	return out
}

func (s Scale) radius(v, domain float64) float64 {
	if !(v > 0) || math.IsInf(v, 1) {
		return s.MinRadius
	}
	return s.MinRadius + (s.MaxRadius-s.MinRadius)*math.Sqrt(v/domain)
}
