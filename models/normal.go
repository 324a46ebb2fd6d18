package models

import "math"

// Abramowitz & Stegun 7.1.26 coefficients for erf, max error 1.5e-7.
const (
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
	erfP  = 0.3275911
)

// normalCDF approximates the standard normal CDF through the A&S erf
// polynomial. Fixtures depend on these exact coefficients; do not swap in
// math.Erf.
func normalCDF(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	z := math.Abs(x) / math.Sqrt2

	t := 1.0 / (1.0 + erfP*z)
	y := 1.0 - (((((erfA5*t+erfA4)*t)+erfA3)*t+erfA2)*t+erfA1)*t*math.Exp(-z*z)

	return 0.5 * (1.0 + sign*y)
}

// normalPDF is the standard normal density.
func normalPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
