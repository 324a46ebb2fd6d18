package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds half away from zero on the shortest decimal form of f, so
// 0.125 becomes 0.13 rather than falling victim to its binary expansion.
// Non-finite values pass through unchanged.
func Round(f float64, places int32) float64 {
	if !isFinite(f) {
		return f
	}
	r := decimal.NewFromFloat(f).Round(places).InexactFloat64()
	if r == 0 {
		// drop the sign of -0
		return math.Abs(r)
	}
	return r
}
