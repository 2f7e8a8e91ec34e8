// Package money normalizes monetary amounts. All amounts in the system are
// rounded to 2 decimal places before storage and before comparison, so
// equality checks on rounded values need no epsilon.
package money

import "math"

// Round rounds an amount to 2 decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Equal reports whether two amounts are equal after rounding.
func Equal(a, b float64) bool {
	return Round(a) == Round(b)
}

// NonNegative clamps an amount at zero after rounding.
func NonNegative(v float64) float64 {
	r := Round(v)
	if r < 0 {
		return 0
	}
	return r
}
