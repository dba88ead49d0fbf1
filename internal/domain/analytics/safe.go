package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// SafeRate returns done/total as a rounded percentage, or 0 when total is
// not positive. Every ratio the pipeline reports goes through this helper so
// that no code path can produce NaN, Inf, or a negative rate.
func SafeRate(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// SafeAmount coerces a nullable monetary value to a non-negative decimal.
// Missing or negative values become zero rather than an error.
func SafeAmount(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid || v.Decimal.IsNegative() {
		return decimal.Zero
	}
	return v.Decimal
}
