package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of implied decimal places in stored amounts.
const MinorUnitExponent = 2

// FormatAmount renders minor units as a fixed-point decimal string, e.g. 15050 -> "150.50".
func FormatAmount(minor int64) string {
	return decimal.New(minor, -MinorUnitExponent).StringFixed(MinorUnitExponent)
}

// ParseAmount converts a decimal string such as "150.5" into minor units.
// More than two fractional digits is rejected rather than rounded.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	scaled := d.Shift(MinorUnitExponent)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("invalid amount %q: at most %d decimal places", s, MinorUnitExponent)
	}
	if scaled.Abs().GreaterThan(decimal.NewFromInt(maxAmount)) {
		return 0, fmt.Errorf("invalid amount %q: out of range", s)
	}
	return scaled.IntPart(), nil
}

const maxAmount = int64(1) << 53
