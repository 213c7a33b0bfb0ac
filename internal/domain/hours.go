package domain

import (
	"math"
	"strconv"
)

// Hours is an optional positive effort estimate. The zero value is "no
// estimate"; zero, negative and NaN inputs collapse to it.
type Hours struct {
	value float64
	set   bool
}

// HoursOf returns v as an estimate, or the absent estimate when v is not a
// positive finite number.
func HoursOf(v float64) Hours {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Hours{}
	}
	return Hours{value: v, set: true}
}

// HoursFromPtr resolves a nullable wire value.
func HoursFromPtr(p *float64) Hours {
	if p == nil {
		return Hours{}
	}
	return HoursOf(*p)
}

// IsSet reports whether an estimate is present.
func (h Hours) IsSet() bool { return h.set }

// Value returns the estimate and whether it is present.
func (h Hours) Value() (float64, bool) { return h.value, h.set }

// Or returns the estimate, or fallback when absent.
func (h Hours) Or(fallback float64) float64 {
	if !h.set {
		return fallback
	}
	return h.value
}

// String formats the estimate without trailing zeros; absent is "0".
func (h Hours) String() string {
	return FormatHours(h.Or(0))
}

// FormatHours renders an hour total the way it appears in task names.
func FormatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
