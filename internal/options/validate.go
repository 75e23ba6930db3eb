package options

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Validation errors. They are advisory: callers show a warning but still
// store and forward the raw value.
var (
	// ErrNotNumber indicates the value is not a number or is negative.
	ErrNotNumber = errors.New("gap must be a number of at least 0")

	// ErrNotWholeNumber indicates the value has a fractional part.
	ErrNotWholeNumber = errors.New("gap must be a whole number")
)

// ValidateGap checks a raw gap value. Unset is always valid.
func ValidateGap(raw string) error {
	if raw == Unset {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return ErrNotNumber
	}
	if n != math.Trunc(n) {
		return ErrNotWholeNumber
	}
	return nil
}

// Validate checks the value of the field at path.
// Toggle fields and unknown paths yield nil; unknown paths are reported by Set.
func Validate(path, raw string) error {
	f, ok := Lookup(path)
	if !ok || f.Kind != KindGap {
		return nil
	}
	return ValidateGap(raw)
}
