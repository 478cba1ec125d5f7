package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// All monetary amounts in the system are int64 minor units (cents).
// Parsing and formatting are done with integer math only; floats would
// drift on amounts like 0.29.

// ParseMinor converts a user-entered decimal amount ("100", "100.5",
// "100.00") into minor units. At most two fractional digits are
// accepted.
func ParseMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexAny(s, ".,"); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 || w < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	// w and f are non-negative here; the multiply must not wrap
	if w > (math.MaxInt64-f)/100 {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}

	v := w*100 + f
	if neg {
		v = -v
	}
	return v, nil
}

// FormatMinor renders minor units as a major-unit string with two
// decimal places, e.g. 10000 -> "100.00", -250 -> "-2.50".
func FormatMinor(v int64) string {
	sign := ""
	u := uint64(v)
	if v < 0 {
		sign = "-"
		u = -u // two's-complement negate, exact even for MinInt64
	}
	return fmt.Sprintf("%s%d.%02d", sign, u/100, u%100)
}
