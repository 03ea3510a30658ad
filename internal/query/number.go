package query

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// parseFloat parses s as an IEEE-754 double in plain decimal notation.
// Magnitudes beyond the float64 range round to ±Inf. Digit separators and
// hex floats are Go literal syntax, not data, and are rejected.
func parseFloat(s string) (float64, bool) {
	if strings.IndexByte(s, '_') >= 0 || hasHexPrefix(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return v, true
		}
		return 0, false
	}
	return v, true
}

func hasHexPrefix(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// parseNumber parses s as float64, mapping any failure to NaN.
func parseNumber(s string) float64 {
	v, ok := parseFloat(s)
	if !ok {
		return math.NaN()
	}
	return v
}
