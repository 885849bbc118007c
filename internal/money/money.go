// Package money works in integer minor units (cents). Amounts cross the API as
// decimal strings and are converted exactly at the boundary, so no float ever
// touches a stored balance.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Parse converts a decimal string like "12.50" to cents. At most two fraction
// digits are kept; a third digit rounds half-up. Negative amounts are rejected,
// the ledger has no use for them.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}
	wholeStr, fracStr := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		wholeStr, fracStr = s[:i], s[i+1:]
	}
	var whole int64
	for _, c := range wholeStr {
		if c < '0' || c > '9' {
			return 0, ErrInvalidAmount
		}
		whole = whole*10 + int64(c-'0')
		if whole > math.MaxInt64/100 {
			return 0, ErrInvalidAmount
		}
	}
	cents := whole * 100
	for _, c := range fracStr {
		if c < '0' || c > '9' {
			return 0, ErrInvalidAmount
		}
	}
	if len(fracStr) > 0 {
		cents += int64(fracStr[0]-'0') * 10
	}
	if len(fracStr) > 1 {
		cents += int64(fracStr[1] - '0')
	}
	if len(fracStr) > 2 && fracStr[2] >= '5' {
		cents++ // half-up on the third decimal
	}
	return cents, nil
}

// FromFloat rounds a float amount half-away-from-zero to cents. Only used when
// interoperating with float inputs; stored values are always int64 cents.
func FromFloat(f float64) int64 {
	return int64(math.Round(f * 100))
}

// Format renders cents as a plain decimal string: 1250 -> "12.50".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
