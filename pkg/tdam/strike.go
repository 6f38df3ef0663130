package tdam

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// strikePlaces is the precision strikes are compared at.
const strikePlaces = 4

// CanonicalStrike returns the map key for a strike price. Strikes are
// rounded to four decimal places and always rendered with a fractional part,
// so 150, 150.0 and 150.00001 all map to "150.0". Every strike lookup and
// every strike key read from the API goes through this function.
func CanonicalStrike(strike float64) string {
	if math.IsNaN(strike) || math.IsInf(strike, 0) {
		return strconv.FormatFloat(strike, 'f', -1, 64)
	}
	strike += 0 // -0.0 becomes 0.0
	s := decimal.NewFromFloat(strike).Round(strikePlaces).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// canonicalStrikeKey re-keys a strike string as returned by the API.
func canonicalStrikeKey(key string) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	if err != nil {
		return "", fmt.Errorf("invalid strike key %q: %w", key, err)
	}
	return CanonicalStrike(f), nil
}

// formatStrikeParam renders a strike for the strike query parameter.
func formatStrikeParam(strike float64) string {
	if math.IsNaN(strike) || math.IsInf(strike, 0) {
		return strconv.FormatFloat(strike, 'f', -1, 64)
	}
	return decimal.NewFromFloat(strike).Round(strikePlaces).String()
}

// Right is the side of an option contract.
type Right string

const (
	Call Right = "CALL"
	Put  Right = "PUT"
)

// ParseRight accepts "c", "call", "p" or "put" in any case.
func ParseRight(s string) (Right, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "call":
		return Call, nil
	case "p", "put":
		return Put, nil
	}
	return "", fmt.Errorf("%w: option right %q, use C/CALL or P/PUT", ErrInvalidArgument, s)
}
