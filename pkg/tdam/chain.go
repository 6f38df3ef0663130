package tdam

import (
	"fmt"
	"sort"
	"strconv"
)

// OptionChain holds the contracts of one symbol and expiry, keyed by
// canonical strike on each side. It is immutable once built.
type OptionChain struct {
	symbol string
	expiry string
	calls  map[string]Option
	puts   map[string]Option
}

// VerticalSpread is two options of the same right at different strikes.
type VerticalSpread struct {
	Long  Option
	Short Option
}

// Straddle is a call and a put at the same strike.
type Straddle struct {
	Call Option
	Put  Option
}

// Strangle is a call and a put at independently chosen strikes.
type Strangle struct {
	Call Option
	Put  Option
}

// Symbol returns the underlying symbol.
func (c *OptionChain) Symbol() string { return c.symbol }

// Expiry returns the expiration date the chain was requested for.
func (c *OptionChain) Expiry() string { return c.expiry }

func (c *OptionChain) side(right string) (map[string]Option, error) {
	r, err := ParseRight(right)
	if err != nil {
		return nil, err
	}
	if r == Call {
		return c.calls, nil
	}
	return c.puts, nil
}

// Get returns the contract at strike on the given side, or nil when the
// chain has no contract there. right accepts the same tokens as ParseRight.
func (c *OptionChain) Get(strike float64, right string) (*Option, error) {
	side, err := c.side(right)
	if err != nil {
		return nil, err
	}
	opt, ok := side[CanonicalStrike(strike)]
	if !ok {
		return nil, nil
	}
	return &opt, nil
}

// Len returns the number of strikes on one side.
func (c *OptionChain) Len(right string) (int, error) {
	side, err := c.side(right)
	if err != nil {
		return 0, err
	}
	return len(side), nil
}

// Strikes returns the strikes on one side in ascending order.
func (c *OptionChain) Strikes(right string) ([]float64, error) {
	side, err := c.side(right)
	if err != nil {
		return nil, err
	}
	strikes := make([]float64, 0, len(side))
	for k := range side {
		f, err := strconv.ParseFloat(k, 64)
		if err != nil {
			continue
		}
		strikes = append(strikes, f)
	}
	sort.Float64s(strikes)
	return strikes, nil
}

// leg looks up a required contract.
func (c *OptionChain) leg(strike float64, right string) (Option, error) {
	opt, err := c.Get(strike, right)
	if err != nil {
		return Option{}, err
	}
	if opt == nil {
		return Option{}, fmt.Errorf("%w: no %s %s at strike %s", ErrSymbolNotFound, c.symbol, right, CanonicalStrike(strike))
	}
	return *opt, nil
}

// GetVertical returns the long and short legs of a vertical spread.
func (c *OptionChain) GetVertical(right string, longStrike, shortStrike float64) (VerticalSpread, error) {
	long, err := c.leg(longStrike, right)
	if err != nil {
		return VerticalSpread{}, err
	}
	short, err := c.leg(shortStrike, right)
	if err != nil {
		return VerticalSpread{}, err
	}
	return VerticalSpread{Long: long, Short: short}, nil
}

// GetStraddle returns the call and put at strike.
func (c *OptionChain) GetStraddle(strike float64) (Straddle, error) {
	call, err := c.leg(strike, string(Call))
	if err != nil {
		return Straddle{}, err
	}
	put, err := c.leg(strike, string(Put))
	if err != nil {
		return Straddle{}, err
	}
	return Straddle{Call: call, Put: put}, nil
}

// GetStrangle returns the call at callStrike and the put at putStrike.
func (c *OptionChain) GetStrangle(callStrike, putStrike float64) (Strangle, error) {
	call, err := c.leg(callStrike, string(Call))
	if err != nil {
		return Strangle{}, err
	}
	put, err := c.leg(putStrike, string(Put))
	if err != nil {
		return Strangle{}, err
	}
	return Strangle{Call: call, Put: put}, nil
}
