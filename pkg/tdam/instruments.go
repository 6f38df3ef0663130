package tdam

import (
	"context"
	"fmt"
	"net/url"
)

// Instrument search projections.
const (
	projectionSymbolRegex = "symbol-regex"
	projectionFundamental = "fundamental"
)

// FindInstrument searches instruments whose symbol matches the regular
// expression pattern. No match is an empty map, not an error.
func (c *Client) FindInstrument(ctx context.Context, pattern string) (map[string]Instrument, error) {
	params := url.Values{}
	params.Set("symbol", pattern)
	params.Set("projection", projectionSymbolRegex)

	body, err := c.Get(ctx, c.endpoints.Instruments(), params)
	if err != nil {
		return nil, err
	}

	var found map[string]Instrument
	if err := decodeJSON(body, &found); err != nil {
		return nil, err
	}
	if found == nil {
		found = map[string]Instrument{}
	}
	return found, nil
}

// GetFundamentals retrieves the fundamental data of symbol.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (Fundamental, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("projection", projectionFundamental)

	body, err := c.Get(ctx, c.endpoints.Instruments(), params)
	if err != nil {
		return Fundamental{}, err
	}

	var found map[string]Entity
	if err := decodeJSON(body, &found); err != nil {
		return Fundamental{}, err
	}

	inst, ok := found[symbol]
	if !ok {
		return Fundamental{}, fmt.Errorf("%w: %s not in fundamentals response", ErrMissingField, symbol)
	}
	fund, ok := inst.Object("fundamental")
	if !ok {
		return Fundamental{}, fmt.Errorf("%w: %s has no fundamental object", ErrMissingField, symbol)
	}
	return Fundamental{Entity: fund}, nil
}
