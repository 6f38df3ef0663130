package tdam

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// expDateMap is the shape of callExpDateMap/putExpDateMap: expiry key
// ("2019-08-23:4") to strike key ("200.0") to contracts.
type expDateMap map[string]map[string][]Option

// chainResponse is the body of the option chain endpoint.
type chainResponse struct {
	Symbol         string     `json:"symbol"`
	Status         string     `json:"status"`
	CallExpDateMap expDateMap `json:"callExpDateMap"`
	PutExpDateMap  expDateMap `json:"putExpDateMap"`
}

func (r *chainResponse) side(right Right) expDateMap {
	if right == Call {
		return r.CallExpDateMap
	}
	return r.PutExpDateMap
}

const strategySingle = "SINGLE"

func (c *Client) fetchChain(ctx context.Context, params url.Values) (*chainResponse, error) {
	params.Set("strategy", strategySingle)

	body, err := c.Get(ctx, c.endpoints.OptionChain(), params)
	if err != nil {
		return nil, err
	}

	var chain chainResponse
	if err := decodeJSON(body, &chain); err != nil {
		return nil, err
	}
	return &chain, nil
}

// GetExpirations returns the expiration dates (YYYY-MM-DD) listed for
// symbol, in ascending order.
func (c *Client) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("contractType", string(Call))
	params.Set("range", "NTM")

	chain, err := c.fetchChain(ctx, params)
	if err != nil {
		return nil, err
	}

	expiries := make([]string, 0, len(chain.CallExpDateMap))
	for key := range chain.CallExpDateMap {
		date, _, _ := strings.Cut(key, ":")
		expiries = append(expiries, date)
	}
	sort.Strings(expiries)
	return expiries, nil
}

// GetOptionChain retrieves every call and put of symbol expiring on expiry
// (YYYY-MM-DD). Both arguments are required.
func (c *Client) GetOptionChain(ctx context.Context, symbol, expiry string) (*OptionChain, error) {
	if symbol == "" || expiry == "" {
		return nil, fmt.Errorf("%w: symbol and expiry are both required", ErrInvalidArgument)
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("fromDate", expiry)
	params.Set("toDate", expiry)

	resp, err := c.fetchChain(ctx, params)
	if err != nil {
		return nil, err
	}

	chain := &OptionChain{symbol: symbol, expiry: expiry}
	if chain.calls, err = indexStrikes(resp.CallExpDateMap, expiry); err != nil {
		return nil, err
	}
	if chain.puts, err = indexStrikes(resp.PutExpDateMap, expiry); err != nil {
		return nil, err
	}
	return chain, nil
}

// expiryMatches reports whether an expiry key ("2019-08-23:4") is for the
// date expiry.
func expiryMatches(expKey, expiry string) bool {
	date, _, _ := strings.Cut(expKey, ":")
	return date == expiry
}

// indexStrikes keys the first contract at each strike of the expiry by its
// canonical strike.
func indexStrikes(m expDateMap, expiry string) (map[string]Option, error) {
	out := make(map[string]Option)
	for expKey, strikes := range m {
		if !expiryMatches(expKey, expiry) {
			continue
		}
		for strikeKey, contracts := range strikes {
			if len(contracts) == 0 {
				continue
			}
			key, err := canonicalStrikeKey(strikeKey)
			if err != nil {
				return nil, err
			}
			out[key] = contracts[0]
		}
	}
	return out, nil
}

// GetOption retrieves a single contract. right accepts the same tokens as
// ParseRight.
func (c *Client) GetOption(ctx context.Context, symbol, expiry, right string, strike float64) (Option, error) {
	if symbol == "" || expiry == "" {
		return Option{}, fmt.Errorf("%w: symbol and expiry are both required", ErrInvalidArgument)
	}
	r, err := ParseRight(right)
	if err != nil {
		return Option{}, err
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("contractType", string(r))
	params.Set("strike", formatStrikeParam(strike))
	params.Set("fromDate", expiry)
	params.Set("toDate", expiry)

	resp, err := c.fetchChain(ctx, params)
	if err != nil {
		return Option{}, err
	}

	side := resp.side(r)
	if len(side) == 0 {
		return Option{}, fmt.Errorf("%w: no %s options for %s", ErrSymbolNotFound, r, symbol)
	}

	want := CanonicalStrike(strike)
	for expKey, strikes := range side {
		if !expiryMatches(expKey, expiry) {
			continue
		}
		for strikeKey, contracts := range strikes {
			key, err := canonicalStrikeKey(strikeKey)
			if err != nil {
				return Option{}, err
			}
			if key == want && len(contracts) > 0 {
				return contracts[0], nil
			}
		}
	}
	return Option{}, fmt.Errorf("%w: %s %s %s %s", ErrSymbolNotFound, symbol, expiry, r, want)
}
