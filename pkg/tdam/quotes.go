package tdam

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Quotes retrieves quotes for symbols in a single request. A response that
// resolves none of them fails with ErrSymbolNotFound.
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	joined := strings.Join(symbols, ",")
	params := url.Values{}
	params.Set("symbol", joined)

	body, err := c.Get(ctx, c.endpoints.Quotes(), params)
	if err != nil {
		return nil, err
	}

	var quotes map[string]Quote
	if err := decodeJSON(body, &quotes); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, joined)
	}

	return quotes, nil
}

// Quote retrieves the quote of one symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (Quote, error) {
	quotes, err := c.Quotes(ctx, []string{symbol})
	if err != nil {
		return Quote{}, err
	}

	q, ok := quotes[symbol]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return q, nil
}

// Stock returns the quote of symbol viewed as a Stock.
func (c *Client) Stock(ctx context.Context, symbol string) (Stock, error) {
	q, err := c.Quote(ctx, symbol)
	if err != nil {
		return Stock{}, err
	}
	return Stock{Entity: q.Entity}, nil
}
