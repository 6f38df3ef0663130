package tdam

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// GetMarketHours returns the session hours of markets (EQUITY, OPTION,
// FUTURE, BOND, FOREX) on date, keyed by market then product.
func (c *Client) GetMarketHours(ctx context.Context, markets []string, date time.Time) (map[string]map[string]MarketHours, error) {
	if len(markets) == 0 {
		return nil, fmt.Errorf("%w: at least one market is required", ErrInvalidArgument)
	}

	upper := make([]string, len(markets))
	for i, m := range markets {
		upper[i] = strings.ToUpper(m)
	}

	params := url.Values{}
	params.Set("markets", strings.Join(upper, ","))
	if !date.IsZero() {
		params.Set("date", date.Format("2006-01-02"))
	}

	body, err := c.Get(ctx, c.endpoints.Hours(), params)
	if err != nil {
		return nil, err
	}

	var hours map[string]map[string]MarketHours
	if err := decodeJSON(body, &hours); err != nil {
		return nil, err
	}
	if hours == nil {
		hours = map[string]map[string]MarketHours{}
	}
	return hours, nil
}

// Mover directions and change kinds accepted by GetMovers.
const (
	MoversUp      = "up"
	MoversDown    = "down"
	ChangePercent = "percent"
	ChangeValue   = "value"
)

// GetMovers returns the top movers of index ($COMPX, $DJI, $SPX.X).
// Empty direction or change leave the API defaults.
func (c *Client) GetMovers(ctx context.Context, index, direction, change string) ([]Mover, error) {
	if index == "" {
		return nil, fmt.Errorf("%w: index is required", ErrInvalidArgument)
	}

	params := url.Values{}
	if direction != "" {
		d := strings.ToLower(direction)
		if d != MoversUp && d != MoversDown {
			return nil, fmt.Errorf("%w: direction %q, use up or down", ErrInvalidArgument, direction)
		}
		params.Set("direction", d)
	}
	if change != "" {
		ch := strings.ToLower(change)
		if ch != ChangePercent && ch != ChangeValue {
			return nil, fmt.Errorf("%w: change %q, use percent or value", ErrInvalidArgument, change)
		}
		params.Set("change", ch)
	}

	body, err := c.Get(ctx, c.endpoints.Movers(index), params)
	if err != nil {
		return nil, err
	}

	var movers []Mover
	if err := decodeJSON(body, &movers); err != nil {
		return nil, err
	}
	return movers, nil
}
