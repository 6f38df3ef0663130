package tdam

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Frequency is the bar size of a price history request.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	Frequency1Min    Frequency = "1min"
	Frequency5Min    Frequency = "5min"
	Frequency10Min   Frequency = "10min"
	Frequency15Min   Frequency = "15min"
	Frequency30Min   Frequency = "30min"
)

// IntradayWindow is how far back intraday history can be requested.
const IntradayWindow = 30 * 24 * time.Hour

// historyParams are the transport parameters one Frequency maps to.
type historyParams struct {
	periodType    string
	frequencyType string
	frequency     int
}

var frequencyTable = map[Frequency]historyParams{
	FrequencyDaily:   {"year", "daily", 1},
	FrequencyWeekly:  {"year", "weekly", 1},
	FrequencyMonthly: {"year", "monthly", 1},
	Frequency1Min:    {"day", "minute", 1},
	Frequency5Min:    {"day", "minute", 5},
	Frequency10Min:   {"day", "minute", 10},
	Frequency15Min:   {"day", "minute", 15},
	Frequency30Min:   {"day", "minute", 30},
}

// Frequencies returns every supported frequency, daily first.
func Frequencies() []Frequency {
	return []Frequency{
		FrequencyDaily, FrequencyWeekly, FrequencyMonthly,
		Frequency1Min, Frequency5Min, Frequency10Min, Frequency15Min, Frequency30Min,
	}
}

// ParseFrequency normalizes s to a supported Frequency.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := frequencyTable[f]; !ok {
		return "", fmt.Errorf("%w: frequency %q not supported, use one of %v", ErrInvalidArgument, s, Frequencies())
	}
	return f, nil
}

// Intraday reports whether f is a minute granularity.
func (f Frequency) Intraday() bool {
	return frequencyTable[f].frequencyType == "minute"
}

// priceHistoryResponse is the body of the price history endpoint.
type priceHistoryResponse struct {
	Candles []Candle `json:"candles"`
	Symbol  string   `json:"symbol"`
	Empty   *bool    `json:"empty"`
}

// GetHistory retrieves price bars for symbol between start and end.
//
// It returns nil, nil when the API flags the result as empty, and a non-nil
// slice otherwise. Intraday frequencies only reach back IntradayWindow.
func (c *Client) GetHistory(ctx context.Context, symbol string, start, end time.Time, freq Frequency, outsideRTH bool) ([]Candle, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidArgument)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: start date should be before end date", ErrInvalidArgument)
	}

	freq, err := ParseFrequency(string(freq))
	if err != nil {
		return nil, err
	}
	if freq.Intraday() && start.Before(c.now().Add(-IntradayWindow)) {
		return nil, fmt.Errorf("%w: intraday history is only available for the last 30 days", ErrInvalidArgument)
	}

	p := frequencyTable[freq]
	params := url.Values{}
	params.Set("periodType", p.periodType)
	params.Set("frequencyType", p.frequencyType)
	params.Set("frequency", strconv.Itoa(p.frequency))
	params.Set("needExtendedHoursData", strconv.FormatBool(outsideRTH))
	params.Set("startDate", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endDate", strconv.FormatInt(end.UnixMilli(), 10))

	body, err := c.Get(ctx, c.endpoints.PriceHistory(symbol), params)
	if err != nil {
		return nil, err
	}

	var hist priceHistoryResponse
	if err := decodeJSON(body, &hist); err != nil {
		return nil, err
	}
	if hist.Empty == nil {
		return nil, fmt.Errorf("%w: price history response has no empty flag", ErrMissingField)
	}
	if *hist.Empty {
		return nil, nil
	}
	if hist.Candles == nil {
		hist.Candles = []Candle{}
	}
	return hist.Candles, nil
}
