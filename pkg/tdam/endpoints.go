package tdam

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.tdameritrade.com/v1/"

// Endpoints is the read-only table of API URLs for one base URL. Build it
// once with NewEndpoints and share the pointer; it has no mutators.
type Endpoints struct {
	base string
}

// NewEndpoints returns the endpoint table rooted at baseURL. An empty
// baseURL selects DefaultBaseURL.
func NewEndpoints(baseURL string) *Endpoints {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Endpoints{base: strings.TrimSuffix(baseURL, "/") + "/"}
}

// Base returns the API root, always ending in a slash.
func (e *Endpoints) Base() string { return e.base }

func (e *Endpoints) Auth() string        { return e.base + "oauth2/token" }
func (e *Endpoints) Quotes() string      { return e.base + "marketdata/quotes" }
func (e *Endpoints) Instruments() string { return e.base + "instruments" }
func (e *Endpoints) OptionChain() string { return e.base + "marketdata/chains" }
func (e *Endpoints) Hours() string       { return e.base + "marketdata/hours" }
func (e *Endpoints) Accounts() string    { return e.base + "accounts" }

// PriceHistory returns the price history URL for symbol.
func (e *Endpoints) PriceHistory(symbol string) string {
	return e.base + "marketdata/" + url.PathEscape(symbol) + "/pricehistory"
}

// Movers returns the movers URL for an index such as $SPX.X.
func (e *Endpoints) Movers(index string) string {
	return e.base + "marketdata/" + url.PathEscape(index) + "/movers"
}

// AccountOrders returns the orders URL for one account.
func (e *Endpoints) AccountOrders(accountID string) string {
	return e.base + "accounts/" + url.PathEscape(accountID) + "/orders"
}
