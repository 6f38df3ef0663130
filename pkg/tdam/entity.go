package tdam

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Entity is an immutable read-only view over one decoded JSON object.
//
// Numbers are kept as json.Number so integer fields such as timestamps and
// volumes survive decoding exactly. Use the typed lookups (String, Float,
// Int, Bool, Decimal) for arbitrary keys, or the declared accessors on the
// tagged types below for well-known fields.
type Entity struct {
	data map[string]any
}

// NewEntity wraps data. The map is deep-copied so later changes by the
// caller are not visible through the entity.
func NewEntity(data map[string]any) Entity {
	return Entity{data: copyObject(data)}
}

// copyObject deep-copies the nested objects and arrays of m. Scalars are
// immutable and shared.
func copyObject(m map[string]any) map[string]any {
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = copyValue(v)
	}
	return cp
}

func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return copyObject(v)
	case []any:
		cp := make([]any, len(v))
		for i, x := range v {
			cp[i] = copyValue(x)
		}
		return cp
	default:
		return v
	}
}

// Get returns a copy of the raw value stored under key.
func (e Entity) Get(key string) (any, bool) {
	v, ok := e.data[key]
	return copyValue(v), ok
}

// Has reports whether key is present.
func (e Entity) Has(key string) bool {
	_, ok := e.data[key]
	return ok
}

// Keys returns the field names in sorted order.
func (e Entity) Keys() []string {
	keys := make([]string, 0, len(e.data))
	for k := range e.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of fields.
func (e Entity) Len() int { return len(e.data) }

// Data returns a deep copy of the underlying object.
func (e Entity) Data() map[string]any {
	return copyObject(e.data)
}

// String returns the value under key formatted as a string. Missing keys
// and nulls yield "".
func (e Entity) String(key string) string {
	switch v := e.data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the numeric value under key, or 0 when it is missing or not
// a number.
func (e Entity) Float(key string) float64 {
	switch v := e.data[key].(type) {
	case json.Number:
		f, _ := v.Float64()
		return f
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

// Int returns the integer value under key, or 0 when it is missing or not
// an integer.
func (e Entity) Int(key string) int64 {
	switch v := e.data[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return int64(f)
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

// Bool returns the boolean value under key.
func (e Entity) Bool(key string) bool {
	b, _ := e.data[key].(bool)
	return b
}

// Decimal returns the value under key as an exact decimal. Prices should be
// read through this rather than Float when they feed arithmetic.
func (e Entity) Decimal(key string) decimal.Decimal {
	switch v := e.data[key].(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

// Object returns the nested object under key as an Entity. The nested map is
// shared; nothing reachable from an Entity hands it out uncopied.
func (e Entity) Object(key string) (Entity, bool) {
	m, ok := e.data[key].(map[string]any)
	if !ok {
		return Entity{}, false
	}
	return Entity{data: m}, true
}

// MarshalJSON encodes the underlying object.
func (e Entity) MarshalJSON() ([]byte, error) {
	if e.data == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.data)
}

// UnmarshalJSON decodes a JSON object, keeping numbers as json.Number.
func (e *Entity) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	e.data = m
	return nil
}

// Quote is a market quote for one symbol.
type Quote struct{ Entity }

func (q Quote) Symbol() string              { return q.String("symbol") }
func (q Quote) Description() string         { return q.String("description") }
func (q Quote) ExchangeName() string        { return q.String("exchangeName") }
func (q Quote) BidPrice() decimal.Decimal   { return q.Decimal("bidPrice") }
func (q Quote) AskPrice() decimal.Decimal   { return q.Decimal("askPrice") }
func (q Quote) LastPrice() decimal.Decimal  { return q.Decimal("lastPrice") }
func (q Quote) NetChange() decimal.Decimal  { return q.Decimal("netChange") }
func (q Quote) TotalVolume() int64          { return q.Int("totalVolume") }
func (q Quote) QuoteTimeInLong() int64      { return q.Int("quoteTimeInLong") }
func (q Quote) AssetType() string           { return q.String("assetType") }
func (q Quote) ClosePrice() decimal.Decimal { return q.Decimal("closePrice") }
func (q Quote) OpenPrice() decimal.Decimal  { return q.Decimal("openPrice") }
func (q Quote) HighPrice() decimal.Decimal  { return q.Decimal("highPrice") }
func (q Quote) LowPrice() decimal.Decimal   { return q.Decimal("lowPrice") }
func (q Quote) Mark() decimal.Decimal       { return q.Decimal("mark") }
func (q Quote) PERatio() float64            { return q.Float("peRatio") }
func (q Quote) DivYield() float64           { return q.Float("divYield") }
func (q Quote) Volatility() float64         { return q.Float("volatility") }
func (q Quote) Week52High() decimal.Decimal { return q.Decimal("52WkHigh") }
func (q Quote) Week52Low() decimal.Decimal  { return q.Decimal("52WkLow") }
func (q Quote) Delayed() bool               { return q.Bool("delayed") }
func (q Quote) SecurityStatus() string      { return q.String("securityStatus") }

// Stock is an equity view over the same data as a Quote.
type Stock struct{ Entity }

func (s Stock) Symbol() string             { return s.String("symbol") }
func (s Stock) LastPrice() decimal.Decimal { return s.Decimal("lastPrice") }

// Instrument is a search result from the instruments endpoint.
type Instrument struct{ Entity }

func (i Instrument) Symbol() string      { return i.String("symbol") }
func (i Instrument) Cusip() string       { return i.String("cusip") }
func (i Instrument) Description() string { return i.String("description") }
func (i Instrument) Exchange() string    { return i.String("exchange") }
func (i Instrument) AssetType() string   { return i.String("assetType") }

// Fundamental holds the fundamental ratios of one instrument.
type Fundamental struct{ Entity }

func (f Fundamental) Symbol() string     { return f.String("symbol") }
func (f Fundamental) PERatio() float64   { return f.Float("peRatio") }
func (f Fundamental) MarketCap() float64 { return f.Float("marketCap") }
func (f Fundamental) DivYield() float64  { return f.Float("dividendYield") }
func (f Fundamental) Beta() float64      { return f.Float("beta") }

// Option is one option contract.
type Option struct{ Entity }

func (o Option) Symbol() string          { return o.String("symbol") }
func (o Option) Description() string     { return o.String("description") }
func (o Option) PutCall() string         { return o.String("putCall") }
func (o Option) StrikePrice() float64    { return o.Float("strikePrice") }
func (o Option) ExpirationDate() int64   { return o.Int("expirationDate") }
func (o Option) LastTradingDay() int64   { return o.Int("lastTradingDay") }
func (o Option) DaysToExpiration() int64 { return o.Int("daysToExpiration") }
func (o Option) Bid() decimal.Decimal    { return o.Decimal("bid") }
func (o Option) Ask() decimal.Decimal    { return o.Decimal("ask") }
func (o Option) Last() decimal.Decimal   { return o.Decimal("last") }
func (o Option) Mark() decimal.Decimal   { return o.Decimal("mark") }
func (o Option) TotalVolume() int64      { return o.Int("totalVolume") }
func (o Option) OpenInterest() int64     { return o.Int("openInterest") }
func (o Option) Volatility() float64     { return o.Float("volatility") }
func (o Option) Delta() float64          { return o.Float("delta") }
func (o Option) Gamma() float64          { return o.Float("gamma") }
func (o Option) Theta() float64          { return o.Float("theta") }
func (o Option) Vega() float64           { return o.Float("vega") }
func (o Option) InTheMoney() bool        { return o.Bool("inTheMoney") }

// Order is an order record as returned by the orders endpoint.
type Order struct{ Entity }

func (o Order) OrderID() int64      { return o.Int("orderId") }
func (o Order) Status() string      { return o.String("status") }
func (o Order) OrderType() string   { return o.String("orderType") }
func (o Order) EnteredTime() string { return o.String("enteredTime") }

// Candle is one price history bar. Datetime is epoch milliseconds.
type Candle struct{ Entity }

func (c Candle) Open() decimal.Decimal  { return c.Decimal("open") }
func (c Candle) High() decimal.Decimal  { return c.Decimal("high") }
func (c Candle) Low() decimal.Decimal   { return c.Decimal("low") }
func (c Candle) Close() decimal.Decimal { return c.Decimal("close") }
func (c Candle) Volume() int64          { return c.Int("volume") }
func (c Candle) Datetime() int64        { return c.Int("datetime") }

// Account is a securities account record.
type Account struct{ Entity }

// AccountID returns the account number. The API nests it under
// securitiesAccount.
func (a Account) AccountID() string {
	if sa, ok := a.Object("securitiesAccount"); ok {
		return sa.String("accountId")
	}
	return a.String("accountId")
}

// Type returns the account type, e.g. MARGIN or CASH.
func (a Account) Type() string {
	if sa, ok := a.Object("securitiesAccount"); ok {
		return sa.String("type")
	}
	return a.String("type")
}

// Mover is one entry of an index movers list.
type Mover struct{ Entity }

func (m Mover) Symbol() string        { return m.String("symbol") }
func (m Mover) Description() string   { return m.String("description") }
func (m Mover) Direction() string     { return m.String("direction") }
func (m Mover) Change() float64       { return m.Float("change") }
func (m Mover) Last() decimal.Decimal { return m.Decimal("last") }
func (m Mover) TotalVolume() int64    { return m.Int("totalVolume") }

// MarketHours describes the session of one market product on one date.
type MarketHours struct{ Entity }

func (h MarketHours) Date() string        { return h.String("date") }
func (h MarketHours) MarketType() string  { return h.String("marketType") }
func (h MarketHours) Product() string     { return h.String("product") }
func (h MarketHours) ProductName() string { return h.String("productName") }
func (h MarketHours) IsOpen() bool        { return h.Bool("isOpen") }
