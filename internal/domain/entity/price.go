package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceQuote is the fiat price of a coin or token along with its 24h change in percent.
type PriceQuote struct {
	Price     decimal.Decimal     `json:"price"`
	Change24h decimal.NullDecimal `json:"change24h"`
}

// PriceMap maps a lower-cased token address (or coin id) to its quote.
type PriceMap map[string]PriceQuote

// Lookup returns the quote for key, matching case-insensitively.
// The boolean is false when the price is unknown, which is distinct from a zero price.
func (m PriceMap) Lookup(key string) (PriceQuote, bool) {
	if m == nil {
		return PriceQuote{}, false
	}
	q, ok := m[strings.ToLower(key)]
	return q, ok
}

// Clone returns a shallow copy so callers can add entries without touching a cached map.
func (m PriceMap) Clone() PriceMap {
	out := make(PriceMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
