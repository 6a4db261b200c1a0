package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenBalance pairs a token with the raw balance held by an account.
// PriceUSD is invalid when no price could be resolved; ValueUSD is zero in that case.
type TokenBalance struct {
	Token            Token               `json:"token"`
	Balance          *big.Int            `json:"balance"`
	FormattedBalance string              `json:"formattedBalance"`
	PriceUSD         decimal.NullDecimal `json:"priceUSD"`
	ValueUSD         decimal.Decimal     `json:"valueUSD"`
}

// BalanceOptions controls balance aggregation.
type BalanceOptions struct {
	ShowEmpty bool
	Currency  string
}
