package port

import (
	"context"

	"market_aggregator/internal/domain/entity"
)

// BalanceService reads and values the balances of one account.
type BalanceService interface {
	GetBalances(ctx context.Context, chainID uint64, account string, tokens []entity.Token, opts entity.BalanceOptions) ([]entity.TokenBalance, error)
}
