package port

import (
	"context"

	"market_aggregator/internal/domain/entity"
)

// TokenProvider serves the token list, including tokens imported at runtime.
type TokenProvider interface {
	TokensForChain(chainID uint64, includeNative bool) []entity.Token
	FindToken(chainID uint64, address string) (entity.Token, bool)
	// AddToken stores token and reports whether it was new.
	AddToken(token entity.Token) bool
}

// TokenService imports and lists tokens.
type TokenService interface {
	ImportToken(ctx context.Context, chainID uint64, address string) (entity.Token, error)
	ListTokens(chainID uint64, includeNative bool) ([]entity.Token, error)
}
