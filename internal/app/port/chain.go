package port

import (
	"context"
	"math/big"

	"market_aggregator/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// ChainRegistry exposes the static table of supported chains.
type ChainRegistry interface {
	// Get returns the chain with the given id.
	Get(chainID uint64) (entity.Chain, bool)
	// All returns every known chain sorted by id.
	All() []entity.Chain
}

// Multicaller executes a list of contract calls in a single round trip.
// Results are aligned with calls; a reverted call yields Success=false rather than an error.
type Multicaller interface {
	Aggregate(ctx context.Context, calls []entity.ContractCall) ([]entity.CallResult, error)
}

// ChainClient is a connection to one EVM chain.
type ChainClient interface {
	Multicaller
	bind.ContractCaller

	// ChainID returns the id of the chain this client is bound to.
	ChainID() uint64
	// NativeBalanceCall builds a Multicall3 getEthBalance call for account.
	NativeBalanceCall(account string) entity.ContractCall
	// NativeBalance reads the native balance directly, bypassing Multicall3.
	NativeBalance(ctx context.Context, account string) (*big.Int, error)
}

// ChainClientProvider hands out cached ChainClients.
type ChainClientProvider interface {
	GetClient(ctx context.Context, chain entity.Chain) (ChainClient, error)
}
