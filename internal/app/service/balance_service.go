package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/infrastructure/network/abis"
	"market_aggregator/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Symbols priced with the native coin quote.
var nativeLikeSymbols = map[string]struct{}{
	"ETH":   {},
	"MATIC": {},
	"BNB":   {},
	"AVAX":  {},
	"FTM":   {},
}

// Symbols assumed to trade at 1 without a lookup.
var stablecoinSymbols = map[string]struct{}{
	"USDC": {},
	"USDT": {},
	"DAI":  {},
}

// balanceServiceImpl implements port.BalanceService
type balanceServiceImpl struct {
	chains    port.ChainRegistry
	clients   port.ChainClientProvider
	tokens    port.TokenProvider
	prices    port.PriceService
	batcher   *MulticallBatcher
	batchSize int
	logger    port.Logger
}

// NewBalanceService creates a new instance of balanceServiceImpl.
func NewBalanceService(
	chains port.ChainRegistry,
	clients port.ChainClientProvider,
	tokens port.TokenProvider,
	prices port.PriceService,
	batcher *MulticallBatcher,
	batchSize int,
	l port.Logger,
) port.BalanceService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &balanceServiceImpl{
		chains:    chains,
		clients:   clients,
		tokens:    tokens,
		prices:    prices,
		batcher:   batcher,
		batchSize: batchSize,
		logger:    l,
	}
}

// GetBalances reads the balance of every token for account and values it.
// When tokens is nil the chain's token list, native token included, is used.
func (s *balanceServiceImpl) GetBalances(
	ctx context.Context,
	chainID uint64,
	account string,
	tokens []entity.Token,
	opts entity.BalanceOptions,
) ([]entity.TokenBalance, error) {
	if !utils.IsHexAddress(account) {
		return nil, fmt.Errorf("%w: account %q", entity.ErrInvalidAddress, account)
	}
	chain, ok := s.chains.Get(chainID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", entity.ErrUnsupportedChain, chainID)
	}
	if tokens == nil {
		tokens = s.tokens.TokensForChain(chainID, true)
	}
	if len(tokens) == 0 {
		return []entity.TokenBalance{}, nil
	}

	client, err := s.clients.GetClient(ctx, chain)
	if err != nil {
		return nil, fmt.Errorf("failed to get client for chain %d: %w", chainID, err)
	}

	var prices entity.PriceMap
	raw := make([]*big.Int, len(tokens))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		prices = s.prices.GetPricesWithNative(gctx, chainID, tokens, opts.Currency)
		return nil
	})

	offset := 0
	for _, batch := range utils.Chunk(tokens, s.batchSize) {
		start := offset
		offset += len(batch)
		g.Go(func() error {
			return s.readBatch(gctx, client, account, batch, raw[start:start+len(batch)])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch balances for %s on chain %d: %w", account, chainID, err)
	}

	balances := make([]entity.TokenBalance, 0, len(tokens))
	for i, token := range tokens {
		b := s.valueBalance(token, raw[i], prices)
		if !opts.ShowEmpty && !b.ValueUSD.IsPositive() {
			continue
		}
		balances = append(balances, b)
	}

	s.logger.Debug("Balances fetched", "chain_id", chainID, "account", account,
		"tokens", len(tokens), "returned", len(balances))
	return balances, nil
}

func (s *balanceServiceImpl) readBatch(ctx context.Context, client port.ChainClient, account string, batch []entity.Token, out []*big.Int) error {
	holder := common.HexToAddress(account)
	calls := make([]entity.ContractCall, len(batch))
	for i, token := range batch {
		if token.IsNative() {
			calls[i] = client.NativeBalanceCall(account)
			continue
		}
		calls[i] = entity.ContractCall{
			Target: common.HexToAddress(token.Address),
			ABI:    abis.ERC20,
			Method: "balanceOf",
			Args:   []any{holder},
		}
	}

	results, err := s.batcher.Execute(ctx, client, calls)
	if err != nil {
		return err
	}

	for i, res := range results {
		amount, ok := res.BigInt()
		if !ok {
			s.logger.Warn("Balance call failed, treating as zero",
				"token", batch[i].Address, "symbol", batch[i].Symbol, "error", res.Err)
			amount = new(big.Int)
		}
		out[i] = amount
	}
	return nil
}

func (s *balanceServiceImpl) valueBalance(token entity.Token, amount *big.Int, prices entity.PriceMap) entity.TokenBalance {
	if amount == nil {
		amount = new(big.Int)
	}
	formatted, err := utils.FormatBigInt(amount, token.Decimals)
	if err != nil {
		s.logger.Warn("Failed to format balance", "token", token.Address, "error", err)
		formatted = amount.String()
	}

	b := entity.TokenBalance{
		Token:            token,
		Balance:          amount,
		FormattedBalance: formatted,
		ValueUSD:         decimal.Zero,
	}
	if price, ok := PriceForToken(token, prices); ok {
		b.PriceUSD = decimal.NewNullDecimal(price)
		b.ValueUSD = price.Mul(utils.ToDecimal(amount, token.Decimals))
	}
	return b
}

// PriceForToken applies the valuation policy: the native quote for the native token and
// native-like symbols, 1 for recognised stablecoins, otherwise the quote of the token address.
// The boolean is false when the price is unknown.
func PriceForToken(token entity.Token, prices entity.PriceMap) (decimal.Decimal, bool) {
	symbol := strings.ToUpper(token.Symbol)
	if _, nativeLike := nativeLikeSymbols[symbol]; token.IsNative() || nativeLike {
		q, ok := prices.Lookup(entity.NativeTokenAddress)
		return q.Price, ok
	}
	if _, stable := stablecoinSymbols[symbol]; stable {
		return decimal.NewFromInt(1), true
	}
	q, ok := prices.Lookup(token.Address)
	return q.Price, ok
}

// TotalValue sums the fiat value of balances.
func TotalValue(balances []entity.TokenBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.ValueUSD)
	}
	return total
}
