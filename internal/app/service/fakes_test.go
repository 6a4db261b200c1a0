package service

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/infrastructure/network/abis"
	"market_aggregator/internal/pkg/retry"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

var testPolicy = retry.Policy{MaxAttempts: 3, Delay: time.Millisecond, Timeout: time.Second}

var (
	testChain = entity.Chain{
		ID:             1,
		Name:           "Ethereum",
		NativeCurrency: entity.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		PlatformID:     "ethereum",
		NativeCoinID:   "ethereum",
	}
	testnetChain = entity.Chain{
		ID:             5,
		Name:           "Goerli",
		NativeCurrency: entity.NativeCurrency{Name: "Goerli Ether", Symbol: "ETH", Decimals: 18},
		Testnet:        true,
	}
)

type fakeChains map[uint64]entity.Chain

func newFakeChains(chains ...entity.Chain) fakeChains {
	m := fakeChains{}
	for _, c := range chains {
		m[c.ID] = c
	}
	return m
}

func (f fakeChains) Get(id uint64) (entity.Chain, bool) {
	c, ok := f[id]
	return c, ok
}

func (f fakeChains) All() []entity.Chain {
	out := make([]entity.Chain, 0, len(f))
	for _, c := range f {
		out = append(out, c)
	}
	return out
}

// fakeChainClient answers Aggregate through handle and records every submitted batch.
type fakeChainClient struct {
	chainID uint64
	handle  func(calls []entity.ContractCall) ([]entity.CallResult, error)

	mu      sync.Mutex
	batches [][]entity.ContractCall

	callContract func(msg ethereum.CallMsg) ([]byte, error)
}

func (f *fakeChainClient) Aggregate(_ context.Context, calls []entity.ContractCall) ([]entity.CallResult, error) {
	f.mu.Lock()
	f.batches = append(f.batches, calls)
	f.mu.Unlock()
	if f.handle == nil {
		return nil, errors.New("no handler")
	}
	return f.handle(calls)
}

func (f *fakeChainClient) Batches() [][]entity.ContractCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]entity.ContractCall(nil), f.batches...)
}

func (f *fakeChainClient) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x1}, nil
}

func (f *fakeChainClient) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.callContract == nil {
		return nil, errors.New("unexpected direct call")
	}
	return f.callContract(msg)
}

func (f *fakeChainClient) ChainID() uint64 { return f.chainID }

func (f *fakeChainClient) NativeBalanceCall(account string) entity.ContractCall {
	return entity.ContractCall{
		Target: abis.Multicall3Address,
		ABI:    abis.Multicall3,
		Method: "getEthBalance",
		Args:   []any{common.HexToAddress(account)},
	}
}

func (f *fakeChainClient) NativeBalance(context.Context, string) (*big.Int, error) {
	return big.NewInt(0), nil
}

type fakeClientProvider struct {
	client port.ChainClient
	err    error
}

func (f *fakeClientProvider) GetClient(context.Context, entity.Chain) (port.ChainClient, error) {
	return f.client, f.err
}

type fakePriceClient struct {
	mu          sync.Mutex
	tokenCalls  [][]string
	tokenPrices entity.PriceMap
	tokenErr    error
	coinPrices  map[string]map[string]entity.PriceQuote
	coinErr     error
}

func (f *fakePriceClient) TokenPrices(_ context.Context, _ string, addresses []string, _ string) (entity.PriceMap, error) {
	f.mu.Lock()
	f.tokenCalls = append(f.tokenCalls, addresses)
	f.mu.Unlock()
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	return f.tokenPrices, nil
}

func (f *fakePriceClient) CoinPrices(context.Context, []string, []string) (map[string]map[string]entity.PriceQuote, error) {
	return f.coinPrices, f.coinErr
}

func (f *fakePriceClient) TokenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokenCalls)
}

// fakePriceCache mimics the single-entry cache with an adjustable clock.
type fakePriceCache struct {
	mu     sync.Mutex
	prices entity.PriceMap
	stored time.Time
	ttl    time.Duration
	now    func() time.Time
}

func newFakePriceCache(ttl time.Duration) *fakePriceCache {
	return &fakePriceCache{ttl: ttl, now: time.Now}
}

func (f *fakePriceCache) Get(context.Context) (entity.PriceMap, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prices == nil || f.now().Sub(f.stored) >= f.ttl {
		return nil, false
	}
	return f.prices, true
}

func (f *fakePriceCache) Set(_ context.Context, prices entity.PriceMap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices = prices
	f.stored = f.now()
}

type fakeTokenProvider struct {
	mu     sync.Mutex
	tokens []entity.Token
}

func (f *fakeTokenProvider) TokensForChain(chainID uint64, includeNative bool) []entity.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Token
	for _, t := range f.tokens {
		if t.ChainID != chainID {
			continue
		}
		if t.IsNative() && !includeNative {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (f *fakeTokenProvider) FindToken(chainID uint64, address string) (entity.Token, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.ChainID == chainID && strings.EqualFold(t.Address, address) {
			return t, true
		}
	}
	return entity.Token{}, false
}

func (f *fakeTokenProvider) AddToken(token entity.Token) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.Same(token) {
			return false
		}
	}
	f.tokens = append(f.tokens, token)
	return true
}

func ok(values ...any) entity.CallResult {
	return entity.CallResult{Success: true, Values: values}
}

func failed() entity.CallResult {
	return entity.CallResult{Err: errors.New("call reverted")}
}
