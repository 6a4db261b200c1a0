package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const holderAddr = "0x2000000000000000000000000000000000000002"

type fakePriceService struct {
	prices entity.PriceMap
}

func (f *fakePriceService) GetTokenPrices(context.Context, uint64, []string, string) entity.PriceMap {
	return f.prices
}

func (f *fakePriceService) GetNativePrice(context.Context, uint64, string) (entity.PriceQuote, bool) {
	return f.prices.Lookup(entity.NativeTokenAddress)
}

func (f *fakePriceService) GetPricesWithNative(context.Context, uint64, []entity.Token, string) entity.PriceMap {
	return f.prices
}

func (f *fakePriceService) GetCoinPrices(context.Context, []string, []string) (map[string]map[string]entity.PriceQuote, error) {
	return nil, nil
}

// balanceHandler answers every call with the raw amount registered for its target.
func balanceHandler(amounts map[common.Address]*big.Int) func([]entity.ContractCall) ([]entity.CallResult, error) {
	return func(calls []entity.ContractCall) ([]entity.CallResult, error) {
		out := make([]entity.CallResult, len(calls))
		for i, c := range calls {
			target := c.Target
			if c.Method == "getEthBalance" {
				target = common.HexToAddress(entity.NativeTokenAddress)
			}
			amount, ok := amounts[target]
			if !ok {
				out[i] = failed()
				continue
			}
			out[i] = entity.CallResult{Success: true, Values: []any{amount}}
		}
		return out, nil
	}
}

func newTestBalanceService(client *fakeChainClient, prices entity.PriceMap, tokens *fakeTokenProvider) *balanceServiceImpl {
	if tokens == nil {
		tokens = &fakeTokenProvider{}
	}
	return NewBalanceService(
		newFakeChains(testChain),
		&fakeClientProvider{client: client},
		tokens,
		&fakePriceService{prices: prices},
		NewMulticallBatcher(testPolicy, logger.Nop{}),
		20,
		logger.Nop{},
	).(*balanceServiceImpl)
}

func TestGetBalances_StablecoinFastPath(t *testing.T) {
	usdc := entity.Token{ChainID: 1, Address: usdcAddr, Symbol: "USDC", Decimals: 6}
	client := &fakeChainClient{chainID: 1, handle: balanceHandler(map[common.Address]*big.Int{
		common.HexToAddress(usdcAddr): big.NewInt(1_500_000),
	})}
	// A price for the address itself must be ignored.
	prices := entity.PriceMap{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": quote("0.5")}

	svc := newTestBalanceService(client, prices, nil)
	balances, err := svc.GetBalances(t.Context(), 1, holderAddr, []entity.Token{usdc}, entity.BalanceOptions{ShowEmpty: true})

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].ValueUSD.Equal(decimal.RequireFromString("1.5")), balances[0].ValueUSD.String())
	assert.Equal(t, "1.5", balances[0].FormattedBalance)
}

func TestGetBalances_HideEmptyStillReads(t *testing.T) {
	tokens := []entity.Token{
		{ChainID: 1, Address: usdcAddr, Symbol: "USDC", Decimals: 6},
		{ChainID: 1, Address: wethAddr, Symbol: "WETH", Decimals: 18},
	}
	client := &fakeChainClient{chainID: 1, handle: balanceHandler(map[common.Address]*big.Int{
		common.HexToAddress(usdcAddr): big.NewInt(0),
		common.HexToAddress(wethAddr): big.NewInt(2e18),
	})}
	prices := entity.PriceMap{"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": quote("3000")}

	svc := newTestBalanceService(client, prices, nil)
	balances, err := svc.GetBalances(t.Context(), 1, holderAddr, tokens, entity.BalanceOptions{ShowEmpty: false})

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "WETH", balances[0].Token.Symbol)
	assert.True(t, balances[0].ValueUSD.Equal(decimal.NewFromInt(6000)))

	batches := client.Batches()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
}

func TestGetBalances_NativeUsesNativeQuote(t *testing.T) {
	client := &fakeChainClient{chainID: 1, handle: balanceHandler(map[common.Address]*big.Int{
		common.HexToAddress(entity.NativeTokenAddress): big.NewInt(5e17),
	})}
	prices := entity.PriceMap{entity.NativeTokenAddress: quote("2000")}

	svc := newTestBalanceService(client, prices, nil)
	balances, err := svc.GetBalances(t.Context(), 1, holderAddr, []entity.Token{testChain.NativeToken()}, entity.BalanceOptions{ShowEmpty: true})

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "getEthBalance", client.Batches()[0][0].Method)
	assert.True(t, balances[0].ValueUSD.Equal(decimal.NewFromInt(1000)))
}

func TestGetBalances_UnknownPriceIsInvalid(t *testing.T) {
	token := entity.Token{ChainID: 1, Address: "0x3000000000000000000000000000000000000003", Symbol: "XYZ", Decimals: 18}
	client := &fakeChainClient{chainID: 1, handle: balanceHandler(map[common.Address]*big.Int{
		common.HexToAddress(token.Address): big.NewInt(1e18),
	})}

	svc := newTestBalanceService(client, entity.PriceMap{}, nil)
	balances, err := svc.GetBalances(t.Context(), 1, holderAddr, []entity.Token{token}, entity.BalanceOptions{ShowEmpty: true})

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.False(t, balances[0].PriceUSD.Valid)
	assert.True(t, balances[0].ValueUSD.IsZero())
}

func TestGetBalances_FailedSubCallIsZero(t *testing.T) {
	token := entity.Token{ChainID: 1, Address: "0x3000000000000000000000000000000000000003", Symbol: "XYZ", Decimals: 18}
	client := &fakeChainClient{chainID: 1, handle: balanceHandler(map[common.Address]*big.Int{})}

	svc := newTestBalanceService(client, entity.PriceMap{}, nil)
	balances, err := svc.GetBalances(t.Context(), 1, holderAddr, []entity.Token{token}, entity.BalanceOptions{ShowEmpty: true})

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Zero(t, balances[0].Balance.Sign())
}

func TestGetBalances_BatchesOfTwenty(t *testing.T) {
	tokens := make([]entity.Token, 45)
	amounts := map[common.Address]*big.Int{}
	for i := range tokens {
		addr := common.BigToAddress(big.NewInt(int64(i + 100)))
		tokens[i] = entity.Token{ChainID: 1, Address: addr.Hex(), Symbol: "T", Decimals: 0}
		amounts[addr] = big.NewInt(int64(i))
	}
	client := &fakeChainClient{chainID: 1, handle: balanceHandler(amounts)}

	svc := newTestBalanceService(client, entity.PriceMap{}, nil)
	balances, err := svc.GetBalances(t.Context(), 1, holderAddr, tokens, entity.BalanceOptions{ShowEmpty: true})

	require.NoError(t, err)
	require.Len(t, balances, 45)
	assert.Len(t, client.Batches(), 3)
	for i, b := range balances {
		assert.EqualValues(t, i, b.Balance.Int64())
	}
}

func TestGetBalances_DefaultsToTokenList(t *testing.T) {
	provider := &fakeTokenProvider{tokens: []entity.Token{
		testChain.NativeToken(),
		{ChainID: 1, Address: usdcAddr, Symbol: "USDC", Decimals: 6},
	}}
	client := &fakeChainClient{chainID: 1, handle: balanceHandler(map[common.Address]*big.Int{
		common.HexToAddress(entity.NativeTokenAddress): big.NewInt(0),
		common.HexToAddress(usdcAddr):                  big.NewInt(0),
	})}

	svc := newTestBalanceService(client, entity.PriceMap{}, provider)
	balances, err := svc.GetBalances(t.Context(), 1, holderAddr, nil, entity.BalanceOptions{ShowEmpty: true})

	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.True(t, balances[0].Token.IsNative())
}

func TestGetBalances_Errors(t *testing.T) {
	client := &fakeChainClient{chainID: 1, handle: func([]entity.ContractCall) ([]entity.CallResult, error) {
		return nil, errors.New("rpc down")
	}}
	svc := newTestBalanceService(client, entity.PriceMap{}, nil)
	usdc := []entity.Token{{ChainID: 1, Address: usdcAddr, Symbol: "USDC", Decimals: 6}}

	_, err := svc.GetBalances(t.Context(), 1, "0xnope", usdc, entity.BalanceOptions{})
	assert.ErrorIs(t, err, entity.ErrInvalidAddress)

	_, err = svc.GetBalances(t.Context(), 42, holderAddr, usdc, entity.BalanceOptions{})
	assert.ErrorIs(t, err, entity.ErrUnsupportedChain)

	_, err = svc.GetBalances(t.Context(), 1, holderAddr, usdc, entity.BalanceOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc down")
}

func TestTotalValue(t *testing.T) {
	total := TotalValue([]entity.TokenBalance{
		{ValueUSD: decimal.RequireFromString("1.5")},
		{ValueUSD: decimal.RequireFromString("2.25")},
	})
	assert.True(t, total.Equal(decimal.RequireFromString("3.75")))
}
