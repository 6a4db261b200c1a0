package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"market_aggregator/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubChains struct{}

var mainnet = entity.Chain{ID: 1, Name: "Ethereum", NativeCurrency: entity.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}}

func (stubChains) Get(id uint64) (entity.Chain, bool) {
	if id == 1 {
		return mainnet, true
	}
	return entity.Chain{}, false
}

func (stubChains) All() []entity.Chain { return []entity.Chain{mainnet} }

func (stubChains) AddChainParameters(id uint64) (entity.AddChainParameters, error) {
	return entity.AddChainParameters{ChainID: fmt.Sprintf("0x%x", id), ChainName: "Ethereum"}, nil
}

type stubTokens struct {
	imported []string
}

func (s *stubTokens) ImportToken(_ context.Context, chainID uint64, address string) (entity.Token, error) {
	s.imported = append(s.imported, address)
	return entity.Token{ChainID: chainID, Address: address, Symbol: "NEW", Decimals: 18}, nil
}

func (s *stubTokens) ListTokens(chainID uint64, includeNative bool) ([]entity.Token, error) {
	return []entity.Token{{ChainID: chainID, Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6}}, nil
}

type stubPrices struct {
	lastAddresses []string
}

func (s *stubPrices) GetTokenPrices(_ context.Context, _ uint64, addresses []string, _ string) entity.PriceMap {
	s.lastAddresses = addresses
	return entity.PriceMap{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": {Price: decimal.NewFromInt(1)}}
}

func (s *stubPrices) GetNativePrice(context.Context, uint64, string) (entity.PriceQuote, bool) {
	return entity.PriceQuote{Price: decimal.NewFromInt(3000)}, true
}

func (s *stubPrices) GetPricesWithNative(context.Context, uint64, []entity.Token, string) entity.PriceMap {
	return entity.PriceMap{entity.NativeTokenAddress: {Price: decimal.NewFromInt(3000)}}
}

func (s *stubPrices) GetCoinPrices(context.Context, []string, []string) (map[string]map[string]entity.PriceQuote, error) {
	return nil, nil
}

type stubBalances struct {
	err  error
	opts entity.BalanceOptions
}

func (s *stubBalances) GetBalances(_ context.Context, _ uint64, _ string, _ []entity.Token, opts entity.BalanceOptions) ([]entity.TokenBalance, error) {
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	return []entity.TokenBalance{
		{Token: entity.Token{Symbol: "USDC"}, ValueUSD: decimal.RequireFromString("1.5")},
		{Token: entity.Token{Symbol: "ETH"}, ValueUSD: decimal.RequireFromString("2")},
	}, nil
}

type stubAssets struct {
	req entity.AssetsRequest
	err error
}

func (s *stubAssets) GetAssetsData(_ context.Context, req entity.AssetsRequest) ([]*entity.Asset, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*entity.Asset, len(req.IDs))
	for i, id := range req.IDs {
		out[i] = &entity.Asset{ID: id}
	}
	return out, nil
}

func (s *stubAssets) GetAssetData(ctx context.Context, req entity.AssetsRequest, id string) (*entity.Asset, error) {
	return &entity.Asset{ID: id}, nil
}

func (s *stubAssets) GetCollectionData(_ context.Context, chainID uint64, contract string) (*entity.Collection, error) {
	return &entity.Collection{ChainID: chainID, ContractAddress: contract, CollectionName: "Coll"}, nil
}

type stubOrders struct {
	filter entity.OrderFilter
	err    error
}

func (s *stubOrders) GetOrders(_ context.Context, filter entity.OrderFilter) (*entity.OrderPage, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	return &entity.OrderPage{Orders: []entity.OrderBookItem{}, Offset: filter.Offset, Limit: filter.Limit}, nil
}

func (s *stubOrders) GetAssetsFromOrderbook(context.Context, entity.OrderFilter) ([]*entity.Asset, error) {
	return []*entity.Asset{}, nil
}

type testServer struct {
	router   *gin.Engine
	tokens   *stubTokens
	prices   *stubPrices
	balances *stubBalances
	assets   *stubAssets
	orders   *stubOrders
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{
		tokens:   &stubTokens{},
		prices:   &stubPrices{},
		balances: &stubBalances{},
		assets:   &stubAssets{},
		orders:   &stubOrders{},
	}
	h := NewHandler(stubChains{}, s.tokens, s.prices, s.balances, s.assets, s.orders, zap.NewNop())
	s.router = SetupRouter(h, zap.NewNop(), RouterOptions{})
	return s
}

func (s *testServer) do(method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListChains(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/chains", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"chainId":1`)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestGetChain_AddChainParameters(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/chains/1", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"chainId":"0x1"`)
}

func TestUnsupportedChainIsBadRequest(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/chains/999/tokens", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrorCodeUnsupportedChain, decodeError(t, w).Error.Code)

	w = s.do(http.MethodGet, "/api/v1/chains/abc/tokens", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrorCodeInvalidRequest, decodeError(t, w).Error.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()

	s.router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestGetTokenPrices_DefaultsToTokenList(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/chains/1/prices", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"}, s.prices.lastAddresses)

	w = s.do(http.MethodGet, "/api/v1/chains/1/prices?addresses=0x1,0x2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"0x1", "0x2"}, s.prices.lastAddresses)
}

func TestGetNativePrice(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/chains/1/prices/native", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":"3000"`)
}

func TestGetBalances(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/chains/1/balances/0x2000000000000000000000000000000000000002?showEmpty=true", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.balances.opts.ShowEmpty)
	assert.Contains(t, w.Body.String(), `"totalValueUSD":"3.5"`)
}

func TestGetBalances_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   ErrorCode
	}{
		{fmt.Errorf("wrap: %w", entity.ErrInvalidAddress), http.StatusBadRequest, ErrorCodeInvalidAddress},
		{fmt.Errorf("wrap: %w", entity.ErrUpstream), http.StatusBadGateway, ErrorCodeUpstream},
		{fmt.Errorf("wrap: %w", entity.ErrIncompleteResponse), http.StatusBadGateway, ErrorCodeOnChainData},
		{fmt.Errorf("boom"), http.StatusInternalServerError, ErrorCodeInternal},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			s := newTestServer()
			s.balances.err = tc.err

			w := s.do(http.MethodGet, "/api/v1/chains/1/balances/0xabc", "")

			require.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeError(t, w).Error.Code)
		})
	}
}

func TestGetBalances_InvalidShowEmpty(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/chains/1/balances/0xabc?showEmpty=maybe", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAssets(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/chains/1/assets/0x4000000000000000000000000000000000000004?ids=1,2,1&erc1155=true&account=0xabc&metadata=false", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"1", "2", "1"}, s.assets.req.IDs)
	assert.True(t, s.assets.req.IsERC1155)
	assert.False(t, s.assets.req.WithMetadata)
	assert.Equal(t, "0xabc", s.assets.req.Account)
}

func TestGetAssets_RequiresIDs(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/chains/1/assets/0x4000000000000000000000000000000000000004", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAssets_AccountRequired(t *testing.T) {
	s := newTestServer()
	s.assets.err = fmt.Errorf("failed to fetch assets data: %w", entity.ErrAccountRequired)

	w := s.do(http.MethodGet, "/api/v1/chains/1/assets/0x4000000000000000000000000000000000000004?ids=1&erc1155=true", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrorCodeAccountRequired, decodeError(t, w).Error.Code)
}

func TestGetCollection(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/chains/1/collections/0x4000000000000000000000000000000000000004", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"collectionName":"Coll"`)
}

func TestGetOrders_ParsesFilter(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/orders?chainId=1&maker=0xabc&status=all&sellOrBuyNft=sell&offset=20&limit=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, s.orders.filter.ChainID)
	assert.Equal(t, "0xabc", s.orders.filter.Maker)
	assert.Empty(t, s.orders.filter.Status)
	assert.Equal(t, entity.SellOrBuySell, s.orders.filter.SellOrBuyNft)
	assert.Equal(t, 20, s.orders.filter.Offset)
	assert.Equal(t, 10, s.orders.filter.Limit)
}

func TestGetOrders_UpstreamFailure(t *testing.T) {
	s := newTestServer()
	s.orders.err = fmt.Errorf("failed to fetch orders: %w", entity.ErrUpstream)

	w := s.do(http.MethodGet, "/api/v1/orders", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetOrders_InvalidLimit(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/api/v1/orders?limit=-1", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportToken(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/api/v1/chains/1/tokens/import", `{"address":"0x6000000000000000000000000000000000000006"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"0x6000000000000000000000000000000000000006"}, s.tokens.imported)

	w = s.do(http.MethodPost, "/api/v1/chains/1/tokens/import", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
