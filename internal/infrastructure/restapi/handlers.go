package restapi

import (
	"net/http"
	"strconv"
	"strings"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/app/service"
	"market_aggregator/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChainDirectory is the chain registry as seen by the REST layer.
type ChainDirectory interface {
	port.ChainRegistry
	AddChainParameters(chainID uint64) (entity.AddChainParameters, error)
}

// APIResponse wraps every successful payload.
type APIResponse struct {
	Data any `json:"data"`
}

// ChainResponse is a chain together with its wallet_addEthereumChain payload.
type ChainResponse struct {
	Chain              entity.Chain              `json:"chain"`
	AddChainParameters entity.AddChainParameters `json:"addChainParameters"`
}

// BalancesResponse is the valued balance list of one account.
type BalancesResponse struct {
	Account       string                `json:"account"`
	ChainID       uint64                `json:"chainId"`
	Balances      []entity.TokenBalance `json:"balances"`
	TotalValueUSD decimal.Decimal       `json:"totalValueUSD"`
}

// ImportTokenRequest is the body of POST /chains/:chainId/tokens/import.
type ImportTokenRequest struct {
	Address string `json:"address" binding:"required"`
}

// Handler serves the aggregation API.
type Handler struct {
	chains   ChainDirectory
	tokens   port.TokenService
	prices   port.PriceService
	balances port.BalanceService
	assets   port.AssetService
	orders   port.OrderService
	logger   *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(
	chains ChainDirectory,
	tokens port.TokenService,
	prices port.PriceService,
	balances port.BalanceService,
	assets port.AssetService,
	orders port.OrderService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		chains:   chains,
		tokens:   tokens,
		prices:   prices,
		balances: balances,
		assets:   assets,
		orders:   orders,
		logger:   logger.Named("RESTHandler"),
	}
}

func (h *Handler) chainID(c *gin.Context) (uint64, bool) {
	raw := c.Param("chainId")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		abortWithCode(c, ErrorCodeInvalidRequest, "invalid chain id: "+raw)
		return 0, false
	}
	if _, ok := h.chains.Get(id); !ok {
		abortWithCode(c, ErrorCodeUnsupportedChain, "unsupported chain: "+raw)
		return 0, false
	}
	return id, true
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queryBool(c *gin.Context, key string, def bool) (bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		abortWithCode(c, ErrorCodeInvalidRequest, "invalid boolean for "+key+": "+raw)
		return false, false
	}
	return v, true
}

// ListChains handles GET /chains.
func (h *Handler) ListChains(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Data: h.chains.All()})
}

// GetChain handles GET /chains/:chainId.
func (h *Handler) GetChain(c *gin.Context) {
	id, ok := h.chainID(c)
	if !ok {
		return
	}
	chain, _ := h.chains.Get(id)
	params, err := h.chains.AddChainParameters(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: ChainResponse{Chain: chain, AddChainParameters: params}})
}

// ListTokens handles GET /chains/:chainId/tokens.
func (h *Handler) ListTokens(c *gin.Context) {
	id, ok := h.chainID(c)
	if !ok {
		return
	}
	includeNative, ok := queryBool(c, "includeNative", true)
	if !ok {
		return
	}
	tokens, err := h.tokens.ListTokens(id, includeNative)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: tokens})
}

// ImportToken handles POST /chains/:chainId/tokens/import.
func (h *Handler) ImportToken(c *gin.Context) {
	id, ok := h.chainID(c)
	if !ok {
		return
	}
	var req ImportTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithCode(c, ErrorCodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	token, err := h.tokens.ImportToken(c.Request.Context(), id, req.Address)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: token})
}

// GetTokenPrices handles GET /chains/:chainId/prices.
// Without an addresses parameter the chain's token list is priced.
func (h *Handler) GetTokenPrices(c *gin.Context) {
	id, ok := h.chainID(c)
	if !ok {
		return
	}
	includeNative, ok := queryBool(c, "includeNative", false)
	if !ok {
		return
	}
	currency := c.Query("currency")

	addresses := splitCSV(c.Query("addresses"))
	if len(addresses) == 0 {
		listed, err := h.tokens.ListTokens(id, false)
		if err != nil {
			abortWithError(c, err)
			return
		}
		for _, t := range listed {
			addresses = append(addresses, t.Address)
		}
	}

	if includeNative {
		tokens := make([]entity.Token, len(addresses))
		for i, a := range addresses {
			tokens[i] = entity.Token{ChainID: id, Address: a}
		}
		c.JSON(http.StatusOK, APIResponse{Data: h.prices.GetPricesWithNative(c.Request.Context(), id, tokens, currency)})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: h.prices.GetTokenPrices(c.Request.Context(), id, addresses, currency)})
}

// GetNativePrice handles GET /chains/:chainId/prices/native.
func (h *Handler) GetNativePrice(c *gin.Context) {
	id, ok := h.chainID(c)
	if !ok {
		return
	}
	quote, found := h.prices.GetNativePrice(c.Request.Context(), id, c.Query("currency"))
	if !found {
		c.JSON(http.StatusOK, APIResponse{Data: nil})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: quote})
}

// GetBalances handles GET /chains/:chainId/balances/:account.
func (h *Handler) GetBalances(c *gin.Context) {
	id, ok := h.chainID(c)
	if !ok {
		return
	}
	showEmpty, ok := queryBool(c, "showEmpty", false)
	if !ok {
		return
	}
	account := c.Param("account")

	balances, err := h.balances.GetBalances(c.Request.Context(), id, account, nil, entity.BalanceOptions{
		ShowEmpty: showEmpty,
		Currency:  c.Query("currency"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: BalancesResponse{
		Account:       account,
		ChainID:       id,
		Balances:      balances,
		TotalValueUSD: service.TotalValue(balances),
	}})
}

// GetAssets handles GET /chains/:chainId/assets/:contract.
func (h *Handler) GetAssets(c *gin.Context) {
	id, ok := h.chainID(c)
	if !ok {
		return
	}
	ids := splitCSV(c.Query("ids"))
	if len(ids) == 0 {
		abortWithCode(c, ErrorCodeInvalidRequest, "ids query parameter is required")
		return
	}
	erc1155, ok := queryBool(c, "erc1155", false)
	if !ok {
		return
	}
	withMetadata, ok := queryBool(c, "metadata", true)
	if !ok {
		return
	}

	assets, err := h.assets.GetAssetsData(c.Request.Context(), entity.AssetsRequest{
		ChainID:      id,
		Contract:     c.Param("contract"),
		IDs:          ids,
		Account:      c.Query("account"),
		IsERC1155:    erc1155,
		WithMetadata: withMetadata,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: assets})
}

// GetCollection handles GET /chains/:chainId/collections/:contract.
func (h *Handler) GetCollection(c *gin.Context) {
	id, ok := h.chainID(c)
	if !ok {
		return
	}
	collection, err := h.assets.GetCollectionData(c.Request.Context(), id, c.Param("contract"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: collection})
}

func (h *Handler) orderFilter(c *gin.Context) (entity.OrderFilter, bool) {
	f := entity.OrderFilter{
		Maker:        c.Query("maker"),
		Taker:        c.Query("taker"),
		NftToken:     c.Query("nftToken"),
		NftTokenID:   c.Query("nftTokenId"),
		Erc20Token:   c.Query("erc20Token"),
		SellOrBuyNft: entity.SellOrBuy(c.Query("sellOrBuyNft")),
		Status:       entity.OrderStatus(c.Query("status")),
		Visibility:   entity.OrderVisibility(c.Query("visibility")),
	}
	if f.Status == entity.OrderStatusAll {
		f.Status = ""
	}
	if f.SellOrBuyNft == entity.SellOrBuyAll {
		f.SellOrBuyNft = ""
	}

	for key, dst := range map[string]*int{"offset": &f.Offset, "limit": &f.Limit} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			abortWithCode(c, ErrorCodeInvalidRequest, "invalid "+key+": "+raw)
			return f, false
		}
		*dst = v
	}

	if raw := c.Query("chainId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			abortWithCode(c, ErrorCodeInvalidRequest, "invalid chainId: "+raw)
			return f, false
		}
		f.ChainID = id
	}
	return f, true
}

// GetOrders handles GET /orders.
func (h *Handler) GetOrders(c *gin.Context) {
	filter, ok := h.orderFilter(c)
	if !ok {
		return
	}
	page, err := h.orders.GetOrders(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: page})
}

// GetOrderAssets handles GET /orders/assets.
func (h *Handler) GetOrderAssets(c *gin.Context) {
	filter, ok := h.orderFilter(c)
	if !ok {
		return
	}
	assets, err := h.orders.GetAssetsFromOrderbook(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: assets})
}
