package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"market_aggregator/internal/domain/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// OrderBookClient implements port.OrderBookClient for the trader.xyz order book.
type OrderBookClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewOrderBookClient creates a new OrderBookClient. baseURL is the full orders endpoint.
func NewOrderBookClient(baseURL string, timeout time.Duration, logger *zap.Logger) *OrderBookClient {
	return &OrderBookClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("OrderBookClient"),
	}
}

type orderBookResponse struct {
	Orders []entity.OrderBookItem `json:"orders"`
}

// GetOrders implements port.OrderBookClient.
func (c *OrderBookClient) GetOrders(ctx context.Context, filter entity.OrderFilter) ([]entity.OrderBookItem, error) {
	requestURL := c.baseURL
	if q := filterQuery(filter).Encode(); q != "" {
		requestURL += "?" + q
	}

	c.logger.Debug("Requesting orders", zap.String("url", requestURL))
	body, err := doGet(ctx, c.client, requestURL, nil, c.timeout)
	if err != nil {
		c.logger.Error("Order book request failed", zap.String("url", requestURL), zap.Error(err))
		return nil, err
	}

	var parsed orderBookResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Error("Failed to unmarshal order book response",
			zap.String("url", requestURL),
			zap.String("responseBody", truncate(body)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: failed to unmarshal order book response: %v", entity.ErrUpstream, err)
	}
	if parsed.Orders == nil {
		parsed.Orders = []entity.OrderBookItem{}
	}
	return parsed.Orders, nil
}

// filterQuery encodes only the fields that are set.
func filterQuery(f entity.OrderFilter) url.Values {
	q := url.Values{}
	if f.ChainID != 0 {
		q.Set("chainId", strconv.FormatUint(f.ChainID, 10))
	}
	setIf := func(key, val string) {
		if val != "" {
			q.Set(key, val)
		}
	}
	setIf("maker", f.Maker)
	setIf("taker", f.Taker)
	setIf("nftToken", f.NftToken)
	setIf("nftTokenId", f.NftTokenID)
	setIf("erc20Token", f.Erc20Token)
	setIf("sellOrBuyNft", string(f.SellOrBuyNft))
	setIf("status", string(f.Status))
	setIf("visibility", string(f.Visibility))
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}
