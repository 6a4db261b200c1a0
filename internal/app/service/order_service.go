package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultOrderLimit    = 10
	defaultTokenDecimals = 18
	orderPricingCurrency = "usd"
)

// orderServiceImpl implements port.OrderService
type orderServiceImpl struct {
	client port.OrderBookClient
	assets port.AssetService
	prices port.PriceService
	tokens port.TokenProvider
	logger port.Logger
}

// NewOrderService creates a new instance of orderServiceImpl.
func NewOrderService(
	client port.OrderBookClient,
	assets port.AssetService,
	prices port.PriceService,
	tokens port.TokenProvider,
	l port.Logger,
) port.OrderService {
	return &orderServiceImpl{
		client: client,
		assets: assets,
		prices: prices,
		tokens: tokens,
		logger: l,
	}
}

type assetGroup struct {
	chainID  uint64
	contract string
	erc1155  bool
	ids      []string
}

// GetOrders returns one page of orders enriched with assets, payment tokens and USD values.
// Enrichment is best effort; only an order-book failure is returned as an error.
func (s *orderServiceImpl) GetOrders(ctx context.Context, filter entity.OrderFilter) (*entity.OrderPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultOrderLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, err := s.client.GetOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	var mu sync.Mutex
	pricesBy := map[uint64]entity.PriceMap{}
	assetsBy := map[string]*entity.Asset{}
	payTokens := map[uint64][]entity.Token{}
	groups := map[string]*assetGroup{}

	for _, o := range orders {
		chainID := orderChainID(o, filter.ChainID)
		token, known := s.tokens.FindToken(chainID, o.Erc20Token)
		if !known {
			token = entity.Token{ChainID: chainID, Address: o.Erc20Token, Decimals: defaultTokenDecimals}
		}
		payTokens[chainID] = append(payTokens[chainID], token)

		if !utils.IsHexAddress(o.NftToken) || o.NftTokenID == "" {
			continue
		}
		key := groupKey(chainID, o.NftToken)
		g, ok := groups[key]
		if !ok {
			g = &assetGroup{chainID: chainID, contract: o.NftToken, erc1155: o.NftType == entity.NFTTypeERC1155}
			groups[key] = g
		}
		g.ids = append(g.ids, o.NftTokenID)
	}

	var eg errgroup.Group
	for chainID, tokens := range payTokens {
		eg.Go(func() error {
			prices := s.prices.GetPricesWithNative(ctx, chainID, tokens, orderPricingCurrency)
			mu.Lock()
			pricesBy[chainID] = prices
			mu.Unlock()
			return nil
		})
	}
	for key, g := range groups {
		if g.erc1155 && filter.Maker == "" {
			s.logger.Debug("Skipping ERC1155 asset enrichment without maker", "contract", g.contract)
			continue
		}
		eg.Go(func() error {
			assets, err := s.assets.GetAssetsData(ctx, entity.AssetsRequest{
				ChainID:   g.chainID,
				Contract:  g.contract,
				IDs:       utils.UniqueStrings(g.ids),
				Account:   filter.Maker,
				IsERC1155: g.erc1155,
			})
			if err != nil {
				s.logger.Warn("Failed to resolve order assets", "contract", g.contract, "chain_id", g.chainID, "error", err)
				return nil
			}
			mu.Lock()
			for _, a := range assets {
				assetsBy[key+"/"+a.ID] = a
			}
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	for i := range orders {
		o := &orders[i]
		chainID := orderChainID(*o, filter.ChainID)

		if token, ok := s.tokens.FindToken(chainID, o.Erc20Token); ok {
			o.Token = &token
		}
		if a, ok := assetsBy[groupKey(chainID, o.NftToken)+"/"+o.NftTokenID]; ok {
			o.Asset = a
		}
		o.UsdValue = s.usdValue(*o, pricesBy[chainID])
	}

	return &entity.OrderPage{
		Orders:      orders,
		Offset:      filter.Offset,
		Limit:       filter.Limit,
		HasNextPage: len(orders) == filter.Limit,
	}, nil
}

func (s *orderServiceImpl) usdValue(o entity.OrderBookItem, prices entity.PriceMap) decimal.NullDecimal {
	key := strings.ToLower(o.Erc20Token)
	if entity.IsNativeAddress(key) {
		key = entity.NativeTokenAddress
	}
	q, ok := prices.Lookup(key)
	if !ok {
		return decimal.NullDecimal{}
	}
	amount, ok := utils.ParseBigInt(o.Erc20TokenAmount)
	if !ok {
		s.logger.Debug("Order has unparsable erc20 amount", "amount", o.Erc20TokenAmount)
		return decimal.NullDecimal{}
	}

	decimals := uint8(defaultTokenDecimals)
	if o.Token != nil {
		decimals = o.Token.Decimals
	}
	return decimal.NewNullDecimal(q.Price.Mul(utils.ToDecimal(amount, decimals)))
}

// GetAssetsFromOrderbook resolves the assets listed in the orders of one NFT contract.
func (s *orderServiceImpl) GetAssetsFromOrderbook(ctx context.Context, filter entity.OrderFilter) ([]*entity.Asset, error) {
	if !utils.IsHexAddress(filter.NftToken) {
		return nil, fmt.Errorf("failed to fetch assets from orderbook: %w: nftToken %q", entity.ErrInvalidAddress, filter.NftToken)
	}

	orders, err := s.client.GetOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assets from orderbook: %w", err)
	}

	ids := make([]string, 0, len(orders))
	erc1155 := false
	for _, o := range orders {
		if o.NftTokenID != "" {
			ids = append(ids, o.NftTokenID)
		}
		erc1155 = erc1155 || o.NftType == entity.NFTTypeERC1155
	}

	return s.assets.GetAssetsData(ctx, entity.AssetsRequest{
		ChainID:   filter.ChainID,
		Contract:  filter.NftToken,
		IDs:       utils.UniqueStrings(ids),
		Account:   filter.Maker,
		IsERC1155: erc1155,
	})
}

func orderChainID(o entity.OrderBookItem, fallback uint64) uint64 {
	if id, err := strconv.ParseUint(o.ChainID, 10, 64); err == nil && id != 0 {
		return id
	}
	return fallback
}

func groupKey(chainID uint64, contract string) string {
	return strconv.FormatUint(chainID, 10) + ":" + strings.ToLower(contract)
}
