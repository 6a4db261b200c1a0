package port

import (
	"context"

	"market_aggregator/internal/domain/entity"
)

// OrderBookClient queries the external order book.
type OrderBookClient interface {
	GetOrders(ctx context.Context, filter entity.OrderFilter) ([]entity.OrderBookItem, error)
}

// OrderService returns enriched order pages.
type OrderService interface {
	GetOrders(ctx context.Context, filter entity.OrderFilter) (*entity.OrderPage, error)
	GetAssetsFromOrderbook(ctx context.Context, filter entity.OrderFilter) ([]*entity.Asset, error)
}
