package port

import (
	"context"

	"market_aggregator/internal/domain/entity"
)

// MetadataFetcher downloads raw documents over HTTP.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ENSMetadataClient reads ENS name metadata from the ENS metadata service.
type ENSMetadataClient interface {
	Get(ctx context.Context, contract string, tokenID string) (*entity.ENSMetadata, error)
	// URL is the metadata location used as tokenURI of ENS assets.
	URL(contract string, tokenID string) string
}

// AssetStrategy resolves on-chain data for a family of NFT contracts.
type AssetStrategy interface {
	Name() string
	Supports(contract string) bool
	// Resolve returns one asset per unique id, in the order given.
	Resolve(ctx context.Context, client ChainClient, req entity.AssetsRequest, ids []string) ([]*entity.Asset, error)
}

// AssetService resolves NFT assets and collections.
type AssetService interface {
	GetAssetsData(ctx context.Context, req entity.AssetsRequest) ([]*entity.Asset, error)
	GetAssetData(ctx context.Context, req entity.AssetsRequest, id string) (*entity.Asset, error)
	GetCollectionData(ctx context.Context, chainID uint64, contract string) (*entity.Collection, error)
}
