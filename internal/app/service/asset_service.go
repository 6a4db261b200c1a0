package service

import (
	"context"
	"fmt"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/infrastructure/network/abis"
	"market_aggregator/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

const defaultMetadataConcurrency = 8

// assetServiceImpl implements port.AssetService
type assetServiceImpl struct {
	chains      port.ChainRegistry
	clients     port.ChainClientProvider
	strategies  []port.AssetStrategy
	metadata    *MetadataResolver
	batcher     *MulticallBatcher
	concurrency int
	logger      port.Logger
}

// NewAssetService creates a new instance of assetServiceImpl.
// Strategies are tried in order; the first one whose Supports matches the contract is used.
func NewAssetService(
	chains port.ChainRegistry,
	clients port.ChainClientProvider,
	strategies []port.AssetStrategy,
	metadata *MetadataResolver,
	batcher *MulticallBatcher,
	concurrency int,
	l port.Logger,
) port.AssetService {
	if concurrency <= 0 {
		concurrency = defaultMetadataConcurrency
	}
	return &assetServiceImpl{
		chains:      chains,
		clients:     clients,
		strategies:  strategies,
		metadata:    metadata,
		batcher:     batcher,
		concurrency: concurrency,
		logger:      l,
	}
}

func (s *assetServiceImpl) strategyFor(contract string) (port.AssetStrategy, error) {
	for _, st := range s.strategies {
		if st.Supports(contract) {
			return st, nil
		}
	}
	return nil, fmt.Errorf("no asset strategy for contract %s", contract)
}

// GetAssetsData resolves one asset per id, in input order. Repeated ids share the same *Asset.
func (s *assetServiceImpl) GetAssetsData(ctx context.Context, req entity.AssetsRequest) ([]*entity.Asset, error) {
	assets, err := s.getAssetsData(ctx, req)
	if err != nil {
		s.logger.Error("Error fetching assets data", "chain_id", req.ChainID, "contract", req.Contract, "error", err)
		return nil, fmt.Errorf("failed to fetch assets data: %w", err)
	}
	return assets, nil
}

func (s *assetServiceImpl) getAssetsData(ctx context.Context, req entity.AssetsRequest) ([]*entity.Asset, error) {
	if req.IsERC1155 && req.Account == "" {
		return nil, entity.ErrAccountRequired
	}
	if !utils.IsHexAddress(req.Contract) {
		return nil, fmt.Errorf("%w: contract %q", entity.ErrInvalidAddress, req.Contract)
	}
	if req.IsERC1155 && !utils.IsHexAddress(req.Account) {
		return nil, fmt.Errorf("%w: account %q", entity.ErrInvalidAddress, req.Account)
	}
	chain, ok := s.chains.Get(req.ChainID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", entity.ErrUnsupportedChain, req.ChainID)
	}
	if len(req.IDs) == 0 {
		return []*entity.Asset{}, nil
	}

	strategy, err := s.strategyFor(req.Contract)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.GetClient(ctx, chain)
	if err != nil {
		return nil, err
	}

	unique := utils.UniqueStrings(req.IDs)
	resolved, err := strategy.Resolve(ctx, client, req, unique)
	if err != nil {
		return nil, err
	}
	if len(resolved) != len(unique) {
		return nil, fmt.Errorf("%w: %s resolved %d of %d ids", entity.ErrIncompleteResponse, strategy.Name(), len(resolved), len(unique))
	}

	byID := make(map[string]*entity.Asset, len(resolved))
	for i, id := range unique {
		byID[id] = resolved[i]
	}

	if req.WithMetadata {
		s.attachMetadata(ctx, resolved, req.DefaultMetadata)
	}

	assets := make([]*entity.Asset, len(req.IDs))
	for i, id := range req.IDs {
		assets[i] = byID[id]
	}
	return assets, nil
}

// attachMetadata fetches documents concurrently. Failures are recorded on the asset only.
func (s *assetServiceImpl) attachMetadata(ctx context.Context, assets []*entity.Asset, def *entity.AssetMetadata) {
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, asset := range assets {
		if asset.Metadata != nil {
			continue
		}
		g.Go(func() error {
			meta, err := s.metadata.FetchMetadata(ctx, asset.TokenURI, def)
			if err != nil {
				s.logger.Warn("Failed to resolve asset metadata", "contract", asset.ContractAddress, "id", asset.ID, "error", err)
				asset.Error = &entity.AssetError{
					Message: err.Error(),
					Code:    "METADATA_ERROR",
					Context: &entity.AssetErrorContext{
						ContractAddress: asset.ContractAddress,
						TokenID:         asset.ID,
						ChainID:         asset.ChainID,
					},
				}
				return nil
			}
			asset.Metadata = meta
			return nil
		})
	}
	_ = g.Wait()
}

// GetAssetData resolves a single token id.
func (s *assetServiceImpl) GetAssetData(ctx context.Context, req entity.AssetsRequest, id string) (*entity.Asset, error) {
	req.IDs = []string{id}
	assets, err := s.GetAssetsData(ctx, req)
	if err != nil {
		return nil, err
	}
	return assets[0], nil
}

// GetCollectionData reads name and symbol of an NFT contract.
func (s *assetServiceImpl) GetCollectionData(ctx context.Context, chainID uint64, contract string) (*entity.Collection, error) {
	if !utils.IsHexAddress(contract) {
		return nil, fmt.Errorf("failed to fetch collection data: %w: contract %q", entity.ErrInvalidAddress, contract)
	}
	chain, ok := s.chains.Get(chainID)
	if !ok {
		return nil, fmt.Errorf("failed to fetch collection data: %w: %d", entity.ErrUnsupportedChain, chainID)
	}
	client, err := s.clients.GetClient(ctx, chain)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection data: %w", err)
	}

	target := common.HexToAddress(contract)
	results, err := s.batcher.Execute(ctx, client, []entity.ContractCall{
		{Target: target, ABI: abis.ERC721, Method: "name"},
		{Target: target, ABI: abis.ERC721, Method: "symbol"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection data: %w", err)
	}

	name, symbol := collectionNames(results[0], results[1])
	return &entity.Collection{
		ChainID:         chainID,
		ContractAddress: contract,
		CollectionName:  name,
		Symbol:          symbol,
	}, nil
}
