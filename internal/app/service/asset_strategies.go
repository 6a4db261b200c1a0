package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/infrastructure/network/abis"
	"market_aggregator/internal/pkg/retry"
	"market_aggregator/internal/pkg/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

const (
	unknownCollectionName = "Unknown Collection"
	unknownSymbol         = "Unknown"
	ensSymbol             = "ENS"
)

// ENS base registrar and name wrapper on mainnet.
var ensContracts = map[common.Address]struct{}{
	common.HexToAddress("0x57f1887a8BF19b14fC0dF6Fd9B2acc9Af147eA85"): {},
	common.HexToAddress("0xD4416b13d2b3a9aBae7AcD5D6C2BbDBE25686401"): {},
}

// IsENSContract reports whether contract is one of the ENS NFT contracts.
func IsENSContract(contract string) bool {
	if !common.IsHexAddress(contract) {
		return false
	}
	_, ok := ensContracts[common.HexToAddress(contract)]
	return ok
}

func parseTokenID(id string) (*big.Int, error) {
	n, ok := utils.ParseBigInt(id)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid token id %q", id)
	}
	return n, nil
}

// ensStrategy resolves ENS names through the ENS metadata service and a direct ownerOf call.
type ensStrategy struct {
	ens         port.ENSMetadataClient
	policy      retry.Policy
	concurrency int
	logger      port.Logger
}

// NewENSStrategy creates the ENS asset strategy.
func NewENSStrategy(ens port.ENSMetadataClient, policy retry.Policy, concurrency int, l port.Logger) port.AssetStrategy {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ensStrategy{ens: ens, policy: policy, concurrency: concurrency, logger: l}
}

func (s *ensStrategy) Name() string { return "ens" }

func (s *ensStrategy) Supports(contract string) bool { return IsENSContract(contract) }

func (s *ensStrategy) Resolve(ctx context.Context, client port.ChainClient, req entity.AssetsRequest, ids []string) ([]*entity.Asset, error) {
	assets := make([]*entity.Asset, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			asset, err := retry.Do(gctx, s.policy, func(ctx context.Context) (*entity.Asset, error) {
				return s.resolveOne(ctx, client, req, id)
			}, func(attempt int, err error) {
				s.logger.Warn("ENS asset resolution failed, retrying", "id", id, "attempt", attempt, "error", err)
			})
			if err != nil {
				return fmt.Errorf("ens token %s: %w", id, err)
			}
			assets[i] = asset
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assets, nil
}

func (s *ensStrategy) resolveOne(ctx context.Context, client port.ChainClient, req entity.AssetsRequest, id string) (*entity.Asset, error) {
	tokenID, err := parseTokenID(id)
	if err != nil {
		return nil, err
	}

	meta, err := s.ens.Get(ctx, req.Contract, id)
	if err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, client, common.HexToAddress(req.Contract), tokenID)
	if err != nil {
		return nil, err
	}

	return &entity.Asset{
		ID:              id,
		ChainID:         req.ChainID,
		ContractAddress: req.Contract,
		Owner:           owner.Hex(),
		TokenURI:        s.ens.URL(req.Contract, id),
		CollectionName:  meta.Name,
		Symbol:          ensSymbol,
		Type:            entity.NFTTypeERC721,
		Metadata: &entity.AssetMetadata{
			Name:        meta.Name,
			Image:       meta.Image,
			Description: meta.Description,
			Attributes:  meta.Attributes,
		},
		LastUpdated: time.Now(),
	}, nil
}

// ownerOf performs a single eth_call outside of Multicall3.
func ownerOf(ctx context.Context, caller ethereum.ContractCaller, contract common.Address, tokenID *big.Int) (common.Address, error) {
	data, err := abis.ERC721.Pack("ownerOf", tokenID)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to pack ownerOf: %w", err)
	}
	raw, err := caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("ownerOf call failed: %w", err)
	}

	var owner common.Address
	if err := abis.ERC721.UnpackIntoInterface(&owner, "ownerOf", raw); err != nil {
		return common.Address{}, fmt.Errorf("failed to unpack ownerOf: %w", err)
	}
	return owner, nil
}

// generalStrategy resolves any ERC-721 or ERC-1155 contract through batched multicalls.
type generalStrategy struct {
	batcher   *MulticallBatcher
	batchSize int
	logger    port.Logger
}

// NewGeneralStrategy creates the multicall-backed asset strategy.
func NewGeneralStrategy(batcher *MulticallBatcher, batchSize int, l port.Logger) port.AssetStrategy {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &generalStrategy{batcher: batcher, batchSize: batchSize, logger: l}
}

func (s *generalStrategy) Name() string { return "multicall" }

func (s *generalStrategy) Supports(string) bool { return true }

func (s *generalStrategy) Resolve(ctx context.Context, client port.ChainClient, req entity.AssetsRequest, ids []string) ([]*entity.Asset, error) {
	contractABI, nftType := abis.ERC721, entity.NFTTypeERC721
	if req.IsERC1155 {
		contractABI, nftType = abis.ERC1155, entity.NFTTypeERC1155
	}
	contract := common.HexToAddress(req.Contract)

	assets := make([]*entity.Asset, 0, len(ids))
	for _, batch := range utils.Chunk(ids, s.batchSize) {
		calls, err := s.buildCalls(contractABI, contract, req, batch)
		if err != nil {
			return nil, err
		}

		results, err := s.batcher.Execute(ctx, client, calls)
		if err != nil {
			return nil, err
		}

		name, symbol := collectionNames(results[0], results[1])
		now := time.Now()
		for i, id := range batch {
			asset, err := s.toAsset(req, id, results[2+2*i], results[3+2*i])
			if err != nil {
				return nil, err
			}
			asset.CollectionName = name
			asset.Symbol = symbol
			asset.Type = nftType
			asset.LastUpdated = now
			assets = append(assets, asset)
		}
	}
	return assets, nil
}

func (s *generalStrategy) buildCalls(contractABI *abi.ABI, contract common.Address, req entity.AssetsRequest, batch []string) ([]entity.ContractCall, error) {
	calls := make([]entity.ContractCall, 0, 2+2*len(batch))
	calls = append(calls,
		entity.ContractCall{Target: contract, ABI: contractABI, Method: "name"},
		entity.ContractCall{Target: contract, ABI: contractABI, Method: "symbol"},
	)

	for _, id := range batch {
		tokenID, err := parseTokenID(id)
		if err != nil {
			return nil, err
		}
		if req.IsERC1155 {
			calls = append(calls,
				entity.ContractCall{Target: contract, ABI: contractABI, Method: "balanceOf", Args: []any{common.HexToAddress(req.Account), tokenID}},
				entity.ContractCall{Target: contract, ABI: contractABI, Method: "uri", Args: []any{tokenID}},
			)
			continue
		}
		calls = append(calls,
			entity.ContractCall{Target: contract, ABI: contractABI, Method: "ownerOf", Args: []any{tokenID}},
			entity.ContractCall{Target: contract, ABI: contractABI, Method: "tokenURI", Args: []any{tokenID}},
		)
	}
	return calls, nil
}

func (s *generalStrategy) toAsset(req entity.AssetsRequest, id string, first, second entity.CallResult) (*entity.Asset, error) {
	asset := &entity.Asset{
		ID:              id,
		ChainID:         req.ChainID,
		ContractAddress: req.Contract,
	}

	tokenURI, ok := second.String()
	if !ok || tokenURI == "" {
		return nil, fmt.Errorf("%w: token uri of %s", entity.ErrMissingMetadata, id)
	}

	if req.IsERC1155 {
		balance, ok := first.BigInt()
		if !ok {
			return nil, fmt.Errorf("%w: balance of %s", entity.ErrMissingMetadata, id)
		}
		asset.Owner = req.Account
		asset.Balance = balance
		asset.TokenURI = utils.ExpandERC1155URI(tokenURI, id)
		return asset, nil
	}

	owner, ok := first.Address()
	if !ok || owner == (common.Address{}) {
		return nil, fmt.Errorf("%w: owner of %s", entity.ErrMissingMetadata, id)
	}
	asset.Owner = owner.Hex()
	asset.TokenURI = tokenURI
	return asset, nil
}

func collectionNames(nameRes, symbolRes entity.CallResult) (string, string) {
	name, ok := nameRes.String()
	if !ok || strings.TrimSpace(name) == "" {
		name = unknownCollectionName
	}
	symbol, ok := symbolRes.String()
	if !ok || strings.TrimSpace(symbol) == "" {
		symbol = unknownSymbol
	}
	return name, symbol
}
