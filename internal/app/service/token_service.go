package service

import (
	"context"
	"fmt"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/infrastructure/network/abis"
	"market_aggregator/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

// tokenServiceImpl implements port.TokenService
type tokenServiceImpl struct {
	chains  port.ChainRegistry
	clients port.ChainClientProvider
	tokens  port.TokenProvider
	batcher *MulticallBatcher
	logger  port.Logger
}

// NewTokenService creates a new instance of tokenServiceImpl.
func NewTokenService(
	chains port.ChainRegistry,
	clients port.ChainClientProvider,
	tokens port.TokenProvider,
	batcher *MulticallBatcher,
	l port.Logger,
) port.TokenService {
	return &tokenServiceImpl{
		chains:  chains,
		clients: clients,
		tokens:  tokens,
		batcher: batcher,
		logger:  l,
	}
}

// ImportToken reads name, symbol and decimals of an ERC-20 contract and adds it to the token list.
func (s *tokenServiceImpl) ImportToken(ctx context.Context, chainID uint64, address string) (entity.Token, error) {
	if !utils.IsHexAddress(address) || entity.IsNativeAddress(address) {
		return entity.Token{}, fmt.Errorf("%w: %q", entity.ErrInvalidAddress, address)
	}
	chain, ok := s.chains.Get(chainID)
	if !ok {
		return entity.Token{}, fmt.Errorf("%w: %d", entity.ErrUnsupportedChain, chainID)
	}
	if known, ok := s.tokens.FindToken(chainID, address); ok {
		return known, nil
	}

	client, err := s.clients.GetClient(ctx, chain)
	if err != nil {
		return entity.Token{}, fmt.Errorf("failed to get client for chain %d: %w", chainID, err)
	}

	target := common.HexToAddress(address)
	results, err := s.batcher.Execute(ctx, client, []entity.ContractCall{
		{Target: target, ABI: abis.ERC20, Method: "name"},
		{Target: target, ABI: abis.ERC20, Method: "symbol"},
		{Target: target, ABI: abis.ERC20, Method: "decimals"},
	})
	if err != nil {
		return entity.Token{}, fmt.Errorf("failed to import token %s: %w", address, err)
	}

	name, nameOK := results[0].String()
	symbol, symbolOK := results[1].String()
	decimals, decimalsOK := results[2].Uint8()
	if !nameOK || !symbolOK || !decimalsOK {
		return entity.Token{}, fmt.Errorf("failed to import token %s: %w: contract does not look like an ERC-20 token",
			address, entity.ErrMissingMetadata)
	}

	token := entity.Token{
		ChainID:  chainID,
		Address:  target.Hex(),
		Name:     name,
		Symbol:   symbol,
		Decimals: decimals,
	}
	if s.tokens.AddToken(token) {
		s.logger.Info("Token imported", "chain_id", chainID, "address", token.Address, "symbol", symbol)
	}
	if stored, ok := s.tokens.FindToken(chainID, token.Address); ok {
		return stored, nil
	}
	return token, nil
}

// ListTokens returns the token list of a chain.
func (s *tokenServiceImpl) ListTokens(chainID uint64, includeNative bool) ([]entity.Token, error) {
	if _, ok := s.chains.Get(chainID); !ok {
		return nil, fmt.Errorf("%w: %d", entity.ErrUnsupportedChain, chainID)
	}
	tokens := s.tokens.TokensForChain(chainID, includeNative)
	if tokens == nil {
		tokens = []entity.Token{}
	}
	return tokens, nil
}
