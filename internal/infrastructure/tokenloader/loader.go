package tokenloader

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// trustWalletChains maps chain ids to the TrustWallet assets repository folder.
var trustWalletChains = map[uint64]string{
	1:     "ethereum",
	10:    "optimism",
	137:   "polygon",
	250:   "fantom",
	8453:  "base",
	42161: "arbitrum",
	42220: "celo",
	43114: "avalanchex",
}

// tokenList is the Uniswap token-list document.
type tokenList struct {
	Name   string         `json:"name"`
	Tokens []entity.Token `json:"tokens"`
}

// TokenListLoader implements port.TokenProvider over a bundled token list plus tokens imported at runtime.
type TokenListLoader struct {
	chains port.ChainRegistry
	logger port.Logger

	mu      sync.RWMutex
	byChain map[uint64][]entity.Token
	index   map[string]int // token key -> position in byChain[chainID]
}

// NewTokenListLoader creates an empty loader. Call Load or LoadFile to populate it.
func NewTokenListLoader(chains port.ChainRegistry, log port.Logger) *TokenListLoader {
	return &TokenListLoader{
		chains:  chains,
		logger:  log,
		byChain: make(map[uint64][]entity.Token),
		index:   make(map[string]int),
	}
}

// LoadFile reads a token list from path. A missing file leaves the list empty.
func (l *TokenListLoader) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("Token list file not found, starting with native tokens only", "path", path)
			return nil
		}
		return fmt.Errorf("failed to read token list %s: %w", path, err)
	}
	return l.Load(data)
}

// Load parses a token list document. Tokens of unknown chains, with malformed addresses
// or duplicated identities are skipped.
func (l *TokenListLoader) Load(data []byte) error {
	var list tokenList
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to unmarshal token list: %w", err)
	}

	loaded := 0
	for _, t := range list.Tokens {
		if _, ok := l.chains.Get(t.ChainID); !ok {
			l.logger.Debug("Token for unknown chain, skipping", "symbol", t.Symbol, "chainId", t.ChainID)
			continue
		}
		if !utils.IsHexAddress(t.Address) {
			l.logger.Warn("Token has malformed address, skipping", "symbol", t.Symbol, "address", t.Address)
			continue
		}
		if l.AddToken(t) {
			loaded++
		}
	}
	l.logger.Info("Token list loaded", "name", list.Name, "tokens", loaded)
	return nil
}

// TokensForChain returns the chain's tokens in list order, preceded by the native token when requested.
func (l *TokenListLoader) TokensForChain(chainID uint64, includeNative bool) []entity.Token {
	l.mu.RLock()
	listed := l.byChain[chainID]
	out := make([]entity.Token, 0, len(listed)+1)
	if includeNative {
		if chain, ok := l.chains.Get(chainID); ok {
			out = append(out, chain.NativeToken())
		}
	}
	out = append(out, listed...)
	l.mu.RUnlock()
	return out
}

// FindToken looks a token up by (chainId, address), case-insensitively.
// The native sentinel resolves to the chain's native token.
func (l *TokenListLoader) FindToken(chainID uint64, address string) (entity.Token, bool) {
	if entity.IsNativeAddress(address) {
		chain, ok := l.chains.Get(chainID)
		if !ok {
			return entity.Token{}, false
		}
		return chain.NativeToken(), true
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	pos, ok := l.index[entity.TokenKey(chainID, address)]
	if !ok {
		return entity.Token{}, false
	}
	return l.byChain[chainID][pos], true
}

// AddToken stores token unless one with the same identity exists. It reports whether the token was added.
func (l *TokenListLoader) AddToken(token entity.Token) bool {
	if token.IsNative() {
		return false
	}
	if token.LogoURI == "" {
		token.LogoURI = LogoURL(token.ChainID, token.Address)
	}

	key := token.Key()
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.index[key]; exists {
		return false
	}
	l.index[key] = len(l.byChain[token.ChainID])
	l.byChain[token.ChainID] = append(l.byChain[token.ChainID], token)
	return true
}

// LogoURL returns the TrustWallet logo of a token, or "" for chains TrustWallet does not cover.
func LogoURL(chainID uint64, address string) string {
	folder, ok := trustWalletChains[chainID]
	if !ok || !common.IsHexAddress(address) {
		return ""
	}
	return fmt.Sprintf(
		"https://raw.githubusercontent.com/trustwallet/tokens/master/blockchains/%s/assets/%s/logo.png",
		folder, common.HexToAddress(strings.TrimSpace(address)).Hex(),
	)
}
