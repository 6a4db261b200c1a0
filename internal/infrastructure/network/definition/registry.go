package networkdefinition

import (
	"fmt"
	"sort"
	"strconv"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
)

// RPCOptions carries provider keys and explicit per-chain RPC overrides.
type RPCOptions struct {
	InfuraAPIKey  string
	AlchemyAPIKey string
	Overrides     map[uint64][]string
}

// Registry is the immutable chain table built at start-up.
type Registry struct {
	logger port.Logger
	chains map[uint64]entity.Chain
	sorted []entity.Chain
}

// NewRegistry builds the chain table. Keyed providers come first in RPCURLs,
// followed by public endpoints; an override replaces the list entirely.
func NewRegistry(log port.Logger, opts RPCOptions) *Registry {
	r := &Registry{
		logger: log,
		chains: make(map[uint64]entity.Chain, len(knownChains)),
	}

	for _, tpl := range knownChains {
		c := tpl.chain
		c.RPCURLs = buildRPCURLs(tpl, opts)
		r.chains[c.ID] = c
		r.sorted = append(r.sorted, c)
	}
	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].ID < r.sorted[j].ID })

	for id := range opts.Overrides {
		if _, ok := r.chains[id]; !ok {
			r.logger.Warn("RPC override configured for unknown chain, ignoring", "chainId", id)
		}
	}

	r.logger.Info(fmt.Sprintf("Chain registry initialized with %d chains", len(r.sorted)))
	return r
}

func buildRPCURLs(tpl chainTemplate, opts RPCOptions) []string {
	if override, ok := opts.Overrides[tpl.chain.ID]; ok && len(override) > 0 {
		return append([]string(nil), override...)
	}

	urls := make([]string, 0, len(tpl.chain.RPCURLs)+2)
	if tpl.infura != "" && opts.InfuraAPIKey != "" {
		urls = append(urls, fmt.Sprintf(tpl.infura, opts.InfuraAPIKey))
	}
	if tpl.alchemy != "" && opts.AlchemyAPIKey != "" {
		urls = append(urls, fmt.Sprintf(tpl.alchemy, opts.AlchemyAPIKey))
	}
	return append(urls, tpl.chain.RPCURLs...)
}

// Get returns the chain with the given id.
func (r *Registry) Get(chainID uint64) (entity.Chain, bool) {
	c, ok := r.chains[chainID]
	return c, ok
}

// All returns every known chain sorted by id.
func (r *Registry) All() []entity.Chain {
	out := make([]entity.Chain, len(r.sorted))
	copy(out, r.sorted)
	return out
}

// IsSupportedPlatform reports whether token prices can be fetched for the chain.
func (r *Registry) IsSupportedPlatform(chainID uint64) bool {
	c, ok := r.chains[chainID]
	return ok && c.SupportsTokenPrices()
}

// AddChainParameters returns the wallet_addEthereumChain payload for the chain.
func (r *Registry) AddChainParameters(chainID uint64) (entity.AddChainParameters, error) {
	c, ok := r.chains[chainID]
	if !ok {
		return entity.AddChainParameters{}, fmt.Errorf("%w: %d", entity.ErrUnsupportedChain, chainID)
	}
	params := entity.AddChainParameters{
		ChainID:        "0x" + strconv.FormatUint(c.ID, 16),
		ChainName:      c.Name,
		NativeCurrency: c.NativeCurrency,
		RPCURLs:        append([]string(nil), c.RPCURLs...),
	}
	if c.BlockExplorerURL != "" {
		params.BlockExplorerURLs = []string{c.BlockExplorerURL}
	}
	return params, nil
}
