package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"

	"golang.org/x/time/rate"
)

// ProviderOptions configures connections handed out by EVMClientProvider.
type ProviderOptions struct {
	ConnectionTimeout time.Duration
	RateLimit         float64 // requests per second per chain; <= 0 disables limiting
	Burst             int
}

// EVMClientProvider implements port.ChainClientProvider and caches one client per chain.
type EVMClientProvider struct {
	clients map[uint64]port.ChainClient
	mu      sync.Mutex
	logger  port.Logger
	opts    ProviderOptions
	dial    func(ctx context.Context, chain entity.Chain) (port.ChainClient, error)
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(opts ProviderOptions, log port.Logger) *EVMClientProvider {
	p := &EVMClientProvider{
		clients: make(map[uint64]port.ChainClient),
		logger:  log,
		opts:    opts,
	}
	p.dial = p.dialEVM
	return p
}

func (p *EVMClientProvider) dialEVM(_ context.Context, chain entity.Chain) (port.ChainClient, error) {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if p.opts.RateLimit > 0 {
		burst := p.opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(p.opts.RateLimit), burst)
	}
	return NewEVMClient(chain, p.opts.ConnectionTimeout, limiter)
}

// GetClient returns the cached client for chain, dialing it on first use.
func (p *EVMClientProvider) GetClient(ctx context.Context, chain entity.Chain) (port.ChainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[chain.ID]; ok {
		return c, nil
	}

	newClient, err := p.dial(ctx, chain)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "chainId", chain.ID, "network", chain.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", chain.Name, err)
	}

	p.clients[chain.ID] = newClient
	p.logger.Info("Successfully created and cached new EVM client", "chainId", chain.ID, "network", chain.Name)
	return newClient, nil
}
