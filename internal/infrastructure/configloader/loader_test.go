package configloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("COINGECKO_API_KEY", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("ORDERBOOK_API_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.PriceCache.TTL)
	assert.Equal(t, "memory", cfg.PriceCache.Backend)
	assert.Equal(t, 10*time.Second, cfg.CoinGecko.RequestTimeout)
	assert.Equal(t, 20, cfg.Multicall.BatchSize)
	assert.Equal(t, 3, cfg.Multicall.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Multicall.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.Multicall.AttemptTimeout)
	assert.Equal(t, 5*time.Second, cfg.Metadata.Timeout)
	assert.Equal(t, "https://metadata.ens.domains", cfg.Metadata.ENSBaseURL)
	assert.Equal(t, "https://ipfs.io/ipfs/", cfg.Metadata.IPFSGateway)
	assert.Equal(t, "https://api.trader.xyz/orderbook/orders", cfg.OrderBook.BaseURL)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
server:
  port: "9090"
priceCache:
  ttl: 1m
multicall:
  batchSize: 5
rpc:
  overrides:
    1: ["https://rpc.example"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("COINGECKO_API_KEY", "secret")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ORDERBOOK_API_URL", "http://orders.local")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.PriceCache.TTL)
	assert.Equal(t, 5, cfg.Multicall.BatchSize)
	assert.Equal(t, []string{"https://rpc.example"}, cfg.RPC.Overrides[1])
	assert.Equal(t, "secret", cfg.CoinGecko.APIKey)
	assert.Equal(t, "https://pro-api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, "redis", cfg.PriceCache.Backend)
	assert.Equal(t, "localhost:6379", cfg.PriceCache.RedisAddr)
	assert.Equal(t, "http://orders.local", cfg.OrderBook.BaseURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultConfigPath, ResolvePath())

	t.Setenv("CONFIG_PATH", "/etc/agg.yml")
	assert.Equal(t, "/etc/agg.yml", ResolvePath())
}
