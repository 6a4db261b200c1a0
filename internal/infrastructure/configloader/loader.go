package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config/config.yml"

	defaultPort                 = "8080"
	defaultCoinGeckoBaseURL     = "https://api.coingecko.com/api/v3"
	defaultCoinGeckoProBaseURL  = "https://pro-api.coingecko.com/api/v3"
	defaultVsCurrency           = "usd"
	defaultPriceCacheTTL        = 30 * time.Second
	defaultPriceRequestTimeout  = 10 * time.Second
	defaultMulticallBatchSize   = 20
	defaultMaxAttempts          = 3
	defaultRetryDelay           = 2 * time.Second
	defaultAttemptTimeout       = 10 * time.Second
	defaultMetadataTimeout      = 5 * time.Second
	defaultMetadataConcurrency  = 8
	defaultENSMetadataBaseURL   = "https://metadata.ens.domains"
	defaultIPFSGateway          = "https://ipfs.io/ipfs/"
	defaultOrderBookURL         = "https://api.trader.xyz/orderbook/orders"
	defaultOrderBookTimeout     = 10 * time.Second
	defaultTokenListPath        = "data/tokenlist.json"
	defaultRPCConnectionTimeout = 10 * time.Second
	defaultRPCRateLimit         = 25
	defaultRPCBurst             = 50
	defaultRedisKey             = "market_aggregator:prices"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	Mode           string   `yaml:"mode"` // gin mode: debug | release | test
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"` // json | console
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseURL"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	VsCurrency     string        `yaml:"vsCurrency"`
}

// PriceCacheConfig selects the price cache backend.
type PriceCacheConfig struct {
	Backend   string        `yaml:"backend"` // memory | redis
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redisAddr"`
	RedisDB   int           `yaml:"redisDB"`
	RedisKey  string        `yaml:"redisKey"`
}

// MulticallConfig holds batching and retry parameters for on-chain reads.
type MulticallConfig struct {
	BatchSize      int           `yaml:"batchSize"`
	MaxAttempts    int           `yaml:"maxAttempts"`
	RetryDelay     time.Duration `yaml:"retryDelay"`
	AttemptTimeout time.Duration `yaml:"attemptTimeout"`
}

// MetadataConfig holds NFT metadata fetching parameters.
type MetadataConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	IPFSGateway string        `yaml:"ipfsGateway"`
	ENSBaseURL  string        `yaml:"ensBaseURL"`
	Concurrency int           `yaml:"concurrency"`
}

// OrderBookConfig holds order-book API parameters.
type OrderBookConfig struct {
	BaseURL        string        `yaml:"baseURL"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// RPCConfig holds per-chain RPC overrides and client limits.
type RPCConfig struct {
	InfuraAPIKey      string              `yaml:"infuraApiKey"`
	AlchemyAPIKey     string              `yaml:"alchemyApiKey"`
	ConnectionTimeout time.Duration       `yaml:"connectionTimeout"`
	RateLimit         float64             `yaml:"rateLimit"` // requests per second per chain
	Burst             int                 `yaml:"burst"`
	Overrides         map[uint64][]string `yaml:"overrides"`
}

// TokensConfig points to the bundled token list.
type TokensConfig struct {
	ListPath string `yaml:"listPath"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	CoinGecko  CoinGeckoConfig  `yaml:"coingecko"`
	PriceCache PriceCacheConfig `yaml:"priceCache"`
	Multicall  MulticallConfig  `yaml:"multicall"`
	Metadata   MetadataConfig   `yaml:"metadata"`
	OrderBook  OrderBookConfig  `yaml:"orderBook"`
	RPC        RPCConfig        `yaml:"rpc"`
	Tokens     TokensConfig     `yaml:"tokens"`
}

// ResolvePath returns the config path from CONFIG_PATH or the default.
func ResolvePath() string {
	if p := strings.TrimSpace(os.Getenv("CONFIG_PATH")); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load reads the YAML configuration file, applies defaults and environment overrides.
// A missing file is not an error: defaults and environment are enough to run.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	var cfg Config
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults", path)
	default:
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.CoinGecko.APIKey = v
	}
	if v := os.Getenv("INFURA_API_KEY"); v != "" {
		cfg.RPC.InfuraAPIKey = v
	}
	if v := os.Getenv("ALCHEMY_API_KEY"); v != "" {
		cfg.RPC.AlchemyAPIKey = v
	}
	if v := os.Getenv("ORDERBOOK_API_URL"); v != "" {
		cfg.OrderBook.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.PriceCache.RedisAddr = v
		if cfg.PriceCache.Backend == "" {
			cfg.PriceCache.Backend = "redis"
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultPort
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Encoding == "" {
		cfg.Logging.Encoding = "json"
	}

	if cfg.CoinGecko.BaseURL == "" {
		// Pro keys only work against the pro host
		if cfg.CoinGecko.APIKey != "" {
			cfg.CoinGecko.BaseURL = defaultCoinGeckoProBaseURL
		} else {
			cfg.CoinGecko.BaseURL = defaultCoinGeckoBaseURL
		}
		logrus.Infof("CoinGecko.BaseURL not set, defaulting to %s", cfg.CoinGecko.BaseURL)
	}
	if cfg.CoinGecko.RequestTimeout <= 0 {
		cfg.CoinGecko.RequestTimeout = defaultPriceRequestTimeout
	}
	if cfg.CoinGecko.VsCurrency == "" {
		cfg.CoinGecko.VsCurrency = defaultVsCurrency
	}

	if cfg.PriceCache.Backend == "" {
		cfg.PriceCache.Backend = "memory"
	}
	if cfg.PriceCache.TTL <= 0 {
		cfg.PriceCache.TTL = defaultPriceCacheTTL
	}
	if cfg.PriceCache.RedisKey == "" {
		cfg.PriceCache.RedisKey = defaultRedisKey
	}

	if cfg.Multicall.BatchSize <= 0 {
		cfg.Multicall.BatchSize = defaultMulticallBatchSize
	}
	if cfg.Multicall.MaxAttempts <= 0 {
		cfg.Multicall.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Multicall.RetryDelay <= 0 {
		cfg.Multicall.RetryDelay = defaultRetryDelay
	}
	if cfg.Multicall.AttemptTimeout <= 0 {
		cfg.Multicall.AttemptTimeout = defaultAttemptTimeout
	}

	if cfg.Metadata.Timeout <= 0 {
		cfg.Metadata.Timeout = defaultMetadataTimeout
	}
	if cfg.Metadata.IPFSGateway == "" {
		cfg.Metadata.IPFSGateway = defaultIPFSGateway
	}
	if cfg.Metadata.ENSBaseURL == "" {
		cfg.Metadata.ENSBaseURL = defaultENSMetadataBaseURL
	}
	if cfg.Metadata.Concurrency <= 0 {
		cfg.Metadata.Concurrency = defaultMetadataConcurrency
	}

	if cfg.OrderBook.BaseURL == "" {
		cfg.OrderBook.BaseURL = defaultOrderBookURL
	}
	if cfg.OrderBook.RequestTimeout <= 0 {
		cfg.OrderBook.RequestTimeout = defaultOrderBookTimeout
	}

	if cfg.RPC.ConnectionTimeout <= 0 {
		cfg.RPC.ConnectionTimeout = defaultRPCConnectionTimeout
	}
	if cfg.RPC.RateLimit <= 0 {
		cfg.RPC.RateLimit = defaultRPCRateLimit
	}
	if cfg.RPC.Burst <= 0 {
		cfg.RPC.Burst = defaultRPCBurst
	}

	if cfg.Tokens.ListPath == "" {
		cfg.Tokens.ListPath = defaultTokenListPath
	}
}
