package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/app/service"
	"market_aggregator/internal/infrastructure/configloader"
	"market_aggregator/internal/infrastructure/httpclient"
	clientprovider "market_aggregator/internal/infrastructure/network/client"
	networkdefinition "market_aggregator/internal/infrastructure/network/definition"
	"market_aggregator/internal/infrastructure/pricecache"
	"market_aggregator/internal/infrastructure/restapi"
	"market_aggregator/internal/infrastructure/tokenloader"
	"market_aggregator/internal/pkg/logger"
	"market_aggregator/internal/pkg/metrics"
	"market_aggregator/internal/pkg/retry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	swaggerSpecPath = "./docs/swagger.yaml"
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := configloader.Load(configloader.ResolvePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.NewZapLogger(cfg.Logging.Level, cfg.Logging.Encoding)
	defer zapLogger.Sync()
	logger.InstallSlog(zapLogger)
	metrics.MustRegister()

	logger.Info("Market aggregator is starting...", "port", cfg.Server.Port, "priceCache", cfg.PriceCache.Backend)

	appLogger := logger.NewSlogAdapter()

	chains := networkdefinition.NewRegistry(logger.NewComponentLogger("ChainRegistry"), networkdefinition.RPCOptions{
		InfuraAPIKey:  cfg.RPC.InfuraAPIKey,
		AlchemyAPIKey: cfg.RPC.AlchemyAPIKey,
		Overrides:     cfg.RPC.Overrides,
	})

	tokens := tokenloader.NewTokenListLoader(chains, logger.NewComponentLogger("TokenList"))
	if err := tokens.LoadFile(cfg.Tokens.ListPath); err != nil {
		logger.Fatal("Failed to load token list", "path", cfg.Tokens.ListPath, "error", err)
	}

	clients := clientprovider.NewEVMClientProvider(clientprovider.ProviderOptions{
		ConnectionTimeout: cfg.RPC.ConnectionTimeout,
		RateLimit:         cfg.RPC.RateLimit,
		Burst:             cfg.RPC.Burst,
	}, logger.NewComponentLogger("EVMClientProvider"))

	priceClient := httpclient.NewCoinGeckoClient(cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey, cfg.CoinGecko.RequestTimeout, zapLogger)
	orderBookClient := httpclient.NewOrderBookClient(cfg.OrderBook.BaseURL, cfg.OrderBook.RequestTimeout, zapLogger)
	metadataClient := httpclient.NewMetadataClient(cfg.Metadata.Timeout, zapLogger)
	ensClient := httpclient.NewENSClient(cfg.Metadata.ENSBaseURL, cfg.Metadata.Timeout, zapLogger)

	priceCache, closeCache := newPriceCache(cfg.PriceCache, zapLogger)
	defer closeCache()

	policy := retry.Policy{
		MaxAttempts: cfg.Multicall.MaxAttempts,
		Delay:       cfg.Multicall.RetryDelay,
		Timeout:     cfg.Multicall.AttemptTimeout,
	}
	batcher := service.NewMulticallBatcher(policy, logger.NewComponentLogger("MulticallBatcher"))

	priceService := service.NewPriceService(chains, priceClient, priceCache, logger.NewComponentLogger("PriceService"), cfg.CoinGecko.RequestTimeout)
	balanceService := service.NewBalanceService(chains, clients, tokens, priceService, batcher, cfg.Multicall.BatchSize, logger.NewComponentLogger("BalanceService"))
	tokenService := service.NewTokenService(chains, clients, tokens, batcher, logger.NewComponentLogger("TokenService"))

	strategies := []port.AssetStrategy{
		service.NewENSStrategy(ensClient, policy, cfg.Metadata.Concurrency, logger.NewComponentLogger("ENSStrategy")),
		service.NewGeneralStrategy(batcher, cfg.Multicall.BatchSize, logger.NewComponentLogger("MulticallStrategy")),
	}
	metadataResolver := service.NewMetadataResolver(metadataClient, cfg.Metadata.IPFSGateway, logger.NewComponentLogger("MetadataResolver"))
	assetService := service.NewAssetService(chains, clients, strategies, metadataResolver, batcher, cfg.Metadata.Concurrency, logger.NewComponentLogger("AssetService"))
	orderService := service.NewOrderService(orderBookClient, assetService, priceService, tokens, logger.NewComponentLogger("OrderService"))

	appLogger.Info("Services initialized")

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	handler := restapi.NewHandler(chains, tokenService, priceService, balanceService, assetService, orderService, zapLogger)

	opts := restapi.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins}
	if _, err := os.Stat(swaggerSpecPath); err == nil {
		opts.SwaggerSpecPath = swaggerSpecPath
	}
	router := restapi.SetupRouter(handler, zapLogger, opts)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logger.Info("Shutdown signal received, stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
	} else {
		logger.Info("HTTP server stopped.")
	}
}

// newPriceCache picks the configured backend; the returned func releases it.
func newPriceCache(cfg configloader.PriceCacheConfig, zapLogger *zap.Logger) (port.PriceCache, func()) {
	if cfg.Backend != "redis" || cfg.RedisAddr == "" {
		return pricecache.NewMemory(cfg.TTL, zapLogger), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis is unreachable, lookups will miss until it recovers", "addr", cfg.RedisAddr, "error", err)
	}
	return pricecache.NewRedis(rdb, cfg.RedisKey, cfg.TTL, zapLogger), func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("Failed to close Redis client", "error", err)
		}
	}
}
