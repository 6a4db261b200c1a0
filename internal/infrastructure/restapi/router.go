package restapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterOptions configures SetupRouter.
type RouterOptions struct {
	AllowedOrigins []string
	// SwaggerSpecPath is served at /docs/swagger.yaml when set.
	SwaggerSpecPath string
}

// SetupRouter настраивает и возвращает экземпляр Gin роутера.
func SetupRouter(h *Handler, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestID(),
		AccessLog(logger.Named("HTTP")),
		cors.New(corsConfig(opts.AllowedOrigins)),
	)

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.SwaggerSpecPath != "" {
		router.StaticFile("/docs/swagger.yaml", opts.SwaggerSpecPath)
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.yaml")))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/chains", h.ListChains)
		v1.GET("/chains/:chainId", h.GetChain)
		v1.GET("/chains/:chainId/tokens", h.ListTokens)
		v1.POST("/chains/:chainId/tokens/import", h.ImportToken)
		v1.GET("/chains/:chainId/prices", h.GetTokenPrices)
		v1.GET("/chains/:chainId/prices/native", h.GetNativePrice)
		v1.GET("/chains/:chainId/balances/:account", h.GetBalances)
		v1.GET("/chains/:chainId/assets/:contract", h.GetAssets)
		v1.GET("/chains/:chainId/collections/:contract", h.GetCollection)

		v1.GET("/orders", h.GetOrders)
		v1.GET("/orders/assets", h.GetOrderAssets)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
