package router

import (
	"net/http"

	"github.com/RowanMueller/ai-production/internal/api"
	"github.com/RowanMueller/ai-production/pkg/config"
	"github.com/RowanMueller/ai-production/pkg/di"
	"github.com/RowanMueller/ai-production/pkg/errors"
	"github.com/RowanMueller/ai-production/pkg/logger"
	"github.com/RowanMueller/ai-production/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)
	cfg := container.Config

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.SetTrustedProxies(cfg.Security.TrustedProxies)

	// Logger and metrics middleware sit outside the error handler so their
	// post-request observations see the status the error handler wrote
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(container.Metrics.Middleware())
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(bodySizeLimit(cfg.Security.MaxBodySize))

	rateLimiter := middleware.NewRateLimiter(container.Logger, middleware.RateLimiterOptions{
		Limit:          rate.Limit(cfg.Security.RateLimit),
		Burst:          cfg.Security.RateLimitBurst,
		ExpiryDuration: middleware.DefaultRateLimiterOptions().ExpiryDuration,
		KeyFunc:        middleware.DefaultRateLimiterOptions().KeyFunc,
	})
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Config.Security.AllowedOrigins))

	stockHandler := api.NewStockHandler(r.Container.Upstream)
	portfolioHandler := api.NewPortfolioHandler(r.Container.Upstream)
	chatHandler := api.NewChatHandler(r.Container.ChatService)
	statsHandler := api.NewStatsHandler(r.Container.Metrics)

	r.Engine.GET("/health", r.Container.Health.Handler())
	r.Engine.GET("/metrics", r.Container.Metrics.Handler())

	apiRoutes := r.Engine.Group("/api")
	{
		apiRoutes.GET("/stats", statsHandler.Stats)

		stockHandler.RegisterRoutes(apiRoutes)
		portfolioHandler.RegisterRoutes(apiRoutes)
		chatHandler.RegisterRoutes(apiRoutes)
	}
}

// bodySizeLimit rejects request bodies beyond the configured bound
func bodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// corsMiddleware reflects the request origin only when the configured
// allowlist permits it. A "*" entry allows any origin.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case origin == "":
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowAll || allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Authorization, Origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
