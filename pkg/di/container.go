// Package di wires the gateway's components together
package di

import (
	"context"

	"github.com/RowanMueller/ai-production/internal/service"
	"github.com/RowanMueller/ai-production/internal/session"
	"github.com/RowanMueller/ai-production/internal/upstream"
	"github.com/RowanMueller/ai-production/pkg/cache"
	"github.com/RowanMueller/ai-production/pkg/config"
	"github.com/RowanMueller/ai-production/pkg/health"
	"github.com/RowanMueller/ai-production/pkg/logger"
	"github.com/RowanMueller/ai-production/pkg/metrics"
)

// Container holds all shared dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
	Cache       *cache.Cache
	Store       *session.Store
	Upstream    upstream.AnalysisService
	ChatService *service.ChatService
	Health      *health.Checker
}

// New builds the dependency graph
func New(cfg *config.Config, log *logger.Logger) *Container {
	m := metrics.New()

	var responseCache *cache.Cache
	if cfg.Cache.Enabled {
		responseCache = cache.New(cfg.Cache.TTL, cfg.Cache.PurgeWindow, cfg.Cache.MaxSize)
	}

	store := session.NewStore(session.Options{
		TTL:           cfg.Sessions.TTL,
		MaxSessions:   cfg.Sessions.MaxSessions,
		SweepInterval: cfg.Sessions.SweepInterval,
	})

	ai := upstream.New(upstream.Options{
		BaseURL:    cfg.Upstream.BaseURL,
		Timeout:    cfg.Upstream.Timeout,
		RetryCount: cfg.Upstream.RetryCount,
		Cache:      responseCache,
		Metrics:    m,
		Logger:     log,
	})

	chatService := service.NewChatService(store, ai, m, log, cfg.Sessions.MaxHistoryMessages)

	checker := health.NewChecker(log)
	checker.RegisterCheck("analysis-service", func() (health.Status, string, error) {
		if err := ai.Health(context.Background()); err != nil {
			return health.StatusDegraded, "Analysis service is unreachable", err
		}
		return health.StatusUp, "Analysis service is reachable", nil
	})

	return &Container{
		Config:      cfg,
		Logger:      log,
		Metrics:     m,
		Cache:       responseCache,
		Store:       store,
		Upstream:    ai,
		ChatService: chatService,
		Health:      checker,
	}
}

// Start launches background workers owned by the container
func (c *Container) Start(ctx context.Context) {
	c.Store.StartSweeper(ctx)
}
