package server

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	agentrouter "github.com/plexify/plexify/engine/agent/router"
	exportrouter "github.com/plexify/plexify/engine/export/router"
	"github.com/plexify/plexify/engine/infra/cache"
	"github.com/plexify/plexify/engine/infra/server/appstate"
	"github.com/plexify/plexify/engine/infra/server/middleware/ratelimit"
	"github.com/plexify/plexify/engine/infra/server/middleware/size"
	"github.com/plexify/plexify/engine/infra/server/routes"
	llmrouter "github.com/plexify/plexify/engine/llm/router"
	podcastrouter "github.com/plexify/plexify/engine/podcast/router"
	ttsrouter "github.com/plexify/plexify/engine/tts/router"
	"github.com/plexify/plexify/pkg/logger"
)

// BuildRouter assembles middleware, API routes and static media serving.
func BuildRouter(ctx context.Context, deps *Dependencies) (*gin.Engine, error) {
	if deps == nil || deps.Config == nil || deps.State == nil {
		return nil, fmt.Errorf("dependencies are required")
	}
	cfg := deps.Config
	log := logger.FromContext(ctx)
	r := gin.New()
	r.Use(RequestIDMiddleware(log))
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	if cfg.Server.CORSEnabled {
		r.Use(CORSMiddleware(cfg.Server))
	}
	if deps.Monitoring != nil && deps.Monitoring.IsInitialized() {
		r.Use(deps.Monitoring.GinMiddleware())
		r.GET(deps.Monitoring.Path(), gin.WrapH(deps.Monitoring.ExporterHandler()))
	}
	if cfg.RateLimit.Enabled {
		if err := useRateLimit(ctx, r, deps); err != nil {
			return nil, err
		}
	}
	r.Use(appstate.StateMiddleware(deps.State))

	api := r.Group(routes.Base())
	api.GET("/health", CreateHealthHandler(cfg))
	limited := api.Group("", size.BodySizeLimiter(cfg.Server.BodyLimit))
	agentrouter.Register(limited)
	ttsrouter.Register(limited)
	podcastrouter.Register(limited)
	exportrouter.Register(limited)
	llmrouter.Register(limited)

	if deps.Store != nil {
		serveMedia(r, deps, cfg.Storage.AudioPath)
		serveMedia(r, deps, cfg.Storage.PodcastPath)
	}
	return r, nil
}

func useRateLimit(ctx context.Context, r *gin.Engine, deps *Dependencies) error {
	var client redis.UniversalClient
	if shared, ok := deps.TextCache.(*cache.RedisText); ok {
		client = shared.Client()
	}
	rlCfg := ratelimit.FromAppConfig(deps.Config)
	var manager *ratelimit.Manager
	var err error
	if deps.Monitoring != nil && deps.Monitoring.IsInitialized() {
		manager, err = ratelimit.NewManagerWithMetrics(rlCfg, client, deps.Monitoring.Meter())
	} else {
		manager, err = ratelimit.NewManager(rlCfg, client)
	}
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	r.Use(manager.Middleware())
	driver := "memory"
	if manager.Shared() {
		driver = "redis"
	}
	logger.FromContext(ctx).Info("Rate limiter initialized",
		"driver", driver,
		"limit", rlCfg.Rate.Limit,
		"period", rlCfg.Rate.Period)
	return nil
}

// serveMedia exposes <output dir><prefix> read-only under prefix.
func serveMedia(r *gin.Engine, deps *Dependencies, prefix string) {
	dir := filepath.Join(deps.Store.Root(), strings.Trim(prefix, "/"))
	r.StaticFS(prefix, afero.NewHttpFs(deps.Store.Fs()).Dir(dir))
}
