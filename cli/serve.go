package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plexify/plexify/engine/infra/server"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
)

const localhost = "localhost"

// ServeCmd starts the HTTP API.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start", "server"},
		Short:   "Start the Plexify HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger.FromContext(ctx).Info("Starting Plexify server",
				"environment", cfg.Runtime.Environment,
				"tts_provider", cfg.TTS.Provider,
				"cache_driver", cfg.Sources.CacheDriver,
			)
			if cfg.Runtime.Environment == "production" {
				logProductionWarnings(ctx, cfg)
			}
			srv, err := server.NewServer(ctx)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return srv.Run()
		},
	}
}

func logProductionWarnings(ctx context.Context, cfg *config.Config) {
	log := logger.FromContext(ctx)
	if !cfg.RateLimit.Enabled {
		log.Warn("Rate limiting is disabled in production", "hint", "ratelimit.enabled=true")
	}
	if cfg.Server.CORSEnabled && len(cfg.Server.CORSAllowedOrigins) == 0 {
		log.Warn("CORS admits every origin in production", "hint", "server.cors_allowed_origins")
	}
	for _, origin := range cfg.Server.CORSAllowedOrigins {
		if strings.Contains(origin, localhost) {
			log.Warn("CORS allows localhost origins in production", "origin", origin)
			break
		}
	}
}
