package server

import (
	"context"
	"fmt"

	"github.com/plexify/plexify/engine/agent"
	agentuc "github.com/plexify/plexify/engine/agent/uc"
	"github.com/plexify/plexify/engine/infra/cache"
	"github.com/plexify/plexify/engine/infra/monitoring"
	"github.com/plexify/plexify/engine/infra/server/appstate"
	"github.com/plexify/plexify/engine/llm/gateway"
	"github.com/plexify/plexify/engine/podcast"
	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/engine/storage"
	"github.com/plexify/plexify/engine/tts"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
)

// Dependencies is everything the router needs, built once per process.
type Dependencies struct {
	Config     *config.Config
	State      *appstate.State
	Store      *storage.Store
	TextCache  cache.TextCache
	Monitoring *monitoring.Service
}

// Option customizes dependency construction, mostly for tests.
type Option func(*buildOptions)

type buildOptions struct {
	store     *storage.Store
	textCache cache.TextCache
	invoker   gateway.Invoker
	synth     tts.Synthesizer
}

func WithStore(s *storage.Store) Option {
	return func(o *buildOptions) { o.store = s }
}

func WithTextCache(c cache.TextCache) Option {
	return func(o *buildOptions) { o.textCache = c }
}

// WithInvoker replaces the Anthropic executor.
func WithInvoker(inv gateway.Invoker) Option {
	return func(o *buildOptions) { o.invoker = inv }
}

func WithSynthesizer(s tts.Synthesizer) Option {
	return func(o *buildOptions) { o.synth = s }
}

// BuildDependencies wires the services from cfg.
func BuildDependencies(ctx context.Context, cfg *config.Config, opts ...Option) (*Dependencies, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	o := &buildOptions{}
	for _, opt := range opts {
		opt(o)
	}
	log := logger.FromContext(ctx)
	mon := monitoring.NewServiceWithFallback(ctx, &cfg.Monitoring)
	usageMetrics := mon.UsageMetrics()
	if o.textCache == nil {
		textCache, err := cache.NewFromConfig(ctx, &cfg.Sources)
		if err != nil {
			return nil, fmt.Errorf("text cache: %w", err)
		}
		o.textCache = textCache
	}
	if o.store == nil {
		o.store = storage.NewOSStore(cfg.Storage.OutputDir)
	}
	if o.invoker == nil {
		o.invoker = gateway.NewAnthropicExecutor(&cfg.Anthropic)
	}
	if o.synth == nil {
		synth, err := tts.NewSynthesizer(cfg)
		if err != nil {
			return nil, err
		}
		o.synth = synth
	}
	loader := source.NewLoader(&cfg.Sources, o.textCache)
	agents, err := agent.NewService(o.invoker, &cfg.Anthropic, agent.WithMetrics(usageMetrics))
	if err != nil {
		return nil, fmt.Errorf("agent service: %w", err)
	}
	podcasts, err := podcast.NewService(o.invoker, o.synth, o.store, loader, cfg, podcast.WithMetrics(usageMetrics))
	if err != nil {
		return nil, fmt.Errorf("podcast service: %w", err)
	}
	state, err := appstate.NewState(cfg)
	if err != nil {
		return nil, err
	}
	state.Generate = agentuc.NewGenerateAgentOutput(agents, loader)
	state.Catalog = agentuc.NewListAgents(agents.Registry())
	state.TTS = tts.NewService(o.synth, o.store, cfg, usageMetrics)
	state.Podcast = podcasts
	state.Gateway = gateway.New(cfg, o.invoker, gateway.NewOpenAIClient(&cfg.OpenAI), usageMetrics)
	log.Info("Dependencies ready",
		"demo_agents", agents.DemoMode(),
		"tts_provider", o.synth.Name(),
		"cache_driver", cfg.Sources.CacheDriver,
		"output_dir", cfg.Storage.OutputDir,
	)
	return &Dependencies{
		Config:     cfg,
		State:      state,
		Store:      o.store,
		TextCache:  o.textCache,
		Monitoring: mon,
	}, nil
}

// Close releases the cache connection and flushes metrics.
func (d *Dependencies) Close(ctx context.Context) error {
	var firstErr error
	if d.TextCache != nil {
		if err := d.TextCache.Close(); err != nil {
			firstErr = err
		}
	}
	if d.Monitoring != nil {
		if err := d.Monitoring.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
