package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/engine/llm/normalizer"
	"github.com/plexify/plexify/engine/llm/usage"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
)

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.7
)

// GenerateRequest is a free-form completion routed through a provider.
type GenerateRequest struct {
	Prompt      string   `json:"prompt"      binding:"required"`
	System      string   `json:"system"`
	Model       string   `json:"model"`
	MaxTokens   int      `json:"maxTokens"   binding:"omitempty,min=1,max=8192"`
	Temperature *float64 `json:"temperature" binding:"omitempty,min=0,max=2"`
}

// Gateway routes completions to a provider and normalizes the reply.
type Gateway struct {
	anthropic Invoker
	openai    Invoker
	cfg       *config.Config
	metrics   usage.Metrics
}

// New wires a Gateway. A nil metrics sink records nothing.
func New(cfg *config.Config, anthropic, openai Invoker, metrics usage.Metrics) *Gateway {
	if metrics == nil {
		metrics = usage.Nop()
	}
	return &Gateway{anthropic: anthropic, openai: openai, cfg: cfg, metrics: metrics}
}

// Anthropic returns the executor used for Anthropic calls.
func (g *Gateway) Anthropic() Invoker {
	return g.anthropic
}

// AnthropicRequest fills key, key source and candidates from configuration.
// preferred overrides the configured model when set.
func (g *Gateway) AnthropicRequest(preferred string) *Request {
	model := preferred
	if model == "" {
		model = g.cfg.Anthropic.Model
	}
	return &Request{
		APIKey:     g.cfg.Anthropic.APIKey.Value(),
		KeySource:  g.cfg.Anthropic.KeySource,
		Candidates: Candidates(model, g.cfg.Anthropic.FallbackModels...),
	}
}

// HasUsableKey reports whether the provider's configured key looks valid.
func (g *Gateway) HasUsableKey(provider core.ProviderName) bool {
	switch provider {
	case core.ProviderAnthropic:
		return UsableKey(g.cfg.Anthropic.APIKey.Value(), provider.KeyPrefix())
	case core.ProviderOpenAI:
		return UsableKey(g.cfg.OpenAI.APIKey.Value(), "")
	default:
		return false
	}
}

// Generate runs req against provider and returns the normalized reply.
func (g *Gateway) Generate(
	ctx context.Context,
	provider core.ProviderName,
	req *GenerateRequest,
) (*normalizer.StandardResponse, error) {
	invReq, invoker, err := g.prepare(provider, req)
	if err != nil {
		return nil, err
	}
	resp, err := Complete(ctx, provider, invoker, invReq, usage.ComponentGateway, g.metrics)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Gateway generation completed",
		"provider", provider,
		"model", resp.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"latency_ms", resp.Latency,
	)
	return resp, nil
}

func (g *Gateway) prepare(provider core.ProviderName, req *GenerateRequest) (*Request, Invoker, error) {
	if req == nil {
		return nil, nil, fmt.Errorf("nil generate request")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	switch provider {
	case core.ProviderAnthropic:
		if !g.HasUsableKey(provider) {
			return nil, nil, &ConfigError{Provider: provider, Detail: DescribeKey(
				g.cfg.Anthropic.KeySource, g.cfg.Anthropic.APIKey.Value(), provider.KeyPrefix()).String()}
		}
		r := g.AnthropicRequest(req.Model)
		r.MaxTokens = maxTokens
		r.Temperature = temperature
		r.System = req.System
		r.Prompt = req.Prompt
		return r, g.anthropic, nil
	case core.ProviderOpenAI:
		if !g.HasUsableKey(provider) {
			return nil, nil, &ConfigError{Provider: provider, Detail: "OPENAI_API_KEY is not set"}
		}
		model := req.Model
		if model == "" {
			model = g.cfg.OpenAI.Model
		}
		return &Request{
			APIKey:      g.cfg.OpenAI.APIKey.Value(),
			KeySource:   config.GetEnvVarForConfigPath("openai.api_key"),
			Candidates:  Candidates(model),
			MaxTokens:   maxTokens,
			Temperature: temperature,
			System:      req.System,
			Prompt:      req.Prompt,
		}, g.openai, nil
	default:
		return nil, nil, &UnsupportedProviderError{Provider: provider}
	}
}

// UnsupportedProviderError is returned for provider tags the gateway cannot route.
type UnsupportedProviderError struct {
	Provider core.ProviderName
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q", e.Provider)
}

func (e *UnsupportedProviderError) StatusCode() int {
	return http.StatusBadRequest
}
