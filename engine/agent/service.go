package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/engine/llm/gateway"
	"github.com/plexify/plexify/engine/llm/normalizer"
	"github.com/plexify/plexify/engine/llm/usage"
	"github.com/plexify/plexify/engine/schema"
	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
	"github.com/plexify/plexify/pkg/tplengine"
)

// GenerateInput is one agent run over already loaded sources.
type GenerateInput struct {
	AgentID      string
	ProjectID    string
	Sources      []source.Source
	Instructions string
	// Model overrides the configured preferred model.
	Model string
}

// Service runs structured-output agents against the Anthropic executor.
type Service struct {
	invoker  gateway.Invoker
	cfg      *config.AnthropicConfig
	registry *Registry
	prompts  *tplengine.TemplateEngine
	now      func() time.Time
	metrics  usage.Metrics
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithMetrics(m usage.Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithRegistry(r *Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// NewService builds a Service over the default registry unless one is supplied.
func NewService(invoker gateway.Invoker, cfg *config.AnthropicConfig, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("anthropic config is required")
	}
	s := &Service{
		invoker: invoker,
		cfg:     cfg,
		prompts: newPromptEngine(),
		now:     time.Now,
		metrics: usage.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		r, err := DefaultRegistry()
		if err != nil {
			return nil, err
		}
		s.registry = r
	}
	return s, nil
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// DemoMode reports whether runs are served from fixed payloads.
func (s *Service) DemoMode() bool {
	return !gateway.UsableKey(s.cfg.APIKey.Value(), core.ProviderAnthropic.KeyPrefix())
}

// Generate runs the agent and wraps its output in an Envelope.
func (s *Service) Generate(ctx context.Context, in *GenerateInput) (*Envelope, error) {
	def, ok := s.registry.Get(in.AgentID)
	if !ok {
		return nil, ErrUnknownAgent
	}
	log := logger.FromContext(ctx).With("agent_id", def.ID, "project_id", in.ProjectID)
	env := &Envelope{
		AgentID:       def.ID,
		SchemaVersion: SchemaVersion,
		GeneratedAt:   s.now().UTC(),
		ProjectID:     in.ProjectID,
		SourcesUsed:   refs(in.Sources),
	}
	if s.DemoMode() {
		log.Info("Anthropic key not usable, returning demo output",
			"key", gateway.DescribeKey(s.cfg.KeySource, s.cfg.APIKey.Value(), core.ProviderAnthropic.KeyPrefix()).String())
		env.Output = def.Demo()
		env.Demo = true
		return env, nil
	}
	if s.invoker == nil {
		return nil, fmt.Errorf("agent %s: no executor configured", def.ID)
	}
	prompt, err := buildPrompt(s.prompts, def, in.ProjectID, in.Sources, in.Instructions)
	if err != nil {
		return nil, err
	}
	model := in.Model
	if model == "" {
		model = s.cfg.Model
	}
	req := &gateway.Request{
		APIKey:      s.cfg.APIKey.Value(),
		KeySource:   s.cfg.KeySource,
		Candidates:  gateway.Candidates(model, s.cfg.FallbackModels...),
		MaxTokens:   def.MaxTokens,
		Temperature: def.Temperature,
		System:      systemPrompt,
		Prompt:      prompt,
	}
	resp, err := gateway.Complete(ctx, core.ProviderAnthropic, s.invoker, req, usage.Component(def.ID), s.metrics)
	if err != nil {
		return nil, err
	}
	output, err := s.parse(ctx, def, resp.Content)
	if err != nil {
		log.Warn("Structured output rejected", "model", resp.Model, "error", err)
		return nil, err
	}
	env.Output = output
	env.Model = resp.Model
	log.Info("Agent output generated",
		"model", resp.Model,
		"sources", len(in.Sources),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"latency_ms", resp.Latency,
	)
	return env, nil
}

func (s *Service) parse(ctx context.Context, def *Definition, content string) (any, error) {
	obj, ok := normalizer.FirstObject(content)
	if !ok {
		return nil, ErrStructuredOutput
	}
	output := envelopeOutput(obj)
	if err := def.Validator().Validate(ctx, output); err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			return nil, &SchemaError{AgentID: def.ID, Err: verr}
		}
		return nil, err
	}
	return output, nil
}

func refs(sources []source.Source) []source.Ref {
	out := make([]source.Ref, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.Ref())
	}
	return out
}
