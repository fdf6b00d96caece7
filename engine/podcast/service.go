package podcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/engine/llm/gateway"
	"github.com/plexify/plexify/engine/llm/normalizer"
	"github.com/plexify/plexify/engine/llm/usage"
	"github.com/plexify/plexify/engine/schema"
	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/engine/tts"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
	"github.com/plexify/plexify/pkg/tplengine"
)

const (
	audioExt       = ".mp3"
	targetSegments = 10
)

// SourceLoader reads project documents.
type SourceLoader interface {
	Load(ctx context.Context, projectID string, ids []string) (*source.Result, error)
}

type GenerateInput struct {
	ProjectID   string
	DocumentIDs []string
	Model       string
}

type Service struct {
	invoker     gateway.Invoker
	anthropic   *config.AnthropicConfig
	synth       tts.Synthesizer
	store       tts.Store
	sources     SourceLoader
	podcastDir  string
	wpm         int
	concurrency int
	prompts     *tplengine.TemplateEngine
	validator   *schema.Validator
	metrics     usage.Metrics
	newID       func() core.ID
}

type Option func(*Service)

func WithMetrics(m usage.Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithIDGenerator overrides how episode file names are chosen.
func WithIDGenerator(fn func() core.ID) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func NewService(
	invoker gateway.Invoker,
	synth tts.Synthesizer,
	store tts.Store,
	sources SourceLoader,
	cfg *config.Config,
	opts ...Option,
) (*Service, error) {
	v, err := schema.NewValidator(schema.MustFromType(Script{}))
	if err != nil {
		return nil, fmt.Errorf("podcast script schema: %w", err)
	}
	s := &Service{
		invoker:     invoker,
		anthropic:   &cfg.Anthropic,
		synth:       synth,
		store:       store,
		sources:     sources,
		podcastDir:  strings.Trim(cfg.Storage.PodcastPath, "/"),
		wpm:         cfg.TTS.WordsPerMinute,
		concurrency: cfg.TTS.Concurrency,
		prompts:     newPromptEngine(),
		validator:   v,
		metrics:     usage.Nop(),
		newID:       core.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DemoMode reports whether scripts are written offline.
func (s *Service) DemoMode() bool {
	return !gateway.UsableKey(s.anthropic.APIKey.Value(), core.ProviderAnthropic.KeyPrefix())
}

// Generate writes a script over the selected documents, voices it and stores
// the episode under the podcast directory.
func (s *Service) Generate(ctx context.Context, in *GenerateInput) (*Result, error) {
	loaded, err := s.sources.Load(ctx, in.ProjectID, in.DocumentIDs)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).With("project_id", loaded.ProjectID, "sources", len(loaded.Sources))
	demo := s.DemoMode()
	var script *Script
	if demo {
		log.Info("Anthropic key not usable, using demo podcast script")
		script = demoScript(loaded.ProjectID, loaded.Sources)
	} else {
		script, err = s.writeScript(ctx, loaded, in.Model)
		if err != nil {
			return nil, err
		}
	}
	segments := script.spoken()
	if len(segments) == 0 {
		return nil, ErrEmptyScript
	}
	parts := make([]tts.Part, 0, len(segments))
	var duration float64
	for i, seg := range segments {
		parts = append(parts, tts.Part{Label: fmt.Sprintf("segment %d", i+1), Text: seg.Text, Role: seg.Role()})
		duration += tts.EstimateDuration(seg.Text, s.wpm)
	}
	start := time.Now()
	audio, err := tts.SynthesizeParts(ctx, s.synth, parts, s.concurrency)
	usage.Record(ctx, s.metrics, usage.ComponentPodcast, usage.Snapshot{Provider: s.synth.Name()}, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	url, err := s.store.Save(ctx, s.podcastDir, s.newID().String()+audioExt, tts.JoinMP3(audio...))
	if err != nil {
		return nil, fmt.Errorf("store podcast: %w", err)
	}
	script.Segments = segments
	res := &Result{
		PodcastURL: url,
		Title:      script.Title,
		Duration:   math.Round(duration*10) / 10,
		Script:     script,
		Demo:       demo,
	}
	log.Info("Podcast generated", "url", url, "segments", len(segments), "duration_s", res.Duration)
	return res, nil
}

func (s *Service) writeScript(ctx context.Context, loaded *source.Result, model string) (*Script, error) {
	if s.invoker == nil {
		return nil, fmt.Errorf("podcast: no executor configured")
	}
	prompt, err := buildPrompt(s.prompts, loaded.ProjectID, loaded.Sources, targetSegments)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = s.anthropic.Model
	}
	resp, err := gateway.Complete(ctx, core.ProviderAnthropic, s.invoker, &gateway.Request{
		APIKey:      s.anthropic.APIKey.Value(),
		KeySource:   s.anthropic.KeySource,
		Candidates:  gateway.Candidates(model, s.anthropic.FallbackModels...),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      systemPrompt,
		Prompt:      prompt,
	}, usage.ComponentPodcast, s.metrics)
	if err != nil {
		return nil, err
	}
	return s.parseScript(ctx, resp.Content)
}

func (s *Service) parseScript(ctx context.Context, content string) (*Script, error) {
	obj, ok := normalizer.FirstObject(content)
	if !ok {
		return nil, ErrScriptFormat
	}
	if err := s.validator.Validate(ctx, obj); err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			return nil, fmt.Errorf("podcast script: %w", verr)
		}
		return nil, err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("podcast script: %w", err)
	}
	var script Script
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("podcast script: %w", err)
	}
	return &script, nil
}
