package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
	"github.com/sethvargo/go-retry"
)

const (
	anthropicMessagesPath = "/v1/messages"
	defaultRetryBase      = 500 * time.Millisecond
	defaultRetryMax       = 5 * time.Second
)

// Request is one structured generation call against the Messages API.
type Request struct {
	APIKey      string
	KeySource   string
	Candidates  []string
	MaxTokens   int
	Temperature float64
	System      string
	Prompt      string
}

// Attempt records the outcome of one candidate.
type Attempt struct {
	Model    string
	Status   int
	Duration time.Duration
	Err      error
}

// Result is the raw vendor reply together with the model that produced it.
type Result struct {
	Body     []byte
	Model    string
	Attempts []Attempt
}

// Invoker issues a request against an ordered candidate list.
type Invoker interface {
	Invoke(ctx context.Context, req *Request) (*Result, error)
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

// AnthropicExecutor walks the candidate list against the Anthropic Messages
// API. Every Invoke starts again at the first candidate.
type AnthropicExecutor struct {
	client           *resty.Client
	version          string
	transientRetries uint64
	retryBase        time.Duration
	retryMax         time.Duration
	throttle         *Throttle
}

// ExecutorOption customizes an AnthropicExecutor.
type ExecutorOption func(*AnthropicExecutor)

// WithRetryBackoff overrides the transient retry backoff bounds.
func WithRetryBackoff(base, maxDuration time.Duration) ExecutorOption {
	return func(e *AnthropicExecutor) {
		if base > 0 {
			e.retryBase = base
		}
		if maxDuration > 0 {
			e.retryMax = maxDuration
		}
	}
}

// WithThrottle replaces the throttle derived from the config.
func WithThrottle(t *Throttle) ExecutorOption {
	return func(e *AnthropicExecutor) {
		e.throttle = t
	}
}

// NewAnthropicExecutor builds an executor from the anthropic config section.
func NewAnthropicExecutor(cfg *config.AnthropicConfig, opts ...ExecutorOption) *AnthropicExecutor {
	retries := cfg.TransientRetries
	if retries < 0 {
		retries = 0
	}
	e := &AnthropicExecutor{
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		version:          cfg.Version,
		transientRetries: uint64(retries), // #nosec G115 -- clamped above
		retryBase:        defaultRetryBase,
		retryMax:         defaultRetryMax,
		throttle: NewThrottle(core.ProviderAnthropic, ThrottleSettings{
			Concurrency:       cfg.MaxConcurrency,
			QueueSize:         cfg.QueueSize,
			RequestsPerMinute: cfg.RequestsPerMinute,
		}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invoke calls the Messages API with each candidate in turn. A 404 that
// mentions the model advances to the next candidate; a 401 stops immediately.
func (e *AnthropicExecutor) Invoke(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	log := logger.FromContext(ctx)
	if len(req.Candidates) == 0 {
		return nil, ErrNoModelAvailable
	}
	result := &Result{Attempts: make([]Attempt, 0, len(req.Candidates))}
	for i, model := range req.Candidates {
		if err := e.throttle.Acquire(ctx); err != nil {
			log.Warn("Anthropic call throttled", "model", model, "error", err)
			result.Attempts = append(result.Attempts, Attempt{Model: model, Err: err})
			return result, err
		}
		start := time.Now()
		status, body, err := e.send(ctx, req, model)
		e.throttle.Release()
		attempt := Attempt{Model: model, Status: status, Duration: time.Since(start), Err: err}
		result.Attempts = append(result.Attempts, attempt)
		if err != nil {
			log.Error("Anthropic request failed", "model", model, "attempt", i+1, "error", core.RedactError(err))
			return result, err
		}
		log.Debug("Anthropic request completed",
			"model", model,
			"attempt", i+1,
			"status", status,
			"latency_ms", attempt.Duration.Milliseconds(),
		)
		switch {
		case status >= 200 && status < 300:
			result.Body = body
			result.Model = model
			return result, nil
		case status == http.StatusUnauthorized:
			authErr := &AuthError{
				Provider: core.ProviderAnthropic,
				Key:      DescribeKey(req.KeySource, req.APIKey, core.ProviderAnthropic.KeyPrefix()),
				Message:  VendorMessage(body),
			}
			result.Attempts[i].Err = authErr
			log.Error("Anthropic rejected the API key", "key_source", authErr.Key.Source,
				"key_length", authErr.Key.Length, "has_prefix", authErr.Key.HasPrefix)
			return result, authErr
		case isModelNotFound(status, body):
			if i < len(req.Candidates)-1 {
				log.Warn("Model unavailable, trying next candidate", "model", model, "next", req.Candidates[i+1])
				result.Attempts[i].Err = NewVendorError(core.ProviderAnthropic, model, status, body)
				continue
			}
			vendorErr := NewVendorError(core.ProviderAnthropic, model, status, body)
			vendorErr.Exhausted = true
			result.Attempts[i].Err = vendorErr
			return result, vendorErr
		default:
			vendorErr := NewVendorError(core.ProviderAnthropic, model, status, body)
			result.Attempts[i].Err = vendorErr
			return result, vendorErr
		}
	}
	return result, ErrNoModelAvailable
}

// send performs one candidate call, retrying transient failures when enabled.
func (e *AnthropicExecutor) send(ctx context.Context, req *Request, model string) (int, []byte, error) {
	payload := anthropicRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}
	var status int
	var body []byte
	call := func(ctx context.Context) error {
		resp, err := e.client.R().
			SetContext(ctx).
			SetHeader("x-api-key", req.APIKey).
			SetHeader("anthropic-version", e.version).
			SetBody(payload).
			Post(anthropicMessagesPath)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retry.RetryableError(fmt.Errorf("anthropic request failed: %w", err))
		}
		status, body = resp.StatusCode(), resp.Body()
		if isTransientStatus(status) {
			return retry.RetryableError(NewVendorError(core.ProviderAnthropic, model, status, body))
		}
		return nil
	}
	backoff := retry.WithMaxRetries(e.transientRetries,
		retry.WithCappedDuration(e.retryMax, retry.NewExponential(e.retryBase)))
	err := retry.Do(ctx, backoff, call)
	var vendorErr *VendorError
	if errors.As(err, &vendorErr) {
		// Out of retries on a transient status; let the caller classify it.
		return status, body, nil
	}
	return status, body, err
}
