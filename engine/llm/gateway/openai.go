package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
)

const openAIChatPath = "/v1/chat/completions"

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

// OpenAIClient calls the chat completions API with a single model.
type OpenAIClient struct {
	client *resty.Client
}

// NewOpenAIClient builds a client from the openai config section.
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

// Invoke sends the request to the first candidate only. OpenAI replies with a
// model-not-found error that is surfaced as a VendorError.
func (c *OpenAIClient) Invoke(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if len(req.Candidates) == 0 {
		return nil, ErrNoModelAvailable
	}
	model := req.Candidates[0]
	messages := make([]openAIMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(req.APIKey).
		SetBody(openAIRequest{
			Model:       model,
			Messages:    messages,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		}).
		Post(openAIChatPath)
	attempt := Attempt{Model: model, Duration: time.Since(start), Err: err}
	result := &Result{Attempts: []Attempt{attempt}}
	if err != nil {
		return result, fmt.Errorf("openai request failed: %w", err)
	}
	status, body := resp.StatusCode(), resp.Body()
	result.Attempts[0].Status = status
	logger.FromContext(ctx).Debug("OpenAI request completed", "model", model, "status", status,
		"latency_ms", attempt.Duration.Milliseconds())
	switch {
	case status >= 200 && status < 300:
		result.Body = body
		result.Model = model
		return result, nil
	case status == http.StatusUnauthorized:
		authErr := &AuthError{
			Provider: core.ProviderOpenAI,
			Key:      DescribeKey(req.KeySource, req.APIKey, core.ProviderOpenAI.KeyPrefix()),
			Message:  VendorMessage(body),
		}
		result.Attempts[0].Err = authErr
		return result, authErr
	default:
		vendorErr := NewVendorError(core.ProviderOpenAI, model, status, body)
		result.Attempts[0].Err = vendorErr
		return result, vendorErr
	}
}
