package normalizer

import (
	"encoding/json"

	"github.com/plexify/plexify/engine/core"
)

// RawResponse is a decoded vendor payload. The concrete type is one of
// *AnthropicResponse, *OpenAIResponse or *UnknownResponse.
type RawResponse interface {
	Provider() core.ProviderName
	Body() json.RawMessage
	isRawResponse()
}

type AnthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type AnthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// AnthropicResponse is a Messages API reply.
type AnthropicResponse struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Role       string           `json:"role"`
	Model      string           `json:"model"`
	Content    []AnthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
	Usage      AnthropicUsage   `json:"usage"`

	raw json.RawMessage
}

func (r *AnthropicResponse) Provider() core.ProviderName { return core.ProviderAnthropic }
func (r *AnthropicResponse) Body() json.RawMessage { return r.raw }
func (r *AnthropicResponse) isRawResponse() {}

type OpenAIMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type OpenAIChoice struct {
	Index        int           `json:"index"`
	Message      OpenAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type OpenAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// OpenAIResponse is a chat completions reply.
type OpenAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
	Usage   OpenAIUsage    `json:"usage"`

	raw json.RawMessage
}

func (r *OpenAIResponse) Provider() core.ProviderName { return core.ProviderOpenAI }
func (r *OpenAIResponse) Body() json.RawMessage { return r.raw }
func (r *OpenAIResponse) isRawResponse() {}

// UnknownResponse keeps the payload of a provider the normalizer has no
// mapping for.
type UnknownResponse struct {
	Name    core.ProviderName
	Payload json.RawMessage
}

func (r *UnknownResponse) Provider() core.ProviderName { return r.Name }
func (r *UnknownResponse) Body() json.RawMessage { return r.Payload }
func (r *UnknownResponse) isRawResponse() {}

// Usage reports token counts under both naming conventions.
type Usage struct {
	InputTokens       int `json:"inputTokens"`
	OutputTokens      int `json:"outputTokens"`
	InputTokensSnake  int `json:"input_tokens"`
	OutputTokensSnake int `json:"output_tokens"`
}

func newUsage(input, output int) Usage {
	return Usage{
		InputTokens:       input,
		OutputTokens:      output,
		InputTokensSnake:  input,
		OutputTokensSnake: output,
	}
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

type Metadata struct {
	StopReason   string `json:"stopReason,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
	ID           string `json:"id,omitempty"`
}

// StandardResponse is the vendor-neutral view of one completion.
type StandardResponse struct {
	Content  string            `json:"content"`
	Provider core.ProviderName `json:"provider"`
	Model    string            `json:"model"`
	Usage    Usage             `json:"usage"`
	Latency  int64             `json:"latency"`
	Metadata Metadata          `json:"metadata"`
	Raw      json.RawMessage   `json:"raw,omitempty"`
}
