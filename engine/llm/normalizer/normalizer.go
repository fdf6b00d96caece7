package normalizer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/plexify/plexify/engine/core"
)

// Decode parses a vendor body into the variant matching provider. Bodies of
// unknown providers are never rejected.
func Decode(provider core.ProviderName, body []byte) (RawResponse, error) {
	raw := json.RawMessage(append([]byte(nil), body...))
	switch provider {
	case core.ProviderAnthropic:
		resp := &AnthropicResponse{raw: raw}
		if err := json.Unmarshal(body, resp); err != nil {
			return nil, fmt.Errorf("failed to decode anthropic response: %w", err)
		}
		return resp, nil
	case core.ProviderOpenAI:
		resp := &OpenAIResponse{raw: raw}
		if err := json.Unmarshal(body, resp); err != nil {
			return nil, fmt.Errorf("failed to decode openai response: %w", err)
		}
		return resp, nil
	default:
		return &UnknownResponse{Name: provider, Payload: raw}, nil
	}
}

// Normalize maps a decoded payload onto a StandardResponse. Latency is
// measured from start.
func Normalize(raw RawResponse, start time.Time) StandardResponse {
	out := normalize(raw)
	out.Latency = time.Since(start).Milliseconds()
	return out
}

func normalize(raw RawResponse) StandardResponse {
	switch r := raw.(type) {
	case *AnthropicResponse:
		return StandardResponse{
			Content:  anthropicText(r.Content),
			Provider: core.ProviderAnthropic,
			Model:    r.Model,
			Usage:    newUsage(r.Usage.InputTokens, r.Usage.OutputTokens),
			Metadata: Metadata{StopReason: r.StopReason, ID: r.ID},
			Raw:      r.raw,
		}
	case *OpenAIResponse:
		out := StandardResponse{
			Provider: core.ProviderOpenAI,
			Model:    r.Model,
			Usage:    newUsage(r.Usage.PromptTokens, r.Usage.CompletionTokens),
			Metadata: Metadata{ID: r.ID},
			Raw:      r.raw,
		}
		if len(r.Choices) > 0 {
			if c := r.Choices[0].Message.Content; c != nil {
				out.Content = *c
			}
			out.Metadata.FinishReason = r.Choices[0].FinishReason
		}
		return out
	case *UnknownResponse:
		return StandardResponse{
			Content:  stringify(r.Payload),
			Provider: r.Name,
			Usage:    newUsage(0, 0),
			Raw:      validOrNil(r.Payload),
		}
	default:
		return StandardResponse{Usage: newUsage(0, 0)}
	}
}

func anthropicText(blocks []AnthropicBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == "text" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// stringify renders a payload as compact JSON text; non-JSON payloads are
// quoted so the result is always a JSON string literal or document.
func stringify(payload json.RawMessage) string {
	if len(payload) == 0 {
		return "null"
	}
	if !json.Valid(payload) {
		return strconv.Quote(string(payload))
	}
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return strconv.Quote(string(payload))
	}
	b, err := json.Marshal(v)
	if err != nil {
		return string(payload)
	}
	return string(b)
}

func validOrNil(payload json.RawMessage) json.RawMessage {
	if len(payload) == 0 || !json.Valid(payload) {
		return nil
	}
	return payload
}
