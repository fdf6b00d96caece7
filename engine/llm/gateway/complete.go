package gateway

import (
	"context"
	"time"

	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/engine/llm/normalizer"
	"github.com/plexify/plexify/engine/llm/usage"
)

// Complete invokes req, normalizes the reply and records usage under
// component. Failures are attributed to the last candidate tried.
func Complete(
	ctx context.Context,
	provider core.ProviderName,
	inv Invoker,
	req *Request,
	component usage.Component,
	metrics usage.Metrics,
) (*normalizer.StandardResponse, error) {
	start := time.Now()
	result, err := inv.Invoke(ctx, req)
	if err != nil {
		usage.Record(ctx, metrics, component, usage.Snapshot{
			Provider: provider.String(),
			Model:    failedModel(req, result),
		}, time.Since(start), err)
		return nil, err
	}
	raw, err := normalizer.Decode(provider, result.Body)
	if err != nil {
		return nil, err
	}
	resp := normalizer.Normalize(raw, start)
	if resp.Model == "" {
		resp.Model = result.Model
	}
	usage.Record(ctx, metrics, component, usage.Snapshot{
		Provider:         provider.String(),
		Model:            resp.Model,
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
	}, time.Since(start), nil)
	return &resp, nil
}

func failedModel(req *Request, result *Result) string {
	if result != nil && len(result.Attempts) > 0 {
		return result.Attempts[len(result.Attempts)-1].Model
	}
	if len(req.Candidates) > 0 {
		return req.Candidates[0]
	}
	return ""
}
