package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexify/plexify/engine/llm/gateway"
	"github.com/plexify/plexify/engine/schema"
	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/pkg/config"
)

type fakeInvoker struct {
	reply string
	err   error
	calls []*gateway.Request
}

func (f *fakeInvoker) Invoke(_ context.Context, req *gateway.Request) (*gateway.Result, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	body, err := json.Marshal(map[string]any{
		"id":          "msg_01",
		"type":        "message",
		"role":        "assistant",
		"model":       req.Candidates[0],
		"content":     []map[string]any{{"type": "text", "text": f.reply}},
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 12, "output_tokens": 34},
	})
	if err != nil {
		return nil, err
	}
	return &gateway.Result{Body: body, Model: req.Candidates[0]}, nil
}

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestService(t *testing.T, key string, inv gateway.Invoker) *Service {
	t.Helper()
	cfg := config.Default().Anthropic
	cfg.APIKey = config.SensitiveString(key)
	cfg.KeySource = "ANTHROPIC_API_KEY"
	cfg.Model = "claude-preferred"
	svc, err := NewService(inv, &cfg, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return svc
}

func testSources() []source.Source {
	return []source.Source{
		{ID: "rfp", Label: "RFP 2024", Text: "The project budget is $12M."},
		{ID: "minutes", Label: "Board Minutes", Text: "Approved the schematic design."},
	}
}

func toJSONMap(t *testing.T, v any) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestService_DemoMode(t *testing.T) {
	demos := map[string]any{
		BoardBriefID:       demoBoardBrief(),
		AssessmentTrendsID: demoAssessmentTrends(),
		OZRFSectionID:      demoOZRFSection(),
	}
	for id, want := range demos {
		t.Run("Should return the fixed payload for "+id+" without calling the vendor", func(t *testing.T) {
			inv := &fakeInvoker{err: errors.New("must not be called")}
			svc := newTestService(t, "", inv)
			env, err := svc.Generate(t.Context(), &GenerateInput{AgentID: id, ProjectID: "acme", Sources: testSources()})
			require.NoError(t, err)
			assert.Empty(t, inv.calls)
			assert.Equal(t, want, env.Output)
			assert.True(t, env.Demo)
			assert.Equal(t, id, env.AgentID)
			assert.Equal(t, SchemaVersion, env.SchemaVersion)
			assert.Equal(t, fixedNow, env.GeneratedAt)
			assert.Equal(t, []source.Ref{{ID: "rfp", Label: "RFP 2024"}, {ID: "minutes", Label: "Board Minutes"}}, env.SourcesUsed)
		})
	}

	t.Run("Should treat keys without the vendor prefix as unusable", func(t *testing.T) {
		inv := &fakeInvoker{err: errors.New("must not be called")}
		svc := newTestService(t, "not-a-real-key", inv)
		assert.True(t, svc.DemoMode())
		env, err := svc.Generate(t.Context(), &GenerateInput{AgentID: BoardBriefID, Sources: testSources()})
		require.NoError(t, err)
		assert.Equal(t, demoBoardBrief(), env.Output)
	})

	t.Run("Should keep demo payloads valid against their schemas", func(t *testing.T) {
		r, err := DefaultRegistry()
		require.NoError(t, err)
		for _, def := range r.List() {
			assert.NoError(t, def.Validator().Validate(t.Context(), toJSONMap(t, def.Demo())), def.ID)
		}
	})
}

func TestService_Generate(t *testing.T) {
	t.Run("Should return the embedded object's output field", func(t *testing.T) {
		output := toJSONMap(t, demoBoardBrief())
		payload, err := json.Marshal(map[string]any{"output": output})
		require.NoError(t, err)
		inv := &fakeInvoker{reply: "Here is the brief you asked for:\n```json\n" + string(payload) +
			"\n```\nLet me know {if} anything needs changing."}
		svc := newTestService(t, "sk-ant-test", inv)
		env, err := svc.Generate(t.Context(), &GenerateInput{
			AgentID:      BoardBriefID,
			ProjectID:    "acme",
			Sources:      testSources(),
			Instructions: "Focus on budget.",
		})
		require.NoError(t, err)
		assert.Equal(t, output, env.Output)
		assert.False(t, env.Demo)
		assert.Equal(t, "claude-preferred", env.Model)
		require.Len(t, inv.calls, 1)
		req := inv.calls[0]
		assert.Equal(t, 1200, req.MaxTokens)
		assert.InDelta(t, 0.2, req.Temperature, 1e-9)
		assert.Equal(t, "claude-preferred", req.Candidates[0])
		assert.Equal(t, "ANTHROPIC_API_KEY", req.KeySource)
		assert.Contains(t, req.Prompt, "[Source 1] RFP 2024")
		assert.Contains(t, req.Prompt, "[Source 2] Board Minutes")
		assert.Contains(t, req.Prompt, "Focus on budget.")
		assert.Contains(t, req.Prompt, `"output"`)
	})

	t.Run("Should use the whole object when output is absent", func(t *testing.T) {
		output := toJSONMap(t, demoOZRFSection())
		payload, err := json.Marshal(output)
		require.NoError(t, err)
		inv := &fakeInvoker{reply: string(payload)}
		svc := newTestService(t, "sk-ant-test", inv)
		env, err := svc.Generate(t.Context(), &GenerateInput{AgentID: OZRFSectionID, Sources: testSources()})
		require.NoError(t, err)
		assert.Equal(t, output, env.Output)
		assert.Equal(t, 1500, inv.calls[0].MaxTokens)
	})

	t.Run("Should fail when the reply carries no JSON object", func(t *testing.T) {
		svc := newTestService(t, "sk-ant-test", &fakeInvoker{reply: "I cannot help with that."})
		_, err := svc.Generate(t.Context(), &GenerateInput{AgentID: AssessmentTrendsID, Sources: testSources()})
		assert.ErrorIs(t, err, ErrStructuredOutput)
	})

	t.Run("Should reject output that misses declared fields", func(t *testing.T) {
		svc := newTestService(t, "sk-ant-test", &fakeInvoker{reply: `{"output": {"title": "Only a title"}}`})
		_, err := svc.Generate(t.Context(), &GenerateInput{AgentID: BoardBriefID, Sources: testSources()})
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, BoardBriefID, schemaErr.AgentID)
		var verr *schema.ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, 500, schemaErr.StatusCode())
	})

	t.Run("Should accept numeric metric values", func(t *testing.T) {
		reply := `{"output":{"summary":"s","trends":[],` +
			`"metrics":[{"label":"Growth","value":6.2,"unit":"%","citations":[]}],"dataGaps":[]}}`
		svc := newTestService(t, "sk-ant-test", &fakeInvoker{reply: reply})
		env, err := svc.Generate(t.Context(), &GenerateInput{AgentID: AssessmentTrendsID, Sources: testSources()})
		require.NoError(t, err)
		output, ok := env.Output.(map[string]any)
		require.True(t, ok)
		metrics, ok := output["metrics"].([]any)
		require.True(t, ok)
		assert.InDelta(t, 6.2, metrics[0].(map[string]any)["value"], 1e-9)
	})

	t.Run("Should name the failing field of a rejected metric", func(t *testing.T) {
		reply := `{"output":{"summary":"s","trends":[],` +
			`"metrics":[{"label":"Growth","value":true,"citations":[]}],"dataGaps":[]}}`
		svc := newTestService(t, "sk-ant-test", &fakeInvoker{reply: reply})
		_, err := svc.Generate(t.Context(), &GenerateInput{AgentID: AssessmentTrendsID, Sources: testSources()})
		var verr *schema.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, err.Error(), "/metrics/0/value")
	})

	t.Run("Should propagate executor errors", func(t *testing.T) {
		authErr := &gateway.AuthError{Message: "invalid x-api-key"}
		svc := newTestService(t, "sk-ant-test", &fakeInvoker{err: authErr})
		_, err := svc.Generate(t.Context(), &GenerateInput{AgentID: BoardBriefID, Sources: testSources()})
		assert.ErrorIs(t, err, authErr)
	})

	t.Run("Should reject unknown agents", func(t *testing.T) {
		svc := newTestService(t, "", nil)
		_, err := svc.Generate(t.Context(), &GenerateInput{AgentID: "unknown-agent"})
		assert.ErrorIs(t, err, ErrUnknownAgent)
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Run("Should clip each source to the agent budget", func(t *testing.T) {
		r, err := DefaultRegistry()
		require.NoError(t, err)
		def, ok := r.Get(AssessmentTrendsID)
		require.True(t, ok)
		long := strings.Repeat("a", 2600) + "TAIL"
		prompt, err := buildPrompt(newPromptEngine(), def, "acme", []source.Source{{ID: "x", Label: "X", Text: long}}, "")
		require.NoError(t, err)
		assert.Contains(t, prompt, strings.Repeat("a", 2500))
		assert.NotContains(t, prompt, strings.Repeat("a", 2501))
		assert.NotContains(t, prompt, "TAIL")
		assert.NotContains(t, prompt, "Additional instructions")
		assert.Contains(t, prompt, `project "acme"`)
	})
}

func TestRegistry(t *testing.T) {
	t.Run("Should list agents with their budgets", func(t *testing.T) {
		r, err := DefaultRegistry()
		require.NoError(t, err)
		defs := r.List()
		require.Len(t, defs, 3)
		assert.Equal(t, AssessmentTrendsID, defs[0].ID)
		assert.Equal(t, BoardBriefID, defs[1].ID)
		assert.Equal(t, OZRFSectionID, defs[2].ID)
		assert.Equal(t, 2500, defs[0].CharsPerSource)
		assert.Equal(t, 1600, defs[0].MaxTokens)
		assert.Equal(t, 3000, defs[1].CharsPerSource)
	})

	t.Run("Should reject duplicate ids", func(t *testing.T) {
		_, err := NewRegistry(boardBriefDefinition(), boardBriefDefinition())
		assert.ErrorContains(t, err, "duplicate agent id")
	})
}
