package agent

import (
	"encoding/json"
	"fmt"

	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/pkg/tplengine"
)

const (
	promptTemplate = "agent_prompt"
	systemPrompt   = "You produce structured JSON for construction and business development teams. " +
		"You never invent facts that are not present in the provided sources."
)

const promptText = `You are {{ .Role }} for project "{{ .ProjectID }}".
{{ .Task }}

SOURCES
{{- range $i, $s := .Sources }}

[Source {{ add1 $i }}] {{ $s.Label }} (id: {{ $s.ID }})
{{ clip $.Budget $s.Text }}
{{- end }}

Respond with JSON only. Do not add prose or code fences. Follow this example structure exactly:
{{ .Example }}
{{- if .Instructions }}

Additional instructions from the user:
{{ .Instructions }}
{{- end }}
`

func newPromptEngine() *tplengine.TemplateEngine {
	return tplengine.NewEngine(tplengine.FormatText).MustAddTemplate(promptTemplate, promptText)
}

type promptSource struct {
	ID    string
	Label string
	Text  string
}

// buildPrompt renders the agent prompt. Each source is clipped to the
// definition's per-source character budget.
func buildPrompt(
	engine *tplengine.TemplateEngine,
	def *Definition,
	projectID string,
	sources []source.Source,
	instructions string,
) (string, error) {
	example, err := json.MarshalIndent(map[string]any{"output": def.example}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s example: %w", def.ID, err)
	}
	items := make([]promptSource, 0, len(sources))
	for _, s := range sources {
		items = append(items, promptSource{ID: s.ID, Label: s.Label, Text: s.Text})
	}
	return engine.Render(promptTemplate, map[string]any{
		"Role":         def.role,
		"Task":         def.task,
		"ProjectID":    projectID,
		"Sources":      items,
		"Budget":       def.CharsPerSource,
		"Example":      string(example),
		"Instructions": instructions,
	})
}
