package podcast

import (
	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/pkg/tplengine"
)

const (
	promptTemplate = "podcast_script"
	systemPrompt   = "You write short two-person audio briefings for construction and business development teams. " +
		"You only discuss facts found in the provided sources."

	charsPerSource = 4000
	maxTokens      = 2500
	temperature    = 0.7
)

const promptText = `Write a podcast script for project "{{ .ProjectID }}" between a host and a guest expert.
Keep it to roughly {{ .Segments }} segments. The host opens and closes the episode.

SOURCES
{{- range $i, $s := .Sources }}

[Source {{ add1 $i }}] {{ $s.Label }}
{{ clip $.Budget $s.Text }}
{{- end }}

Respond with JSON only, in this shape:
{"title": "Episode title", "segments": [{"speaker": "host", "text": "..."}, {"speaker": "guest", "text": "..."}]}
`

func newPromptEngine() *tplengine.TemplateEngine {
	return tplengine.NewEngine(tplengine.FormatText).MustAddTemplate(promptTemplate, promptText)
}

func buildPrompt(engine *tplengine.TemplateEngine, projectID string, sources []source.Source, segments int) (string, error) {
	return engine.Render(promptTemplate, map[string]any{
		"ProjectID": projectID,
		"Sources":   sources,
		"Budget":    charsPerSource,
		"Segments":  segments,
	})
}
