package tplengine

import (
	"bytes"
	"fmt"
	"maps"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// EngineFormat represents the format of the template engine output
type EngineFormat string

const (
	// FormatJSON marks templates whose output must be valid JSON
	FormatJSON EngineFormat = "json"
	// FormatText represents plain text output format
	FormatText EngineFormat = "text"
)

// TemplateEngine renders named text templates with the sprig function set.
// It is safe for concurrent use once templates are registered.
type TemplateEngine struct {
	mu           sync.RWMutex
	templates    map[string]*template.Template
	globalValues map[string]any
	format       EngineFormat
}

// NewEngine creates a new template engine with the specified format
func NewEngine(format EngineFormat) *TemplateEngine {
	return &TemplateEngine{
		templates:    make(map[string]*template.Template),
		globalValues: make(map[string]any),
		format:       format,
	}
}

// WithFormat returns a new engine with the specified format
func (e *TemplateEngine) WithFormat(format EngineFormat) *TemplateEngine {
	e.format = format
	return e
}

// Format returns the engine output format.
func (e *TemplateEngine) Format() EngineFormat {
	return e.format
}

// FuncMap returns sprig plus the prompt helpers.
func FuncMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["clip"] = Clip
	return funcs
}

func newTemplate(name string) *template.Template {
	return template.New(name).Option("missingkey=error").Funcs(FuncMap())
}

// AddTemplate adds a template to the engine
func (e *TemplateEngine) AddTemplate(name, templateStr string) error {
	tmpl, err := newTemplate(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	e.mu.Lock()
	e.templates[name] = tmpl
	e.mu.Unlock()
	return nil
}

// MustAddTemplate is AddTemplate for templates compiled into the binary.
func (e *TemplateEngine) MustAddTemplate(name, templateStr string) *TemplateEngine {
	if err := e.AddTemplate(name, templateStr); err != nil {
		panic(err)
	}
	return e
}

// HasTemplate returns true if the template contains template markers
func HasTemplate(template string) bool {
	return strings.Contains(template, "{{")
}

// Render renders a template by name
func (e *TemplateEngine) Render(name string, context map[string]any) (string, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}
	return e.renderTemplate(tmpl, context)
}

// RenderString renders a template string
func (e *TemplateEngine) RenderString(templateStr string, context map[string]any) (string, error) {
	if !HasTemplate(templateStr) {
		return templateStr, nil
	}
	tmpl, err := newTemplate("inline").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	return e.renderTemplate(tmpl, context)
}

func (e *TemplateEngine) renderTemplate(tmpl *template.Template, context map[string]any) (string, error) {
	data := make(map[string]any, len(context)+len(e.globalValues))
	e.mu.RLock()
	maps.Copy(data, e.globalValues)
	e.mu.RUnlock()
	maps.Copy(data, context)
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return buf.String(), nil
}

// AddGlobalValue adds a global value to the template engine
func (e *TemplateEngine) AddGlobalValue(name string, value any) {
	e.mu.Lock()
	e.globalValues[name] = value
	e.mu.Unlock()
}

// Clip returns at most limit runes of s. Template argument order follows
// sprig's trunc: {{ clip 3000 .text }}.
func Clip(limit int, s string) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
