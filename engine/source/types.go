package source

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoDocuments is returned when Load is called without any document ids.
var ErrNoDocuments = errors.New("no documents selected")

// ErrInvalidProject is returned for project ids that would escape the sources root.
var ErrInvalidProject = errors.New("invalid project id")

// Source is one loaded project document.
type Source struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
	Text  string `json:"-"`
}

// Ref is the provenance entry recorded in generated envelopes.
type Ref struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (s Source) Ref() Ref {
	return Ref{ID: s.ID, Label: s.Label}
}

// Missing describes a requested document that could not be loaded.
type Missing struct {
	ID     string `json:"id"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason"`
}

// Result holds everything Load managed to read plus what it skipped.
type Result struct {
	ProjectID string
	Sources   []Source
	Missing   []Missing
}

func (r *Result) Refs() []Ref {
	refs := make([]Ref, 0, len(r.Sources))
	for _, s := range r.Sources {
		refs = append(refs, s.Ref())
	}
	return refs
}

// LoadError is returned when none of the requested documents could be read.
// Available lists the PDFs that do exist in the project directory.
type LoadError struct {
	ProjectID string
	Dir       string
	Missing   []Missing
	Available []string
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no documents could be loaded for project %q", e.ProjectID)
	for _, m := range e.Missing {
		fmt.Fprintf(&b, "; %s: %s", m.ID, m.Reason)
	}
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, " (available in %s: %s)", e.Dir, strings.Join(e.Available, ", "))
	} else {
		fmt.Fprintf(&b, " (no PDFs found in %s)", e.Dir)
	}
	return b.String()
}

func (e *LoadError) StatusCode() int {
	return http.StatusBadRequest
}
