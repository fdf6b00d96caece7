package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/plexify/plexify/engine/agent"
	"github.com/plexify/plexify/pkg/mdtext"
)

// ErrNoContent is returned when a request carries neither a brief nor editor content.
var ErrNoContent = errors.New("boardBrief or editorContent is required")

// ErrInvalidBrief is returned when the board brief payload does not decode.
var ErrInvalidBrief = errors.New("invalid board brief")

const defaultBriefTitle = "Board Brief"

// Document is the format-neutral model both writers render.
type Document struct {
	Title  string
	Blocks []mdtext.Block
}

func (d *Document) heading(level int, text string) {
	d.Blocks = append(d.Blocks, mdtext.Block{Kind: mdtext.KindHeading, Level: level, Text: text})
}

func (d *Document) paragraph(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	d.Blocks = append(d.Blocks, mdtext.Block{Kind: mdtext.KindParagraph, Text: text})
}

func (d *Document) list(title string, items []string) {
	if len(items) == 0 {
		return
	}
	d.heading(2, title)
	for _, item := range items {
		d.Blocks = append(d.Blocks, mdtext.Block{Kind: mdtext.KindListItem, Level: 1, Text: item})
	}
}

// FromBoardBrief accepts either an agent envelope or a bare board brief.
func FromBoardBrief(raw json.RawMessage) (*Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBrief, err)
	}
	if out, ok := probe["output"]; ok {
		raw = out
	}
	var brief agent.BoardBrief
	if err := json.Unmarshal(raw, &brief); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBrief, err)
	}
	if brief.Title == "" && brief.ExecutiveSummary == "" && len(brief.KeyPoints) == 0 {
		return nil, ErrNoContent
	}
	doc := &Document{Title: brief.Title}
	if doc.Title == "" {
		doc.Title = defaultBriefTitle
	}
	if brief.ExecutiveSummary != "" {
		doc.heading(2, "Executive Summary")
		doc.paragraph(brief.ExecutiveSummary)
	}
	doc.list("Key Points", brief.KeyPoints)
	risks := make([]string, 0, len(brief.Risks))
	for _, r := range brief.Risks {
		line := r.Title
		if r.Severity != "" {
			line += " (" + r.Severity + ")"
		}
		if r.Mitigation != "" {
			line += ": " + r.Mitigation
		}
		risks = append(risks, line)
	}
	doc.list("Risks", risks)
	doc.list("Recommendations", brief.Recommendations)
	doc.list("Next Steps", brief.NextSteps)
	return doc, nil
}

// FromEditorContent reads editor HTML, falling back to markdown for plain text.
func FromEditorContent(content string) (*Document, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrNoContent
	}
	var blocks []mdtext.Block
	if strings.HasPrefix(trimmed, "<") {
		var err error
		if blocks, err = parseHTML(trimmed); err != nil {
			return nil, err
		}
	} else {
		blocks = mdtext.Parse(trimmed)
	}
	if len(blocks) == 0 {
		return nil, ErrNoContent
	}
	doc := &Document{}
	// A leading top-level heading becomes the document title.
	if blocks[0].Kind == mdtext.KindHeading && blocks[0].Level == 1 {
		doc.Title = blocks[0].Text
		blocks = blocks[1:]
	}
	doc.Blocks = blocks
	return doc, nil
}

// listMarkers numbers list items per nesting depth.
type listMarkers struct {
	counters []int
}

func (m *listMarkers) reset() {
	m.counters = m.counters[:0]
}

func (m *listMarkers) next(blk mdtext.Block) string {
	depth := max(blk.Level, 1)
	for len(m.counters) < depth {
		m.counters = append(m.counters, 0)
	}
	m.counters = m.counters[:depth]
	m.counters[depth-1]++
	if blk.Ordered {
		return strconv.Itoa(m.counters[depth-1]) + ". "
	}
	return "• "
}
