// Package mdtext flattens markdown into plain-text blocks for narration and
// document export.
package mdtext

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type Kind string

const (
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindListItem  Kind = "list_item"
	KindQuote     Kind = "quote"
	KindCode      Kind = "code"
)

// Block is one plain-text block. Level is the heading level for headings
// and the nesting depth (from 1) for list items.
type Block struct {
	Kind    Kind
	Level   int
	Ordered bool
	Text    string
}

// Parse returns the blocks of content in document order. Inline markup is
// dropped and only its text is kept.
func Parse(content string) []Block {
	src := []byte(content)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	var out []Block
	collect(doc, src, &out, false, 0)
	return out
}

// PlainText renders content as plain paragraphs separated by blank lines.
func PlainText(content string) string {
	blocks := Parse(content)
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n\n")
}

func collect(parent ast.Node, src []byte, out *[]Block, quote bool, depth int) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		collectNode(c, src, out, quote, depth)
	}
}

func collectNode(c ast.Node, src []byte, out *[]Block, quote bool, depth int) {
	switch n := c.(type) {
	case *ast.Heading:
		appendBlock(out, Block{Kind: KindHeading, Level: n.Level, Text: inlineText(n, src)})
	case *ast.Paragraph, *ast.TextBlock:
		kind := KindParagraph
		if quote {
			kind = KindQuote
		}
		appendBlock(out, Block{Kind: kind, Text: inlineText(n, src)})
	case *ast.Blockquote:
		collect(n, src, out, true, depth)
	case *ast.List:
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			collectItem(item, src, out, n.IsOrdered(), depth+1)
		}
	case *ast.FencedCodeBlock:
		appendBlock(out, Block{Kind: KindCode, Text: codeText(n.Lines(), src)})
	case *ast.CodeBlock:
		appendBlock(out, Block{Kind: KindCode, Text: codeText(n.Lines(), src)})
	}
}

// collectItem emits the item's own text first, then any nested blocks.
func collectItem(item ast.Node, src []byte, out *[]Block, ordered bool, depth int) {
	var parts []string
	var nested []ast.Node
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			parts = append(parts, inlineText(c, src))
		default:
			nested = append(nested, c)
		}
	}
	appendBlock(out, Block{Kind: KindListItem, Level: depth, Ordered: ordered, Text: strings.Join(parts, " ")})
	for _, c := range nested {
		collectNode(c, src, out, false, depth)
	}
}

func appendBlock(out *[]Block, b Block) {
	b.Text = strings.TrimSpace(b.Text)
	if b.Text == "" {
		return
	}
	*out = append(*out, b)
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func codeText(lines *text.Segments, src []byte) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimRight(b.String(), "\n")
}
