package export

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/plexify/plexify/pkg/mdtext"
)

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

func parseHTML(content string) ([]mdtext.Block, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("invalid editor html: %w", err)
	}
	w := &htmlWalker{}
	w.walk(root)
	w.flush()
	return w.blocks, nil
}

type htmlWalker struct {
	blocks []mdtext.Block
	inline strings.Builder
}

func (w *htmlWalker) add(b mdtext.Block) {
	if b.Text == "" {
		return
	}
	w.blocks = append(w.blocks, b)
}

// flush turns loose inline text into a paragraph.
func (w *htmlWalker) flush() {
	text := collapse(w.inline.String())
	w.inline.Reset()
	w.add(mdtext.Block{Kind: mdtext.KindParagraph, Text: text})
}

func (w *htmlWalker) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *htmlWalker) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.inline.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		w.walk(n)
		return
	}
	if level, ok := headingLevels[n.DataAtom]; ok {
		w.flush()
		w.add(mdtext.Block{Kind: mdtext.KindHeading, Level: level, Text: textOf(n, false)})
		return
	}
	switch n.DataAtom {
	case atom.Head, atom.Script, atom.Style:
	case atom.Br:
		w.inline.WriteString("\n")
	case atom.P:
		w.flush()
		w.add(mdtext.Block{Kind: mdtext.KindParagraph, Text: textOf(n, false)})
	case atom.Blockquote:
		w.flush()
		w.add(mdtext.Block{Kind: mdtext.KindQuote, Text: textOf(n, false)})
	case atom.Pre:
		w.flush()
		w.add(mdtext.Block{Kind: mdtext.KindCode, Text: strings.Trim(rawText(n), "\n")})
	case atom.Ul, atom.Ol:
		w.flush()
		w.list(n, 1)
	case atom.Div, atom.Section, atom.Article, atom.Table, atom.Tr:
		w.flush()
		w.walk(n)
		w.flush()
	default:
		w.walk(n)
	}
}

func (w *htmlWalker) list(n *html.Node, depth int) {
	ordered := n.DataAtom == atom.Ol
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		w.add(mdtext.Block{Kind: mdtext.KindListItem, Level: depth, Ordered: ordered, Text: textOf(li, true)})
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				w.list(c, depth+1)
			}
		}
	}
}

// textOf returns the collapsed text under n. Nested lists are skipped when skipLists is set.
func textOf(n *html.Node, skipLists bool) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				b.WriteString(c.Data)
			case c.Type != html.ElementNode:
			case c.DataAtom == atom.Br:
				b.WriteString("\n")
			case skipLists && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol):
			case c.DataAtom == atom.P || c.DataAtom == atom.Li:
				visit(c)
				b.WriteString("\n")
			default:
				visit(c)
			}
		}
	}
	visit(n)
	return collapse(b.String())
}

func rawText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

// collapse squeezes whitespace within each line and drops blank lines.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if f := strings.Fields(line); len(f) > 0 {
			out = append(out, strings.Join(f, " "))
		}
	}
	return strings.Join(out, "\n")
}
