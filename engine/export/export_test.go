package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexify/plexify/pkg/mdtext"
)

const briefJSON = `{
	"title": "Q3 Board Brief",
	"executiveSummary": "Delivery is on plan.",
	"keyPoints": ["Budget holding", "Two sites opened"],
	"risks": [{"title": "Steel prices", "severity": "high", "mitigation": "Forward contracts"}],
	"recommendations": ["Approve phase two"],
	"nextSteps": []
}`

func TestFromBoardBrief(t *testing.T) {
	t.Run("Should build sections from a bare brief", func(t *testing.T) {
		doc, err := FromBoardBrief(json.RawMessage(briefJSON))
		require.NoError(t, err)
		assert.Equal(t, "Q3 Board Brief", doc.Title)
		assert.Equal(t, []mdtext.Block{
			{Kind: mdtext.KindHeading, Level: 2, Text: "Executive Summary"},
			{Kind: mdtext.KindParagraph, Text: "Delivery is on plan."},
			{Kind: mdtext.KindHeading, Level: 2, Text: "Key Points"},
			{Kind: mdtext.KindListItem, Level: 1, Text: "Budget holding"},
			{Kind: mdtext.KindListItem, Level: 1, Text: "Two sites opened"},
			{Kind: mdtext.KindHeading, Level: 2, Text: "Risks"},
			{Kind: mdtext.KindListItem, Level: 1, Text: "Steel prices (high): Forward contracts"},
			{Kind: mdtext.KindHeading, Level: 2, Text: "Recommendations"},
			{Kind: mdtext.KindListItem, Level: 1, Text: "Approve phase two"},
		}, doc.Blocks)
	})

	t.Run("Should unwrap an agent envelope", func(t *testing.T) {
		env := `{"agentId":"board-brief","schemaVersion":"1.0","output":` + briefJSON + `}`
		doc, err := FromBoardBrief(json.RawMessage(env))
		require.NoError(t, err)
		assert.Equal(t, "Q3 Board Brief", doc.Title)
	})

	t.Run("Should reject an empty brief", func(t *testing.T) {
		_, err := FromBoardBrief(json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrNoContent)
	})
}

func TestFromEditorContent(t *testing.T) {
	t.Run("Should read editor HTML", func(t *testing.T) {
		html := `<h1>Site Report</h1><p>Works are <strong>ahead</strong> of schedule.</p>` +
			`<ul><li>Foundations<ul><li>Poured</li></ul></li><li>Framing</li></ul>` +
			`<ol><li>First</li><li>Second</li></ol><blockquote>Quoted line</blockquote>` +
			`<p>Line one<br>Line two</p><script>alert(1)</script>`
		doc, err := FromEditorContent(html)
		require.NoError(t, err)
		assert.Equal(t, "Site Report", doc.Title)
		assert.Equal(t, []mdtext.Block{
			{Kind: mdtext.KindParagraph, Text: "Works are ahead of schedule."},
			{Kind: mdtext.KindListItem, Level: 1, Text: "Foundations"},
			{Kind: mdtext.KindListItem, Level: 2, Text: "Poured"},
			{Kind: mdtext.KindListItem, Level: 1, Text: "Framing"},
			{Kind: mdtext.KindListItem, Level: 1, Ordered: true, Text: "First"},
			{Kind: mdtext.KindListItem, Level: 1, Ordered: true, Text: "Second"},
			{Kind: mdtext.KindQuote, Text: "Quoted line"},
			{Kind: mdtext.KindParagraph, Text: "Line one\nLine two"},
		}, doc.Blocks)
	})

	t.Run("Should read markdown when content is not HTML", func(t *testing.T) {
		doc, err := FromEditorContent("## Summary\nAll good.")
		require.NoError(t, err)
		assert.Empty(t, doc.Title)
		assert.Equal(t, []mdtext.Block{
			{Kind: mdtext.KindHeading, Level: 2, Text: "Summary"},
			{Kind: mdtext.KindParagraph, Text: "All good."},
		}, doc.Blocks)
	})

	t.Run("Should reject blank content", func(t *testing.T) {
		_, err := FromEditorContent("  ")
		assert.ErrorIs(t, err, ErrNoContent)
	})
}

func readZipPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	f, err := zr.Open(name)
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(body)
}

func TestWriteDOCX(t *testing.T) {
	t.Run("Should write a word package with escaped text and numbered lists", func(t *testing.T) {
		doc := &Document{Title: "R&D <Plan>", Blocks: []mdtext.Block{
			{Kind: mdtext.KindHeading, Level: 2, Text: "Steps"},
			{Kind: mdtext.KindListItem, Level: 1, Ordered: true, Text: "Scope"},
			{Kind: mdtext.KindListItem, Level: 1, Ordered: true, Text: "Build"},
			{Kind: mdtext.KindListItem, Level: 1, Text: "Note"},
		}}
		var buf bytes.Buffer
		require.NoError(t, WriteDOCX(&buf, doc))
		assert.Contains(t, readZipPart(t, buf.Bytes(), "[Content_Types].xml"), "wordprocessingml.document.main+xml")
		assert.Contains(t, readZipPart(t, buf.Bytes(), "_rels/.rels"), "word/document.xml")
		body := readZipPart(t, buf.Bytes(), "word/document.xml")
		assert.Contains(t, body, "R&amp;D &lt;Plan&gt;")
		assert.Contains(t, body, `<w:pStyle w:val="Heading2"/>`)
		assert.Contains(t, body, ">1. Scope<")
		assert.Contains(t, body, ">2. Build<")
		assert.Contains(t, body, ">• Note<")
	})
}

func TestRender(t *testing.T) {
	t.Run("Should render a PDF from a brief", func(t *testing.T) {
		file, err := Render(t.Context(), FormatPDF, &Request{BoardBrief: json.RawMessage(briefJSON), Filename: "Q3 Brief"})
		require.NoError(t, err)
		assert.Equal(t, "q3-brief.pdf", file.Name)
		assert.Equal(t, "application/pdf", file.ContentType)
		assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))
	})

	t.Run("Should render a DOCX from editor content with the default name", func(t *testing.T) {
		file, err := Render(t.Context(), FormatDOCX, &Request{EditorContent: "<p>Hello – world</p>"})
		require.NoError(t, err)
		assert.Equal(t, "board-brief.docx", file.Name)
		assert.Contains(t, readZipPart(t, file.Data, "word/document.xml"), "Hello – world")
	})

	t.Run("Should fail without content", func(t *testing.T) {
		_, err := Render(t.Context(), FormatDOCX, &Request{BoardBrief: json.RawMessage("null")})
		assert.ErrorIs(t, err, ErrNoContent)
	})
}

func TestFileName(t *testing.T) {
	t.Run("Should slugify and keep a single extension", func(t *testing.T) {
		assert.Equal(t, "board-brief-q3.docx", FileName("Board Brief Q3.DOCX", ".docx"))
		assert.Equal(t, "board-brief.pdf", FileName("../../", ".pdf"))
		assert.Equal(t, "board-brief.pdf", FileName("", ".pdf"))
	})
}
