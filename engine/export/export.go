package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"github.com/plexify/plexify/pkg/logger"
)

// DefaultFileName is used when the requested name slugifies to nothing.
const DefaultFileName = "board-brief"

type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
}

func (f Format) Ext() string {
	return "." + string(f)
}

// Request carries either a board brief or editor content.
type Request struct {
	BoardBrief    json.RawMessage `json:"boardBrief,omitempty"`
	EditorContent string          `json:"editorContent,omitempty"`
	Filename      string          `json:"filename,omitempty"`
}

func (r *Request) document() (*Document, error) {
	if len(bytes.TrimSpace(r.BoardBrief)) > 0 && string(bytes.TrimSpace(r.BoardBrief)) != "null" {
		return FromBoardBrief(r.BoardBrief)
	}
	return FromEditorContent(r.EditorContent)
}

// File is a rendered export ready to stream.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render builds the document from req and writes it in format.
func Render(ctx context.Context, format Format, req *Request) (*File, error) {
	doc, err := req.document()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	switch format {
	case FormatDOCX:
		err = WriteDOCX(&buf, doc)
	case FormatPDF:
		err = WritePDF(&buf, doc)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}
	file := &File{
		Name:        FileName(req.Filename, format.Ext()),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}
	logger.FromContext(ctx).Info("Document exported",
		"format", format, "file", file.Name, "blocks", len(doc.Blocks), "bytes", len(file.Data))
	return file, nil
}

// FileName slugifies name and appends ext, dropping ext from name if already present.
func FileName(name, ext string) string {
	name = strings.TrimSpace(name)
	if strings.EqualFold(filepath.Ext(name), ext) {
		name = name[:len(name)-len(ext)]
	}
	base := slug.Make(name)
	if base == "" {
		base = DefaultFileName
	}
	return base + ext
}
