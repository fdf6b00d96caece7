package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/plexify/plexify/pkg/mdtext"
)

const (
	pdfMargin     = 20.0
	pdfListIndent = 6.0
	pdfFont       = "Helvetica"
)

var pdfHeadingSizes = map[int]float64{1: 18, 2: 15, 3: 13}

// WritePDF renders doc as an A4 PDF using the core fonts.
func WritePDF(w io.Writer, doc *Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetCreator("plexify", false)
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	pdf.AddPage()
	// Core fonts are cp1252.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if doc.Title != "" {
		pdf.SetFont(pdfFont, "B", 22)
		pdf.MultiCell(0, 10, tr(doc.Title), "", "L", false)
		pdf.Ln(4)
	}
	var markers listMarkers
	for _, blk := range doc.Blocks {
		if blk.Kind != mdtext.KindListItem {
			markers.reset()
		}
		switch blk.Kind {
		case mdtext.KindHeading:
			size, ok := pdfHeadingSizes[blk.Level]
			if !ok {
				size = 12
			}
			pdf.Ln(2)
			pdf.SetFont(pdfFont, "B", size)
			pdf.MultiCell(0, size*0.5, tr(blk.Text), "", "L", false)
			pdf.Ln(2)
		case mdtext.KindListItem:
			pdf.SetFont(pdfFont, "", 11)
			pdf.SetX(pdfMargin + pdfListIndent*float64(max(blk.Level, 1)-1))
			pdf.MultiCell(0, 6, tr(markers.next(blk)+blk.Text), "", "L", false)
			pdf.Ln(1)
		case mdtext.KindQuote:
			pdf.SetFont(pdfFont, "I", 11)
			pdf.SetX(pdfMargin + pdfListIndent)
			pdf.MultiCell(0, 6, tr(blk.Text), "", "L", false)
			pdf.Ln(3)
		case mdtext.KindCode:
			pdf.SetFont("Courier", "", 10)
			pdf.MultiCell(0, 5, tr(blk.Text), "", "L", false)
			pdf.Ln(3)
		default:
			pdf.SetFont(pdfFont, "", 11)
			pdf.MultiCell(0, 6, tr(blk.Text), "", "L", false)
			pdf.Ln(3)
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return nil
}
