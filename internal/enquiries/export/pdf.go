package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/dreamspace-builders/site-backend/internal/enquiries/domain"
)

// Column widths in millimetres for A4 landscape with 10mm margins.
var pdfWidths = []float64{32, 35, 50, 28, 45, 87}

const (
	pdfMargin      = 10.0
	pdfLineHeight  = 4.5
	pdfMaxRowLines = 30
)

// WritePDF renders the enquiries as a table with fixed column widths. Text
// is translated to cp1252 for the core Helvetica font; cells wrap and rows
// never split across pages.
func WritePDF(w io.Writer, list []domain.Enquiry, loc *time.Location, generated time.Time) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")
	pdf.SetTitle("Enquiries", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(235, 235, 235)
		for i, col := range Columns {
			pdf.CellFormat(pdfWidths[i], 7, col, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Enquiries", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Generated %s, %d records", formatDate(&generated, loc), len(list))), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	for _, e := range list {
		cells := record(e, loc)
		for i := range cells {
			cells[i] = tr(cells[i])
		}
		writeRow(pdf, cells, header)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func writeRow(pdf *fpdf.Fpdf, cells []string, header func()) {
	lines := make([][][]byte, len(cells))
	rowLines := 1
	for i, c := range cells {
		split := pdf.SplitLines([]byte(c), pdfWidths[i])
		if len(split) == 0 {
			split = [][]byte{nil}
		}
		if len(split) > pdfMaxRowLines {
			split = append(split[:pdfMaxRowLines-1], []byte("..."))
		}
		lines[i] = split
		rowLines = max(rowLines, len(split))
	}
	h := float64(rowLines) * pdfLineHeight

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+h > pageH-pdfMargin-5 {
		pdf.AddPage()
		header()
	}

	x, y := pdf.GetXY()
	for i := range cells {
		pdf.Rect(x, y, pdfWidths[i], h, "D")
		for j, line := range lines[i] {
			pdf.SetXY(x, y+float64(j)*pdfLineHeight)
			pdf.CellFormat(pdfWidths[i], pdfLineHeight, string(line), "", 0, "L", false, 0, "")
		}
		x += pdfWidths[i]
	}
	pdf.SetXY(pdfMargin, y+h)
}
