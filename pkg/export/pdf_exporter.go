package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ReceiptLine is one purchased item on a receipt.
type ReceiptLine struct {
	Description string
	Amount      string
}

// Receipt is the content of a payment receipt document.
type Receipt struct {
	Title     string
	Reference string
	IssuedAt  string
	Customer  string
	Method    string
	Status    string
	Lines     []ReceiptLine
	Total     string
	Footer    string
}

// PDFExporter renders datasets and receipts into A4 PDFs.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a landscape table with an optional title.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (width - left - right) / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(truncate(row[header], 48)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return output(pdf)
}

// RenderReceipt lays out a single-page payment receipt.
func (e *PDFExporter) RenderReceipt(r Receipt) ([]byte, error) {
	if r.Reference == "" {
		return nil, fmt.Errorf("receipt requires a reference")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, tr(strings.ToUpper(r.Title)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	for _, field := range [][2]string{
		{"Reference", r.Reference},
		{"Date", r.IssuedAt},
		{"Customer", r.Customer},
		{"Payment method", r.Method},
		{"Status", r.Status},
	} {
		if field[1] == "" {
			continue
		}
		pdf.CellFormat(45, 7, tr(field[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(field[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(130, 8, "Course", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range r.Lines {
		pdf.CellFormat(130, 8, tr(truncate(line.Description, 70)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, tr(line.Amount), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(130, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, tr(r.Total), "1", 1, "R", false, 0, "")

	if r.Footer != "" {
		pdf.Ln(10)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(r.Footer), "", "L", false)
	}
	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}
