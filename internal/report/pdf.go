package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/verte-zerg/wsec/internal/model"
)

const (
	pdfPageWidth = 277.0 // A4 landscape less 10 mm margins.
	pdfRowHeight = 5.0
	pdfFontSize  = 7.0
	pdfCellPad   = 2.0
)

// WritePDF renders t as a landscape A4 report. Columns that do not fit the
// page width are left out and listed under the table.
func WritePDF(w io.Writer, t Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, t.Title)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, "Filters: "+model.FormatFilters(t.Filters))
	pdf.Ln(5)
	pdf.Cell(0, 5, "Loads: "+model.FormatLoads(t.Loads))
	pdf.Ln(5)
	pdf.Cell(0, 5, "Date: "+time.Now().Format("2006-01-02"))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", pdfFontSize)
	rows := t.Strings()
	widths := make([]float64, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = pdf.GetStringWidth(h) + pdfCellPad
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if cw := pdf.GetStringWidth(cell) + pdfCellPad; cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	keep := len(widths)
	var total float64
	for i, cw := range widths {
		total += cw
		if total > pdfPageWidth && i >= leadingCols {
			keep = i
			break
		}
	}

	pdf.SetFont("Helvetica", "B", pdfFontSize)
	pdf.SetFillColor(226, 232, 240)
	for i := 0; i < keep; i++ {
		pdf.CellFormat(widths[i], pdfRowHeight, t.Headers[i], "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	for _, row := range rows {
		for i := 0; i < keep; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			align := "R"
			if i == 1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], pdfRowHeight, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if keep < len(t.Headers) {
		pdf.Ln(2)
		pdf.Cell(0, 5, fmt.Sprintf("%d column(s) omitted; export to .xlsx for the full table.", len(t.Headers)-keep))
		pdf.Ln(5)
	}
	if len(rows) == 0 {
		pdf.Cell(0, 5, "No sections selected.")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build pdf: %w", err)
	}
	return pdf.Output(w)
}
