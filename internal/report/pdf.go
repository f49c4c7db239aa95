// Package report renders the per-candidate evaluation report.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/fmuoria/talent-screening-agent/internal/models"
)

// Renderer turns report fields into a downloadable document
type Renderer interface {
	Render(fields models.ReportFields) ([]byte, error)
}

// PDFRenderer renders A4 PDF reports with the core Helvetica font
type PDFRenderer struct {
	compress bool
	now      func() time.Time
}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{compress: true, now: time.Now}
}

// SetCompression toggles stream compression; uncompressed output keeps text greppable
func (r *PDFRenderer) SetCompression(compress bool) {
	r.compress = compress
}

const (
	lineHeight    = 7.0
	sectionGap    = 7.6 // 0.3 inch
	contentWidth  = 0.0 // extend to the right margin
	listIndent    = 6.0
	bodyFontSize  = 11.0
	titleFontSize = 18.0
	headFontSize  = 13.0
)

// Render builds the report document
func (r *PDFRenderer) Render(fields models.ReportFields) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(r.now())
	pdf.SetModificationDate(r.now())
	pdf.SetTitle("Candidate Evaluation Report", false)
	pdf.SetCreator("talent-screening-agent", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", titleFontSize)
	pdf.CellFormat(contentWidth, 12, "Candidate Evaluation Report", "", 1, "C", false, 0, "")
	pdf.Ln(sectionGap)

	labelled := func(label, value string) {
		pdf.SetFont("Helvetica", "B", bodyFontSize)
		labelWidth := pdf.GetStringWidth(label) + 2
		pdf.CellFormat(labelWidth, lineHeight, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", bodyFontSize)
		pdf.CellFormat(contentWidth, lineHeight, tr(value), "", 1, "L", false, 0, "")
	}

	labelled("Name:", fields.Name)
	labelled("Score:", fmt.Sprintf("%d/100", fields.Score))
	labelled("Skill Coverage:", fmt.Sprintf("%d%%", fields.Coverage))
	labelled("JD Match:", FormatJDMatch(fields.JDMatch))
	pdf.Ln(sectionGap)

	heading := func(text string) {
		pdf.SetFont("Helvetica", "B", headFontSize)
		pdf.CellFormat(contentWidth, lineHeight+1, text, "", 1, "L", false, 0, "")
	}

	list := func(items []string) {
		pdf.SetFont("Helvetica", "", bodyFontSize)
		if len(items) == 0 {
			items = []string{"None"}
		}
		for _, item := range items {
			pdf.SetX(pdf.GetX() + listIndent)
			pdf.MultiCell(contentWidth, lineHeight, tr("- "+item), "", "L", false)
		}
	}

	heading("Missing Skills:")
	list(fields.MissingSkills)
	pdf.Ln(sectionGap)

	heading("Risk Flags:")
	list(fields.Risks)
	pdf.Ln(sectionGap)

	heading("Final Decision:")
	pdf.SetFont("Helvetica", "", bodyFontSize)
	pdf.CellFormat(contentWidth, lineHeight, tr(string(fields.Decision)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report for %s: %w", fields.Name, err)
	}
	return buf.Bytes(), nil
}

// FormatJDMatch renders an optional JD match percentage
func FormatJDMatch(match *int) string {
	if match == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d%%", *match)
}

// FileName returns the download name of a candidate's report
func FileName(candidate string) string {
	base := filepath.Base(strings.TrimSpace(candidate))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "candidate"
	}
	return base + "_evaluation_report.pdf"
}
