package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/talent-screening-agent/internal/models"
	"github.com/fmuoria/talent-screening-agent/internal/session"
)

const (
	SummarySheet = "Summary"
	RankingSheet = "Ranking"
	ChartTitle   = "Score by Candidate"
)

// Dashboard is a point-in-time snapshot of a session's ranking
type Dashboard struct {
	SessionID      string
	JobDescription *models.JobDescription
	Candidates     []models.RankedCandidate
	GeneratedAt    time.Time
}

// NewDashboard snapshots a session
func NewDashboard(sess *session.Session, at time.Time) Dashboard {
	return Dashboard{
		SessionID:      sess.ID.String(),
		JobDescription: sess.JobDescription(),
		Candidates:     sess.Ranked(),
		GeneratedAt:    at,
	}
}

var decisionFills = map[models.Decision]string{
	models.DecisionStrongHire:    "C6EFCE",
	models.DecisionProceedRound1: "FFEB9C",
	models.DecisionReject:        "FFC7CE",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// BuildWorkbook lays the dashboard out as a Summary sheet and a colour-coded
// Ranking sheet with a score chart. The caller must Close the file.
func BuildWorkbook(d Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(RankingSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := createSummarySheet(f, d); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := createRankingSheet(f, d.Candidates); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create ranking sheet: %w", err)
	}

	return f, nil
}

// WriteExcel streams the dashboard workbook to w
func WriteExcel(d Dashboard, w io.Writer) error {
	f, err := BuildWorkbook(d)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// ExportToExcel saves the dashboard workbook and returns the path written
func ExportToExcel(d Dashboard, outputPath string) (string, error) {
	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f, err := BuildWorkbook(d)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Try to save the file directly
	if err := f.SaveAs(outputPath); err != nil {
		// If direct save fails, try buffer write fallback
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return outputPath, nil
}

// Summary holds the aggregate figures shown on the Summary sheet
type Summary struct {
	Total        int
	StrongHire   int
	ProceedRound int
	Reject       int
	Average      float64
	Highest      int
	Lowest       int
}

// Summarize aggregates ranked candidates
func Summarize(candidates []models.RankedCandidate) Summary {
	var s Summary
	s.Total = len(candidates)
	if s.Total == 0 {
		return s
	}

	total := 0
	s.Highest = candidates[0].Score
	s.Lowest = candidates[0].Score
	for _, c := range candidates {
		switch c.Decision {
		case models.DecisionStrongHire:
			s.StrongHire++
		case models.DecisionProceedRound1:
			s.ProceedRound++
		default:
			s.Reject++
		}
		total += c.Score
		s.Highest = max(s.Highest, c.Score)
		s.Lowest = min(s.Lowest, c.Score)
	}
	s.Average = float64(total) / float64(s.Total)
	return s
}

// createSummarySheet writes the session details and statistics
func createSummarySheet(f *excelize.File, d Dashboard) error {
	sheet := SummarySheet
	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", "B", 50)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", "Candidate Screening Dashboard")
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)
	f.MergeCell(sheet, "A1", "B1")

	jdName, jdSkills := "None", "None"
	if d.JobDescription != nil {
		jdName = d.JobDescription.Name
		if len(d.JobDescription.Skills) > 0 {
			jdSkills = strings.Join(d.JobDescription.Skills, ", ")
		}
	}

	stats := Summarize(d.Candidates)
	rows := []struct {
		label string
		value any
	}{
		{"Session:", d.SessionID},
		{"Job Description:", jdName},
		{"JD Skills:", jdSkills},
		{"Generated:", d.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Candidates:", stats.Total},
		{"Strong Hire:", stats.StrongHire},
		{"Proceed to Round 1:", stats.ProceedRound},
		{"Reject:", stats.Reject},
		{"Average Score:", fmt.Sprintf("%.2f", stats.Average)},
		{"Highest Score:", stats.Highest},
		{"Lowest Score:", stats.Lowest},
	}

	for i, r := range rows {
		row := i + 3
		label := fmt.Sprintf("A%d", row)
		f.SetCellValue(sheet, label, r.label)
		f.SetCellStyle(sheet, label, label, labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.value)
	}

	return nil
}

// createRankingSheet writes one colour-coded row per candidate plus the score chart
func createRankingSheet(f *excelize.File, candidates []models.RankedCandidate) error {
	sheet := RankingSheet
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 35)
	f.SetColWidth(sheet, "C", "C", 10)
	f.SetColWidth(sheet, "D", "D", 22)
	f.SetColWidth(sheet, "E", "E", 22)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	rowStyles := make(map[models.Decision]int, len(decisionFills))
	for decision, color := range decisionFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		rowStyles[decision] = style
	}

	headers := []string{"Rank", "Candidate", "Score", "Decision", "Evaluated"}
	for col, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, c := range candidates {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), c.Rank)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), c.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), c.Score)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(c.Decision))
		if !c.EvaluatedAt.IsZero() {
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), c.EvaluatedAt.Format("2006-01-02 15:04:05"))
		}
		if style, ok := rowStyles[c.Decision]; ok {
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), style)
		}
	}

	// Freeze top row
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if len(candidates) == 0 {
		return nil
	}

	last := len(candidates) + 1
	if err := f.AutoFilter(sheet, fmt.Sprintf("A1:E%d", last), []excelize.AutoFilterOptions{}); err != nil {
		return err
	}

	return f.AddChart(sheet, "G2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$C$1", sheet),
				Categories: fmt.Sprintf("%s!$B$2:$B$%d", sheet, last),
				Values:     fmt.Sprintf("%s!$C$2:$C$%d", sheet, last),
			},
		},
		Title:  []excelize.RichTextRun{{Text: ChartTitle}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}
