package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/talent-screening-agent/internal/models"
	"github.com/fmuoria/talent-screening-agent/internal/session"
)

var generated = time.Date(2026, 4, 5, 10, 30, 0, 0, time.UTC)

func testDashboard() Dashboard {
	sess := session.New()
	sess.SetJobDescription(models.JobDescription{Name: "analyst.pdf", Skills: []string{"SQL", "Power BI"}})
	sess.Add(models.CandidateRecord{Name: "bob.txt", Score: 45, Decision: models.DecisionReject})
	sess.Add(models.CandidateRecord{Name: "jane.pdf", Score: 85, Decision: models.DecisionStrongHire})
	sess.Add(models.CandidateRecord{Name: "ann.docx", Score: 65, Decision: models.DecisionProceedRound1})
	return NewDashboard(sess, generated)
}

func openWorkbook(t *testing.T, d Dashboard) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(d, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	require.NoError(t, err)
	return v
}

func TestWriteExcel_Sheets(t *testing.T) {
	f := openWorkbook(t, testDashboard())
	assert.Equal(t, []string{SummarySheet, RankingSheet}, f.GetSheetList())
}

func TestWriteExcel_Ranking(t *testing.T) {
	f := openWorkbook(t, testDashboard())

	assert.Equal(t, "Rank", cell(t, f, RankingSheet, "A1"))
	assert.Equal(t, "Decision", cell(t, f, RankingSheet, "D1"))

	want := [][]string{
		{"1", "jane.pdf", "85", "Strong Hire"},
		{"2", "ann.docx", "65", "Proceed to Round 1"},
		{"3", "bob.txt", "45", "Reject"},
	}
	for i, row := range want {
		r := i + 2
		assert.Equal(t, row[0], cell(t, f, RankingSheet, "A"+strconv.Itoa(r)))
		assert.Equal(t, row[1], cell(t, f, RankingSheet, "B"+strconv.Itoa(r)))
		assert.Equal(t, row[2], cell(t, f, RankingSheet, "C"+strconv.Itoa(r)))
		assert.Equal(t, row[3], cell(t, f, RankingSheet, "D"+strconv.Itoa(r)))
	}
	assert.Empty(t, cell(t, f, RankingSheet, "B5"))
}

func TestWriteExcel_RowsColouredByDecision(t *testing.T) {
	f := openWorkbook(t, testDashboard())

	strong, err := f.GetCellStyle(RankingSheet, "B2")
	require.NoError(t, err)
	proceed, err := f.GetCellStyle(RankingSheet, "B3")
	require.NoError(t, err)
	reject, err := f.GetCellStyle(RankingSheet, "B4")
	require.NoError(t, err)

	assert.NotEqual(t, strong, proceed)
	assert.NotEqual(t, proceed, reject)
	assert.NotEqual(t, strong, reject)
}

func TestWriteExcel_Summary(t *testing.T) {
	f := openWorkbook(t, testDashboard())

	assert.Equal(t, "Candidate Screening Dashboard", cell(t, f, SummarySheet, "A1"))
	assert.Equal(t, "analyst.pdf", cell(t, f, SummarySheet, "B4"))
	assert.Equal(t, "SQL, Power BI", cell(t, f, SummarySheet, "B5"))
	assert.Equal(t, "2026-04-05 10:30:00", cell(t, f, SummarySheet, "B6"))
	assert.Equal(t, "3", cell(t, f, SummarySheet, "B7"))
	assert.Equal(t, "1", cell(t, f, SummarySheet, "B8"))
	assert.Equal(t, "1", cell(t, f, SummarySheet, "B9"))
	assert.Equal(t, "1", cell(t, f, SummarySheet, "B10"))
	assert.Equal(t, "65.00", cell(t, f, SummarySheet, "B11"))
	assert.Equal(t, "85", cell(t, f, SummarySheet, "B12"))
	assert.Equal(t, "45", cell(t, f, SummarySheet, "B13"))
}

func TestWriteExcel_EmptySession(t *testing.T) {
	f := openWorkbook(t, NewDashboard(session.New(), generated))

	assert.Equal(t, "None", cell(t, f, SummarySheet, "B4"))
	assert.Equal(t, "0", cell(t, f, SummarySheet, "B7"))
	assert.Empty(t, cell(t, f, RankingSheet, "A2"))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]models.RankedCandidate{
		{Rank: 1, CandidateRecord: models.CandidateRecord{Score: 90, Decision: models.DecisionStrongHire}},
		{Rank: 2, CandidateRecord: models.CandidateRecord{Score: 80, Decision: models.DecisionProceedRound1}},
		{Rank: 3, CandidateRecord: models.CandidateRecord{Score: 10, Decision: models.DecisionReject}},
		{Rank: 4, CandidateRecord: models.CandidateRecord{Score: 0, Decision: models.DecisionReject}},
	})

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.StrongHire)
	assert.Equal(t, 1, s.ProceedRound)
	assert.Equal(t, 2, s.Reject)
	assert.InDelta(t, 45.0, s.Average, 0.001)
	assert.Equal(t, 90, s.Highest)
	assert.Equal(t, 0, s.Lowest)

	assert.Equal(t, Summary{}, Summarize(nil))
}

// TestExportToExcel_EnsuresXlsxExtension tests that .xlsx extension is added if missing
func TestExportToExcel_EnsuresXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()

	outputPath := filepath.Join(tmpDir, "dashboard")
	written, err := ExportToExcel(testDashboard(), outputPath)
	require.NoError(t, err)
	assert.Equal(t, outputPath+".xlsx", written)

	_, err = os.Stat(written)
	assert.NoError(t, err)
}

// TestExportToExcel_HandlesExistingXlsxExtension tests that existing .xlsx extension is preserved
func TestExportToExcel_HandlesExistingXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()

	outputPath := filepath.Join(tmpDir, "dashboard.xlsx")
	written, err := ExportToExcel(testDashboard(), outputPath)
	require.NoError(t, err)
	assert.Equal(t, outputPath, written)

	f, err := excelize.OpenFile(written)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(RankingSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "jane.pdf", v)
}
