package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/talent-screening-agent/internal/models"
)

func newTestRenderer() *PDFRenderer {
	r := NewPDFRenderer()
	r.SetCompression(false)
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r
}

func TestRender(t *testing.T) {
	match := 67
	fields := models.ReportFields{
		Name:          "jane_resume.pdf",
		Score:         85,
		Coverage:      117,
		JDMatch:       &match,
		MissingSkills: []string{"Power BI"},
		Risks:         []string{},
		Decision:      models.DecisionStrongHire,
	}

	out, err := newTestRenderer().Render(fields)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "output must be a PDF")

	for _, want := range []string{
		"(Candidate Evaluation Report)",
		"(jane_resume.pdf)",
		"(85/100)",
		"(117%)",
		"(67%)",
		"(- Power BI)",
		"(- None)",
		"(Strong Hire)",
	} {
		assert.True(t, bytes.Contains(out, []byte(want)), "report should contain %s", want)
	}
}

func TestRenderWithoutJD(t *testing.T) {
	out, err := newTestRenderer().Render(models.ReportFields{
		Name:     "bob.txt",
		Score:    10,
		Risks:    []string{"Claims analytics but lacks SQL"},
		Decision: models.DecisionReject,
	})
	require.NoError(t, err)
	assert.True(t, bytes.Contains(out, []byte("(N/A)")))
	assert.True(t, bytes.Contains(out, []byte("(- Claims analytics but lacks SQL)")))
	assert.True(t, bytes.Contains(out, []byte("(Reject)")))
}

func TestRenderIsDeterministic(t *testing.T) {
	fields := models.ReportFields{Name: "a.txt", Score: 60, Decision: models.DecisionProceedRound1}

	first, err := newTestRenderer().Render(fields)
	require.NoError(t, err)
	second, err := newTestRenderer().Render(fields)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFormatJDMatch(t *testing.T) {
	match := 50
	assert.Equal(t, "50%", FormatJDMatch(&match))
	assert.Equal(t, "N/A", FormatJDMatch(nil))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "jane.pdf_evaluation_report.pdf", FileName("jane.pdf"))
	assert.Equal(t, "jane.pdf_evaluation_report.pdf", FileName("../uploads/jane.pdf"))
	assert.Equal(t, "candidate_evaluation_report.pdf", FileName(""))
}
