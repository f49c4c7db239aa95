package gui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fmuoria/talent-screening-agent/internal/models"
	"github.com/fmuoria/talent-screening-agent/internal/report"
)

var rankingHeaders = []string{"Rank", "Candidate", "Score", "Decision"}

// RankingCell returns the text of a ranking table cell; row 0 is the header
func RankingCell(ranked []models.RankedCandidate, row, col int) string {
	if col < 0 || col >= len(rankingHeaders) {
		return ""
	}
	if row == 0 {
		return rankingHeaders[col]
	}
	if row-1 >= len(ranked) {
		return ""
	}

	c := ranked[row-1]
	switch col {
	case 0:
		return strconv.Itoa(c.Rank)
	case 1:
		return c.Name
	case 2:
		return strconv.Itoa(c.Score)
	default:
		return string(c.Decision)
	}
}

// EvaluationDetails renders the per-candidate panel
func EvaluationDetails(r models.EvaluationResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", r.Name)
	fmt.Fprintf(&sb, "Score: %d/100\n", r.Score)
	fmt.Fprintf(&sb, "Skill Coverage: %d%%\n", r.Coverage)
	fmt.Fprintf(&sb, "JD Match: %s\n", report.FormatJDMatch(r.JDMatch))
	fmt.Fprintf(&sb, "Decision: %s\n\n", r.Decision)
	fmt.Fprintf(&sb, "Matched Skills: %s\n", joinOrNone(r.MatchedSkills))
	fmt.Fprintf(&sb, "Missing Skills: %s\n", joinOrNone(r.MissingSkills))
	if r.JDMatch != nil {
		fmt.Fprintf(&sb, "Missing from JD: %s\n", joinOrNone(r.MissingFromJD))
	}
	fmt.Fprintf(&sb, "Risk Flags: %s", joinOrNone(r.Risks))
	return sb.String()
}

// JobDescriptionSummary describes the loaded job description
func JobDescriptionSummary(jd models.JobDescription) string {
	return fmt.Sprintf("Job description: %s (skills: %s)", jd.Name, joinOrNone(jd.Skills))
}

// BatchSummary describes the outcome of an evaluation run
func BatchSummary(b models.BatchResult) string {
	msg := fmt.Sprintf("Complete! Evaluated %d resumes", len(b.Evaluations))
	if len(b.Skipped) > 0 {
		msg += fmt.Sprintf(", skipped %d", len(b.Skipped))
	}
	return msg
}

// SkippedSummary lists the documents that could not be read
func SkippedSummary(skipped []models.SkippedDocument) string {
	lines := make([]string, len(skipped))
	for i, s := range skipped {
		lines[i] = fmt.Sprintf("%s: %s", s.Name, s.Reason)
	}
	return strings.Join(lines, "\n")
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
