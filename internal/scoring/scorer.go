package scoring

import (
	"math"
	"strings"

	"github.com/fmuoria/talent-screening-agent/internal/models"
)

// Risk flag messages
const (
	RiskFrequentInternships = "Frequent internships - possible retention risk"
	RiskAnalyticsWithoutSQL = "Claims analytics but lacks SQL"
	RiskShortRoles          = "Multiple short-duration roles detected"
)

// Decision thresholds and risk heuristic limits
const (
	StrongHireScore    = 80
	ProceedRound1Score = 60

	maxInternMentions = 3
	maxMonthsMentions = 4
)

// Scorer evaluates resume text against a fixed skill vocabulary.
// All methods are pure; a Scorer can be shared freely.
type Scorer struct {
	tables Tables
}

// NewScorer creates a scorer over the default skill tables
func NewScorer() *Scorer {
	return &Scorer{tables: DefaultTables()}
}

// NewScorerWithTables creates a scorer over custom skill tables
func NewScorerWithTables(t Tables) (*Scorer, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{tables: t}, nil
}

// Tables returns the vocabulary the scorer uses
func (s *Scorer) Tables() Tables {
	return s.tables
}

// CalculateScore sums the weights of every skill whose name occurs in the text.
// Matching is plain case-insensitive substring containment, so "Excel" also
// matches "excellent".
func (s *Scorer) CalculateScore(text string) (int, []string) {
	lower := strings.ToLower(text)

	score := 0
	matched := []string{}
	for _, skill := range s.tables.Skills {
		if strings.Contains(lower, strings.ToLower(skill.Name)) {
			score += skill.Weight
			matched = append(matched, skill.Name)
		}
	}

	return score, matched
}

// DetectRisk applies the fixed risk heuristics in order
func (s *Scorer) DetectRisk(text string) []string {
	lower := strings.ToLower(text)
	risks := []string{}

	if strings.Count(lower, "intern") > maxInternMentions {
		risks = append(risks, RiskFrequentInternships)
	}

	if strings.Contains(lower, "analytics") && !strings.Contains(lower, "sql") {
		risks = append(risks, RiskAnalyticsWithoutSQL)
	}

	if strings.Count(lower, "months") > maxMonthsMentions {
		risks = append(risks, RiskShortRoles)
	}

	return risks
}

// CalculateSkillGap returns the required skills absent from matched and the
// coverage percentage. Coverage divides the count of all matched skills by the
// required list size, so skills outside the required list (e.g. Python) push
// it up and it can exceed 100.
func (s *Scorer) CalculateSkillGap(matched []string) ([]string, int) {
	have := toSet(matched)

	missing := []string{}
	for _, req := range s.tables.Required {
		if !have[req] {
			missing = append(missing, req)
		}
	}

	coverage := percent(len(matched), len(s.tables.Required))
	return missing, coverage
}

// ExtractJDSkills returns the vocabulary skills mentioned in a job description
func (s *Scorer) ExtractJDSkills(jdText string) []string {
	lower := strings.ToLower(jdText)

	skills := []string{}
	for _, skill := range s.tables.Skills {
		if strings.Contains(lower, strings.ToLower(skill.Name)) {
			skills = append(skills, skill.Name)
		}
	}
	return skills
}

// Decide maps a score and its risks to a final decision
func Decide(score int, risks []string) models.Decision {
	switch {
	case score >= StrongHireScore && len(risks) == 0:
		return models.DecisionStrongHire
	case score >= ProceedRound1Score:
		return models.DecisionProceedRound1
	default:
		return models.DecisionReject
	}
}

// JDMatch compares matched skills with the skills of a job description.
// With no JD skills the match is not applicable and nil is returned.
func JDMatch(matched, jdSkills []string) (*int, []string) {
	if len(jdSkills) == 0 {
		return nil, []string{}
	}

	have := toSet(matched)
	jd := toSet(jdSkills)

	overlap := 0
	for skill := range jd {
		if have[skill] {
			overlap++
		}
	}

	missing := []string{}
	for _, skill := range jdSkills {
		if !have[skill] {
			missing = append(missing, skill)
		}
	}

	match := percent(overlap, len(jd))
	return &match, missing
}

// Evaluate runs the full scoring pipeline for one resume
func (s *Scorer) Evaluate(name, resumeText string, jdSkills []string) models.EvaluationResult {
	score, matched := s.CalculateScore(resumeText)
	risks := s.DetectRisk(resumeText)
	missing, coverage := s.CalculateSkillGap(matched)
	jdMatch, missingFromJD := JDMatch(matched, jdSkills)

	return models.EvaluationResult{
		Name:          name,
		Score:         score,
		MatchedSkills: matched,
		Risks:         risks,
		MissingSkills: missing,
		Coverage:      coverage,
		JDMatch:       jdMatch,
		MissingFromJD: missingFromJD,
		Decision:      Decide(score, risks),
	}
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(part) / float64(whole) * 100))
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
