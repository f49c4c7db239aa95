package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Decision is the final screening outcome for a candidate
type Decision string

const (
	DecisionStrongHire    Decision = "Strong Hire"
	DecisionProceedRound1 Decision = "Proceed to Round 1"
	DecisionReject        Decision = "Reject"
)

// JobDescription holds the text of an uploaded job description and the skills detected in it
type JobDescription struct {
	Name   string   `json:"name"`
	Text   string   `json:"-"`
	Skills []string `json:"skills"`
}

// CandidateRecord is the session entry kept for every processed resume
type CandidateRecord struct {
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	Decision    Decision  `json:"decision"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// RankedCandidate is a CandidateRecord with its 1-based position in the ranking
type RankedCandidate struct {
	Rank int `json:"rank"`
	CandidateRecord
}

// EvaluationResult is computed fresh for every resume and is not retained
type EvaluationResult struct {
	Name          string   `json:"name"`
	Score         int      `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
	Risks         []string `json:"risks"`
	MissingSkills []string `json:"missing_skills"`
	Coverage      int      `json:"coverage"`
	JDMatch       *int     `json:"jd_match"` // nil when no JD skills are known
	MissingFromJD []string `json:"missing_from_jd"`
	Decision      Decision `json:"decision"`
}

// Record converts the evaluation into the entry stored by the session
func (e EvaluationResult) Record(at time.Time) CandidateRecord {
	return CandidateRecord{
		Name:        e.Name,
		Score:       e.Score,
		Decision:    e.Decision,
		EvaluatedAt: at,
	}
}

// ReportFields returns exactly the fields accepted by the report renderer
func (e EvaluationResult) ReportFields() ReportFields {
	return ReportFields{
		Name:          e.Name,
		Score:         e.Score,
		Coverage:      e.Coverage,
		JDMatch:       e.JDMatch,
		MissingSkills: e.MissingSkills,
		Risks:         e.Risks,
		Decision:      e.Decision,
	}
}

// ReportFields is the input of the per-candidate report
type ReportFields struct {
	Name          string   `json:"name" validate:"required"`
	Score         int      `json:"score" validate:"gte=0"`
	Coverage      int      `json:"coverage" validate:"gte=0"`
	JDMatch       *int     `json:"jd_match,omitempty" validate:"omitempty,gte=0,lte=100"`
	MissingSkills []string `json:"missing_skills"`
	Risks         []string `json:"risks"`
	Decision      Decision `json:"decision" validate:"required,oneof='Strong Hire' 'Proceed to Round 1' 'Reject'"`
}

// Validate validates the ReportFields using the validator
func (f *ReportFields) Validate() error {
	validate := validator.New()
	return validate.Struct(f)
}

// EvaluateTextRequest represents the request payload for scoring raw resume text
type EvaluateTextRequest struct {
	Name       string `json:"name" validate:"required"`
	ResumeText string `json:"resume_text"`
}

// Validate validates the EvaluateTextRequest using the validator
func (r *EvaluateTextRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// SkippedDocument records a document that could not be evaluated
type SkippedDocument struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BatchResult is the outcome of processing a set of resumes
type BatchResult struct {
	Evaluations []EvaluationResult `json:"evaluations"`
	Skipped     []SkippedDocument  `json:"skipped"`
}

// RankingResponse represents the response with ranked candidates
type RankingResponse struct {
	SessionID      string            `json:"session_id"`
	JobDescription *JobDescription   `json:"job_description,omitempty"`
	Candidates     []RankedCandidate `json:"candidates"`
	Timestamp      string            `json:"timestamp"`
}
