package models

import (
	"testing"
	"time"
)

func TestEvaluationResultRecord(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	eval := EvaluationResult{
		Name:          "alice.pdf",
		Score:         85,
		MatchedSkills: []string{"Excel", "SQL"},
		Decision:      DecisionStrongHire,
	}

	rec := eval.Record(at)
	if rec.Name != "alice.pdf" || rec.Score != 85 || rec.Decision != DecisionStrongHire {
		t.Errorf("unexpected record: %+v", rec)
	}
	if !rec.EvaluatedAt.Equal(at) {
		t.Errorf("Expected evaluated_at %v, got %v", at, rec.EvaluatedAt)
	}
}

func TestReportFieldsValidate(t *testing.T) {
	match := 67
	tooHigh := 120

	tests := []struct {
		name    string
		fields  ReportFields
		wantErr bool
	}{
		{
			name:   "valid with JD match",
			fields: ReportFields{Name: "bob.pdf", Score: 40, Coverage: 33, JDMatch: &match, Decision: DecisionReject},
		},
		{
			name:   "valid without JD match",
			fields: ReportFields{Name: "bob.pdf", Score: 60, Coverage: 117, Decision: DecisionProceedRound1},
		},
		{
			name:    "missing name",
			fields:  ReportFields{Score: 40, Decision: DecisionReject},
			wantErr: true,
		},
		{
			name:    "unknown decision",
			fields:  ReportFields{Name: "bob.pdf", Decision: "Maybe"},
			wantErr: true,
		},
		{
			name:    "JD match out of range",
			fields:  ReportFields{Name: "bob.pdf", JDMatch: &tooHigh, Decision: DecisionReject},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEvaluateTextRequestValidate(t *testing.T) {
	req := EvaluateTextRequest{ResumeText: "Excel"}
	if err := req.Validate(); err == nil {
		t.Error("Expected error for missing name")
	}

	req.Name = "carol.txt"
	if err := req.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
