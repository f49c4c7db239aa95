// Package session holds the candidates evaluated during one screening run.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmuoria/talent-screening-agent/internal/models"
)

// ErrNotFound is returned by the registry for unknown session IDs
var ErrNotFound = errors.New("session not found")

// Session accumulates candidate records for the current run. It is owned by
// the caller and passed explicitly to the orchestration layer.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu      sync.RWMutex
	records []models.CandidateRecord
	jobDesc *models.JobDescription
}

// New creates an empty session
func New() *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		records:   []models.CandidateRecord{},
	}
}

// Add appends a candidate record
func (s *Session) Add(rec models.CandidateRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Records returns a copy of the records in append order
func (s *Session) Records() []models.CandidateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CandidateRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of accumulated candidates
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ranked returns the candidates sorted by score, highest first. Candidates
// with equal scores keep their append order.
func (s *Session) Ranked() []models.RankedCandidate {
	return Rank(s.Records())
}

// Reset drops every accumulated candidate. The job description is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = []models.CandidateRecord{}
}

// SetJobDescription replaces the job description used for JD matching
func (s *Session) SetJobDescription(jd models.JobDescription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobDesc = &jd
}

// JobDescription returns the current job description, or nil if none was uploaded
func (s *Session) JobDescription() *models.JobDescription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.jobDesc == nil {
		return nil
	}
	jd := *s.jobDesc
	return &jd
}

// JDSkills returns the skills of the current job description
func (s *Session) JDSkills() []string {
	if jd := s.JobDescription(); jd != nil {
		return jd.Skills
	}
	return nil
}

// Rank orders records by score descending with a stable sort and assigns 1-based ranks
func Rank(records []models.CandidateRecord) []models.RankedCandidate {
	sorted := make([]models.CandidateRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	ranked := make([]models.RankedCandidate, len(sorted))
	for i, rec := range sorted {
		ranked[i] = models.RankedCandidate{Rank: i + 1, CandidateRecord: rec}
	}
	return ranked
}
