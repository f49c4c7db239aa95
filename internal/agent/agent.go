package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fmuoria/talent-screening-agent/internal/events"
	"github.com/fmuoria/talent-screening-agent/internal/ingestion"
	"github.com/fmuoria/talent-screening-agent/internal/models"
	"github.com/fmuoria/talent-screening-agent/internal/scoring"
	"github.com/fmuoria/talent-screening-agent/internal/session"
)

// ProgressCallback is called to report progress during processing
type ProgressCallback func(current, total int, message string)

// ScreeningAgent orchestrates extraction, scoring and session bookkeeping
type ScreeningAgent struct {
	extractor  ingestion.Extractor
	scorer     *scoring.Scorer
	publisher  events.Publisher
	now        func() time.Time
	mu         sync.RWMutex
	progressCb ProgressCallback
}

// NewScreeningAgent creates an agent with the default extractor, no event publisher
// and the given scorer (the default skill tables when nil)
func NewScreeningAgent(scorer *scoring.Scorer) *ScreeningAgent {
	if scorer == nil {
		scorer = scoring.NewScorer()
	}
	return &ScreeningAgent{
		extractor: ingestion.NewDocumentExtractor(),
		scorer:    scorer,
		publisher: events.NopPublisher{},
		now:       time.Now,
	}
}

// SetExtractor replaces the text extractor
func (a *ScreeningAgent) SetExtractor(e ingestion.Extractor) {
	a.extractor = e
}

// SetPublisher sets where evaluation events are sent; nil disables publishing
func (a *ScreeningAgent) SetPublisher(p events.Publisher) {
	if p == nil {
		p = events.NopPublisher{}
	}
	a.publisher = p
}

// Scorer returns the scorer in use
func (a *ScreeningAgent) Scorer() *scoring.Scorer {
	return a.scorer
}

// SetProgressCallback sets the progress callback function
func (a *ScreeningAgent) SetProgressCallback(cb ProgressCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.progressCb = cb
}

// reportProgress calls the progress callback if set
func (a *ScreeningAgent) reportProgress(current, total int, message string) {
	a.mu.RLock()
	cb := a.progressCb
	a.mu.RUnlock()

	if cb != nil {
		cb(current, total, message)
	}
}

// LoadJobDescription extracts the skills of a job description document and
// makes it the session's current job description
func (a *ScreeningAgent) LoadJobDescription(sess *session.Session, doc ingestion.Document) (models.JobDescription, error) {
	text, err := a.extractor.ExtractText(doc)
	if err != nil {
		return models.JobDescription{}, fmt.Errorf("failed to load job description: %w", err)
	}

	jd := models.JobDescription{
		Name:   doc.Name,
		Text:   text,
		Skills: a.scorer.ExtractJDSkills(text),
	}
	sess.SetJobDescription(jd)

	log.Printf("Loaded job description %s with %d skills", doc.Name, len(jd.Skills))
	return jd, nil
}

// EvaluateText scores raw resume text against the session's job description and
// appends the candidate to the session
func (a *ScreeningAgent) EvaluateText(ctx context.Context, sess *session.Session, name, text string) models.EvaluationResult {
	result := a.scorer.Evaluate(name, text, sess.JDSkills())
	sess.Add(result.Record(a.now()))

	if err := a.publisher.PublishEvaluation(ctx, sess.ID.String(), result); err != nil {
		log.Printf("Failed to publish evaluation of %s: %v", name, err)
	}
	return result
}

// ProcessDocuments extracts and evaluates each document in order. Documents
// whose text cannot be extracted are skipped and reported, never scored.
func (a *ScreeningAgent) ProcessDocuments(ctx context.Context, sess *session.Session, docs []ingestion.Document) (models.BatchResult, error) {
	batch := models.BatchResult{
		Evaluations: make([]models.EvaluationResult, 0, len(docs)),
		Skipped:     []models.SkippedDocument{},
	}

	for i, doc := range docs {
		// Check for cancellation
		select {
		case <-ctx.Done():
			return batch, ctx.Err()
		default:
		}

		log.Printf("Evaluating resume %d/%d: %s", i+1, len(docs), doc.Name)
		a.reportProgress(i, len(docs), fmt.Sprintf("Evaluating %s (%d/%d)", doc.Name, i+1, len(docs)))

		text, err := a.extractor.ExtractText(doc)
		if err != nil {
			var extractErr *ingestion.ExtractionError
			if !errors.As(err, &extractErr) {
				return batch, fmt.Errorf("failed to extract %s: %w", doc.Name, err)
			}
			log.Printf("Skipping %s: %v", doc.Name, err)
			batch.Skipped = append(batch.Skipped, models.SkippedDocument{Name: doc.Name, Reason: err.Error()})
			continue
		}

		batch.Evaluations = append(batch.Evaluations, a.EvaluateText(ctx, sess, doc.Name, text))
	}

	a.reportProgress(len(docs), len(docs), "Processing complete!")
	return batch, nil
}

// ProcessSource loads every document from a source and processes them
func (a *ScreeningAgent) ProcessSource(ctx context.Context, sess *session.Session, src ingestion.Source) (models.BatchResult, error) {
	docs, err := src.Documents(ctx)
	if err != nil {
		return models.BatchResult{}, fmt.Errorf("failed to load documents: %w", err)
	}
	if len(docs) == 0 {
		return models.BatchResult{}, fmt.Errorf("no documents found")
	}

	log.Printf("Found %d resumes to evaluate", len(docs))
	return a.ProcessDocuments(ctx, sess, docs)
}
