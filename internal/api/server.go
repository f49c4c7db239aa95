package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/fmuoria/talent-screening-agent/internal/agent"
	"github.com/fmuoria/talent-screening-agent/internal/export"
	"github.com/fmuoria/talent-screening-agent/internal/ingestion"
	"github.com/fmuoria/talent-screening-agent/internal/models"
	"github.com/fmuoria/talent-screening-agent/internal/report"
	"github.com/fmuoria/talent-screening-agent/internal/session"
)

const (
	maxUploadSize = 32 << 20 // 32 MB
	maxJSONSize   = 1 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Server handles HTTP requests
type Server struct {
	agent    *agent.ScreeningAgent
	sessions *session.Registry
	renderer report.Renderer
	now      func() time.Time
}

// NewServer creates a new API server
func NewServer(agent *agent.ScreeningAgent, sessions *session.Registry, renderer report.Renderer) *Server {
	return &Server{
		agent:    agent,
		sessions: sessions,
		renderer: renderer,
		now:      time.Now,
	}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /sessions/{id}/job-description", s.handleJobDescription)
	mux.HandleFunc("POST /sessions/{id}/resumes", s.handleResumes)
	mux.HandleFunc("POST /sessions/{id}/evaluate", s.handleEvaluateText)
	mux.HandleFunc("GET /sessions/{id}/ranking", s.handleRanking)
	mux.HandleFunc("POST /sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("GET /sessions/{id}/export", s.handleExport)
	mux.HandleFunc("POST /report", s.handleReport)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Talent Screening Agent",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /sessions":                      "Start a screening session",
			"DELETE /sessions/{id}":               "Discard a session",
			"POST /sessions/{id}/job-description": "Upload a job description (multipart field 'file')",
			"POST /sessions/{id}/resumes":         "Upload and evaluate resumes (multipart field 'files')",
			"POST /sessions/{id}/evaluate":        "Evaluate raw resume text",
			"GET /sessions/{id}/ranking":          "Get ranked candidates",
			"POST /sessions/{id}/reset":           "Clear evaluated candidates",
			"GET /sessions/{id}/export":           "Download the ranking as an Excel workbook",
			"POST /report":                        "Render a candidate report as PDF",
			"GET /health":                         "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	log.Printf("Created session %s", sess.ID)

	s.respondJSON(w, http.StatusCreated, map[string]string{
		"session_id": sess.ID.String(),
		"created_at": sess.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the {id} path value, writing a 404 when unknown
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

func (s *Server) handleJobDescription(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		s.respondError(w, http.StatusBadRequest, "exactly one job description 'file' is required")
		return
	}

	doc, err := readUpload(files[0])
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	jd, err := s.agent.LoadJobDescription(sess, doc)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, jd)
}

func (s *Server) handleResumes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.respondError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	docs := make([]ingestion.Document, 0, len(files))
	for _, fileHeader := range files {
		doc, err := readUpload(fileHeader)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		docs = append(docs, doc)
	}

	batch, err := s.agent.ProcessDocuments(r.Context(), sess, docs)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, batch)
}

func (s *Server) handleEvaluateText(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req models.EvaluateTextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.agent.EvaluateText(r.Context(), sess, req.Name, req.ResumeText)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	s.respondJSON(w, http.StatusOK, models.RankingResponse{
		SessionID:      sess.ID.String(),
		JobDescription: sess.JobDescription(),
		Candidates:     sess.Ranked(),
		Timestamp:      s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	sess.Reset()
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Evaluations cleared",
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="candidate_ranking.xlsx"`)
	if err := export.WriteExcel(export.NewDashboard(sess, s.now()), w); err != nil {
		log.Printf("Failed to export session %s: %v", sess.ID, err)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var fields models.ReportFields
	if err := decodeJSON(w, r, &fields); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := fields.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	pdf, err := s.renderer.Render(fields)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(fields.Name)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("Failed to write report: %v", err)
	}
}

// readUpload reads an uploaded file into memory
func readUpload(fileHeader *multipart.FileHeader) (ingestion.Document, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return ingestion.Document{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return ingestion.Document{}, fmt.Errorf("failed to read uploaded file %s: %w", fileHeader.Filename, err)
	}
	return ingestion.Document{Name: fileHeader.Filename, Content: content}, nil
}

// decodeJSON decodes a size-limited JSON request body
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusFor maps extraction failures to a client error
func statusFor(err error) int {
	var extractErr *ingestion.ExtractionError
	if errors.As(err, &extractErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
