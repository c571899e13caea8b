package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"scoreahack/pkg/errors"
	"scoreahack/pkg/models"
	"scoreahack/pkg/pipeline"
)

// maxRequestBody bounds POST bodies; ideas are at most a few kilobytes
const maxRequestBody = 64 << 10

// AnalyzeRequest selects exactly one kind of input
type AnalyzeRequest struct {
	ID   string `json:"id,omitempty"`
	URL  string `json:"url,omitempty"`
	Idea string `json:"idea,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrorTypeValidation, err, "invalid request body"))
		return
	}

	result, err := Dispatch(r.Context(), s.analyzer, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Dispatch validates req and runs the matching analysis
func Dispatch(ctx context.Context, analyzer Analyzer, req AnalyzeRequest) (*models.Analysis, error) {
	set := 0
	for _, v := range []string{req.ID, req.URL, req.Idea} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New(errors.ErrorTypeValidation, "exactly one of id, url or idea is required")
	}

	switch {
	case strings.TrimSpace(req.Idea) != "":
		if err := pipeline.ValidateIdea(req.Idea); err != nil {
			return nil, err
		}
		return analyzer.AnalyzeText(ctx, req.Idea)
	case strings.TrimSpace(req.URL) != "":
		return analyzer.AnalyzeURL(ctx, req.URL)
	default:
		id, err := pipeline.ProjectID(req.ID)
		if err != nil {
			return nil, err
		}
		return analyzer.Analyze(ctx, id)
	}
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id, err := pipeline.ProjectID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	project, err := s.source.FetchProject(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.writeError(w, errors.New(errors.ErrorTypeValidation, "query parameter q is required"))
		return
	}
	results := s.source.Search(r.Context(), q)
	if results == nil {
		results = []models.SearchCandidate{}
	}
	writeJSON(w, http.StatusOK, results)
}

// StatusFor maps a pipeline or client error to an HTTP status
func StatusFor(err error) int {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, errors.ErrProjectNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrDescriptionTooShort):
		return http.StatusUnprocessableEntity
	}

	switch errors.TypeOf(err) {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case errors.ErrorTypeNetwork, errors.ErrorTypeServerError, errors.ErrorTypeParsing:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Type: string(errors.TypeOf(err))})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
