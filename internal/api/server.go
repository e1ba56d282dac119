// Package api exposes the vault over a small read-mostly HTTP surface plus a
// single ingestion endpoint, for dashboards and fleet agents that cannot
// shell out to the CLI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"crashvault/internal/bootstrap/logging"
	domainvault "crashvault/internal/domain/vault"
	"crashvault/internal/errs"
	vaultuc "crashvault/internal/usecase/vault"
)

type Server struct {
	svc  *vaultuc.Service
	http *http.Server
}

func NewServer(svc *vaultuc.Service, addr string) *Server {
	s := &Server{svc: svc}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Route("/issues", func(r chi.Router) {
		r.Get("/", s.handleListIssues)
		r.Get("/{id}", s.handleGetIssue)
	})
	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.handleListEvents)
		r.Post("/", s.handleIngest)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) ListenAndServe(ctx context.Context) error {
	logging.Info(ctx, "http server listening", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errs.Wrap(err, "serve http")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"issues_by_status": stats.IssuesByStatus,
		"events_by_level":  stats.EventsByLevel,
	})
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	issues, err := s.svc.ListIssues(r.Context(), vaultuc.ListIssuesInput{
		Status:     q.Get("status"),
		SortKey:    q.Get("sort"),
		Descending: q.Get("desc") == "true",
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if issues == nil {
		issues = []domainvault.Issue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "issue id must be an integer"})
		return
	}
	detail, err := s.svc.GetIssue(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if detail.Events == nil {
		detail.Events = []domainvault.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"issue":  detail.Issue,
		"events": detail.Events,
	})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := vaultuc.ListEventsInput{}
	if raw := q.Get("issue"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "issue must be an integer"})
			return
		}
		input.IssueID = &id
	}
	input.Limit, _ = strconv.Atoi(q.Get("limit"))
	input.Offset, _ = strconv.Atoi(q.Get("offset"))

	page, err := s.svc.ListEvents(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if page.Events == nil {
		page.Events = []domainvault.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": page.Events,
		"total":  page.Total,
	})
}

type ingestRequest struct {
	Message    string            `json:"message"`
	Stacktrace string            `json:"stacktrace"`
	Level      string            `json:"level"`
	Tags       []string          `json:"tags"`
	Context    map[string]string `json:"context"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	res, err := s.svc.AddEvent(r.Context(), vaultuc.AddEventInput{
		Message:    req.Message,
		Stacktrace: req.Stacktrace,
		Level:      req.Level,
		Tags:       req.Tags,
		Context:    req.Context,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"event_id":      res.EventID,
		"issue_id":      res.IssueID,
		"created_issue": res.CreatedIssue,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainvault.ErrIssueNotFound), errors.Is(err, domainvault.ErrEventNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainvault.ErrInvalidStatus),
		errors.Is(err, domainvault.ErrInvalidSeverity),
		errors.Is(err, domainvault.ErrInvalidLevel):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
