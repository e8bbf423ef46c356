// Package web serves the browser presentation shell: a form page that
// resolves a company's ownership structure, renders the diagram in place via
// mermaid, shows the expandable list, and prints to PDF from a new window.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jsterling/ownerchart/pkg/errors"
	"github.com/jsterling/ownerchart/pkg/history"
	"github.com/jsterling/ownerchart/pkg/ownership"
	"github.com/jsterling/ownerchart/pkg/render/diagram"
)

// Resolver fetches ownership structures. *ownership.Client satisfies this;
// tests substitute fakes.
type Resolver interface {
	Resolve(ctx context.Context, companyName string, refresh bool) (*ownership.Response, error)
}

// Server is the web UI HTTP server.
type Server struct {
	resolver Resolver
	store    history.Store // optional; nil disables history recording
	logger   *log.Logger
}

// NewServer creates a Server. store may be nil.
func NewServer(resolver Resolver, store history.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{resolver: resolver, store: store, logger: logger}
}

// Handler builds the chi router for the web UI.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/api/ownership", s.handleOwnership)
	r.Get("/healthz", s.handleHealth)

	return r
}

// ownershipRequest is the JSON body accepted by POST /api/ownership.
type ownershipRequest struct {
	CompanyName string `json:"company_name"`
	Refresh     bool   `json:"refresh,omitempty"`
}

// ownershipResult is the JSON response: the raw tree for the list view plus
// the mermaid diagram description for in-place rendering. The two views are
// independent projections of the same tree; the browser rebuilds both on
// every result.
type ownershipResult struct {
	RootCompany    *ownership.Node `json:"root_company"`
	TotalNodes     int             `json:"total_nodes"`
	ProcessingTime string          `json:"processing_time"`
	Errors         []string        `json:"errors"`
	Diagram        string          `json:"diagram"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		s.logger.Error("render index", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleOwnership(w http.ResponseWriter, r *http.Request) {
	var req ownershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := errors.ValidateCompanyName(req.CompanyName); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.UserMessage(err))
		return
	}

	started := time.Now()
	resp, err := s.resolver.Resolve(r.Context(), req.CompanyName, req.Refresh)
	if err != nil {
		s.writeError(w, statusFor(err), errors.UserMessage(err))
		return
	}
	s.logger.Info("resolved ownership structure",
		"company", req.CompanyName,
		"nodes", resp.TotalNodes,
		"elapsed", time.Since(started).Round(time.Millisecond))

	desc, err := diagram.Encode(resp.RootCompany)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, errors.UserMessage(err))
		return
	}
	if desc.Truncated > 0 {
		s.logger.Warn("ownership tree contains cycles", "truncated", desc.Truncated)
	}

	if s.store != nil {
		if err := s.store.Add(r.Context(), history.NewEntry(req.CompanyName, resp)); err != nil {
			s.logger.Warn("record history", "err", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ownershipResult{
		RootCompany:    resp.RootCompany,
		TotalNodes:     resp.TotalNodes,
		ProcessingTime: ownership.FormatProcessingTime(resp.ProcessingTime),
		Errors:         resp.Errors,
		Diagram:        desc.Mermaid(),
	})
}

// writeError mirrors the backend's error convention: a JSON body with a
// detail string the page shows verbatim.
func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// statusFor maps resolver errors to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidQuery:
		return http.StatusBadRequest
	case errors.ErrCodeCompanyNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
