// Package server exposes the budget data and summary API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/practicehq/planbudget/pkg/budget"
	"github.com/practicehq/planbudget/pkg/model"
	"github.com/practicehq/planbudget/pkg/storage"
)

const requestTimeout = 10 * time.Second

// Server provides the clinic budget REST API.
type Server struct {
	store   storage.Storage
	engine  *budget.Engine
	monitor *budget.Monitor
	mux     *http.ServeMux
	logger  *slog.Logger
}

// NewServer creates an API server. monitor may be nil when alerting is not
// configured.
func NewServer(store storage.Storage, engine *budget.Engine, monitor *budget.Monitor, logger *slog.Logger) *Server {
	s := &Server{
		store:   store,
		engine:  engine,
		monitor: monitor,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/v1/clients/{id}/budget-items", s.handleListItems)
	s.mux.HandleFunc("POST /api/v1/clients/{id}/budget-items", s.handleUpsertItem)
	s.mux.HandleFunc("DELETE /api/v1/clients/{id}/budget-items/{code}", s.handleDeleteItem)

	s.mux.HandleFunc("GET /api/v1/clients/{id}/budget-settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/v1/clients/{id}/budget-settings", s.handlePutSettings)

	s.mux.HandleFunc("GET /api/v1/clients/{id}/sessions", s.handleListSessions)
	s.mux.HandleFunc("POST /api/v1/clients/{id}/sessions", s.handleCreateSession)

	s.mux.HandleFunc("GET /api/v1/clients/{id}/budget/summary", s.handleSummary)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	items, err := s.store.ListBudgetItems(ctx, r.PathValue("id"))
	if err != nil {
		s.internalError(w, "list budget items", err)
		return
	}
	if items == nil {
		items = []model.BudgetItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleUpsertItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var item model.BudgetItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item.ClientID = r.PathValue("id")
	if item.ItemCode == "" {
		writeError(w, http.StatusBadRequest, "item_code is required")
		return
	}

	if err := s.store.UpsertBudgetItem(ctx, &item); err != nil {
		s.internalError(w, "upsert budget item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	err := s.store.DeleteBudgetItem(ctx, r.PathValue("id"), r.PathValue("code"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "budget item not found")
		return
	}
	if err != nil {
		s.internalError(w, "delete budget item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	settings, err := s.store.GetBudgetSettings(ctx, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no active plan")
		return
	}
	if err != nil {
		s.internalError(w, "get budget settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var settings model.BudgetSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	settings.ClientID = r.PathValue("id")
	if settings.StartDate.IsZero() || settings.EndDate.IsZero() {
		writeError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}
	if settings.EndDate.Before(settings.StartDate) {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date")
		return
	}
	settings.IsActive = true

	if err := s.store.SetBudgetSettings(ctx, &settings); err != nil {
		s.internalError(w, "set budget settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	sessions, err := s.store.ListSessions(ctx, r.PathValue("id"))
	if err != nil {
		s.internalError(w, "list sessions", err)
		return
	}
	if sessions == nil {
		sessions = []model.SessionRecord{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var session model.SessionRecord
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session.ClientID = r.PathValue("id")
	if session.SessionDate.IsZero() {
		writeError(w, http.StatusBadRequest, "session_date is required")
		return
	}

	if err := s.store.RecordSession(ctx, &session); err != nil {
		s.internalError(w, "record session", err)
		return
	}

	// A completed session changes utilization; re-check thresholds.
	if s.monitor != nil && session.Status == model.SessionCompleted {
		summary, err := s.engine.GetBudgetSummary(ctx, session.ClientID, model.DateOf(time.Now()))
		if err != nil {
			s.logger.Error("post-session budget check", "client", session.ClientID, "error", err)
		} else {
			s.monitor.Check(ctx, summary)
		}
	}

	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	today := model.DateOf(time.Now())
	if q := r.URL.Query().Get("today"); q != "" {
		parsed, err := model.ParseDate(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid today parameter")
			return
		}
		today = parsed
	}

	summary, err := s.engine.GetBudgetSummary(ctx, r.PathValue("id"), today)
	if err != nil {
		s.internalError(w, "compute budget summary", err)
		return
	}
	if summary == nil {
		writeError(w, http.StatusNotFound, "no active plan")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
