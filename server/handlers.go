package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"kedoo/config"
	"kedoo/core/events"
	"kedoo/core/lifecycle"
	"kedoo/core/state"
	"kedoo/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	st        *state.AppState
	releases  *lifecycle.Engine
	tickets   *lifecycle.TicketEngine
	notifier  lifecycle.Notifier
	auditRepo *repository.AuditRepository
	hub       *events.Hub
	cfg       *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	st *state.AppState,
	releases *lifecycle.Engine,
	tickets *lifecycle.TicketEngine,
	notifier lifecycle.Notifier,
	auditRepo *repository.AuditRepository,
	hub *events.Hub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		st:        st,
		releases:  releases,
		tickets:   tickets,
		notifier:  notifier,
		auditRepo: auditRepo,
		hub:       hub,
		cfg:       cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeEngineError maps engine sentinels onto HTTP statuses. Anything
// unexpected is a 500 with a generic body.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrForbidden):
		http.Error(w, "Action not permitted", http.StatusForbidden)
	case errors.Is(err, lifecycle.ErrBadTransition),
		errors.Is(err, lifecycle.ErrAlreadyAnswered):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, state.ErrEmailTaken):
		http.Error(w, "Email already registered", http.StatusConflict)
	case errors.Is(err, lifecycle.ErrPayloadTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, lifecycle.ErrIncomplete),
		errors.Is(err, lifecycle.ErrEmptyReason),
		errors.Is(err, lifecycle.ErrEmptyTicket),
		errors.Is(err, lifecycle.ErrEmptyResponse):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
