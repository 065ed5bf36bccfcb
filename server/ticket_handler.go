package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"kedoo/core/policy"
	"kedoo/logger"
)

// GetTicketsHandler returns the tickets visible to the current actor.
func (h *APIHandler) GetTicketsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)
	visible := policy.VisibleTickets(actor, h.st.Tickets())
	writeJSON(w, http.StatusOK, visible)
}

// CreateTicketHandler opens a support ticket for the current user.
func (h *APIHandler) CreateTicketHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ticket, err := h.tickets.CreateTicket(r.Context(), &user, req.Subject, req.Message)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	logger.Info("[Ticket] created",
		logger.String("ticketId", ticket.ID),
		logger.String("userId", user.ID))
	writeJSON(w, http.StatusCreated, ticket)
}

// RespondTicketHandler stores the administrator's answer on an open ticket.
func (h *APIHandler) RespondTicketHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)
	id := mux.Vars(r)["id"]

	var req struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.tickets.Respond(r.Context(), actor, id, req.Response); err != nil {
		writeEngineError(w, err)
		return
	}

	logger.Info("[Ticket] answered",
		logger.String("ticketId", id),
		logger.String("moderatorId", user.ID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
