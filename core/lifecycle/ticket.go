package lifecycle

import (
	"context"
	"errors"
	"time"

	"kedoo/core/policy"
	"kedoo/core/state"
	"kedoo/model"
)

var (
	// ErrEmptyTicket reports a ticket with a blank subject or message.
	ErrEmptyTicket = errors.New("subject and message are required")
	// ErrEmptyResponse reports an answer attempt with no text.
	ErrEmptyResponse = errors.New("response text is required")
	// ErrAlreadyAnswered reports a second answer to the same ticket.
	ErrAlreadyAnswered = errors.New("ticket is already answered")
)

// TicketEngine drives the two-step ticket state machine: open, answered.
type TicketEngine struct {
	st *state.AppState
}

// NewTicketEngine creates a ticket engine over the application state.
func NewTicketEngine(st *state.AppState) *TicketEngine {
	return &TicketEngine{st: st}
}

// CreateTicket opens a ticket for the actor. The submitter's name is
// denormalized onto the ticket at creation time.
func (e *TicketEngine) CreateTicket(ctx context.Context, user *model.User, subject, message string) (model.Ticket, error) {
	if subject == "" || message == "" {
		return model.Ticket{}, ErrEmptyTicket
	}
	ticket := model.NewTicket(user, subject, message)
	if err := e.st.AddTicket(ctx, *ticket); err != nil {
		return model.Ticket{}, err
	}
	return *ticket, nil
}

// Respond answers an open ticket. Administrator only, once per ticket:
// response, answeredAt and the status flip are one atomic update.
func (e *TicketEngine) Respond(ctx context.Context, actor policy.Actor, id, response string) error {
	err := e.st.UpdateTicket(ctx, id, func(t *model.Ticket) error {
		if actor.Role != policy.RoleAdmin {
			return ErrForbidden
		}
		if t.Status != model.TicketOpen {
			return ErrAlreadyAnswered
		}
		if response == "" {
			return ErrEmptyResponse
		}
		now := time.Now()
		t.Response = response
		t.Status = model.TicketAnswered
		t.AnsweredAt = &now
		return nil
	})
	if errors.Is(err, state.ErrNotFound) {
		return nil
	}
	return err
}
