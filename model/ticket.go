package model

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketAnswered TicketStatus = "answered"
	TicketClosed   TicketStatus = "closed"
)

// Ticket is a support request raised by an artist. UserName is a snapshot
// of the submitter's name at creation time; Response and AnsweredAt are set
// together, once, when an administrator answers.
type Ticket struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	UserName   string       `json:"userName"`
	Subject    string       `json:"subject"`
	Message    string       `json:"message"`
	Response   string       `json:"response,omitempty"`
	Status     TicketStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	AnsweredAt *time.Time   `json:"answeredAt,omitempty"`
}

// NewTicket creates an open ticket for the given user.
func NewTicket(user *User, subject, message string) *Ticket {
	return &Ticket{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		UserName:  user.Name,
		Subject:   subject,
		Message:   message,
		Status:    TicketOpen,
		CreatedAt: time.Now(),
	}
}
