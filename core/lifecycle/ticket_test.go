package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"kedoo/core/lifecycle"
	"kedoo/core/state"
	"kedoo/model"
	"kedoo/store"
)

func newTicketEngine(t *testing.T) (*lifecycle.TicketEngine, *state.AppState) {
	t.Helper()
	s := state.New(store.NewMemoryStore(), state.AdminSeed{
		ID: "admin-001", Email: "moder@olprod.ru", Password: "zzzz-2014", Name: "Moderator",
	})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return lifecycle.NewTicketEngine(s), s
}

func ticketUser() *model.User {
	return &model.User{ID: "artist-1", Email: "artist@example.com", Name: "Artist One"}
}

func TestTicketScenario(t *testing.T) {
	engine, s := newTicketEngine(t)
	ctx := context.Background()

	ticket, err := engine.CreateTicket(ctx, ticketUser(), "Payout", "Where is my payout?")
	if err != nil {
		t.Fatalf("CreateTicket returned error: %v", err)
	}
	if ticket.Status != model.TicketOpen {
		t.Fatalf("new ticket must be open, got %s", ticket.Status)
	}
	if ticket.UserName != "Artist One" {
		t.Fatalf("submitter name not denormalized, got %q", ticket.UserName)
	}
	if ticket.AnsweredAt != nil {
		t.Fatal("new ticket must not carry an answer timestamp")
	}

	if err := engine.Respond(ctx, adminActor, ticket.ID, "Next Friday."); err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	got, ok := s.TicketByID(ticket.ID)
	if !ok {
		t.Fatal("ticket vanished")
	}
	if got.Status != model.TicketAnswered || got.Response != "Next Friday." {
		t.Fatalf("unexpected ticket after answer: %+v", got)
	}
	if got.AnsweredAt == nil {
		t.Fatal("answeredAt must be set together with the response")
	}
}

func TestCreateTicketRequiresSubjectAndMessage(t *testing.T) {
	engine, s := newTicketEngine(t)
	ctx := context.Background()

	if _, err := engine.CreateTicket(ctx, ticketUser(), "", "body"); !errors.Is(err, lifecycle.ErrEmptyTicket) {
		t.Fatalf("expected ErrEmptyTicket for blank subject, got %v", err)
	}
	if _, err := engine.CreateTicket(ctx, ticketUser(), "subject", ""); !errors.Is(err, lifecycle.ErrEmptyTicket) {
		t.Fatalf("expected ErrEmptyTicket for blank message, got %v", err)
	}
	if len(s.Tickets()) != 0 {
		t.Fatal("refused tickets must not persist")
	}
}

func TestRespondIsAdminOnly(t *testing.T) {
	engine, s := newTicketEngine(t)
	ctx := context.Background()

	ticket, _ := engine.CreateTicket(ctx, ticketUser(), "Subject", "Message")
	if err := engine.Respond(ctx, artistActor, ticket.ID, "self-answer"); !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	got, _ := s.TicketByID(ticket.ID)
	if got.Status != model.TicketOpen || got.Response != "" {
		t.Fatalf("refused answer must not mutate: %+v", got)
	}
}

func TestRespondOncePerTicket(t *testing.T) {
	engine, s := newTicketEngine(t)
	ctx := context.Background()

	ticket, _ := engine.CreateTicket(ctx, ticketUser(), "Subject", "Message")
	if err := engine.Respond(ctx, adminActor, ticket.ID, "first"); err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if err := engine.Respond(ctx, adminActor, ticket.ID, "second"); !errors.Is(err, lifecycle.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	got, _ := s.TicketByID(ticket.ID)
	if got.Response != "first" {
		t.Fatalf("second answer must not overwrite the first, got %q", got.Response)
	}
}

func TestRespondRequiresText(t *testing.T) {
	engine, _ := newTicketEngine(t)
	ctx := context.Background()

	ticket, _ := engine.CreateTicket(ctx, ticketUser(), "Subject", "Message")
	if err := engine.Respond(ctx, adminActor, ticket.ID, ""); !errors.Is(err, lifecycle.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestRespondToMissingTicketIsNoOp(t *testing.T) {
	engine, _ := newTicketEngine(t)
	if err := engine.Respond(context.Background(), adminActor, "no-such-id", "hello"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
