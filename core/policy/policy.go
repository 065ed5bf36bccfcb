// Package policy computes, for a given actor, which releases and tickets
// are visible and which actions are permitted. All functions are pure;
// the lifecycle engine re-applies them on every transition so a caller
// outside the UI cannot reach an action the UI would never have shown.
package policy

import "kedoo/model"

// Role is the actor's role, modelled as an explicit two-variant enum
// rather than a boolean threaded through unrelated code.
type Role int

const (
	RoleArtist Role = iota
	RoleAdmin
)

// RoleOf derives the role from a user record.
func RoleOf(u *model.User) Role {
	if u != nil && u.IsAdmin {
		return RoleAdmin
	}
	return RoleArtist
}

// Actor is the identity a policy decision is made for.
type Actor struct {
	UserID string
	Role   Role
}

// ActorFor builds an Actor from a user record.
func ActorFor(u *model.User) Actor {
	return Actor{UserID: u.ID, Role: RoleOf(u)}
}

// VisibleReleases returns the subset of releases the actor may see in the
// catalog view. Administrators see the moderation queue; artists see their
// own non-draft releases (drafts have their own view, see VisibleDrafts).
func VisibleReleases(actor Actor, releases []model.Release) []model.Release {
	out := make([]model.Release, 0, len(releases))
	for _, r := range releases {
		if actor.Role == RoleAdmin {
			if r.Status == model.StatusModeration {
				out = append(out, r)
			}
			continue
		}
		if r.UserID == actor.UserID && r.Status != model.StatusDraft {
			out = append(out, r)
		}
	}
	return out
}

// VisibleDrafts returns the actor's own drafts. Administrators have no
// drafts view.
func VisibleDrafts(actor Actor, releases []model.Release) []model.Release {
	out := make([]model.Release, 0)
	if actor.Role == RoleAdmin {
		return out
	}
	for _, r := range releases {
		if r.UserID == actor.UserID && r.Status == model.StatusDraft {
			out = append(out, r)
		}
	}
	return out
}

// VisibleTickets returns the subset of tickets the actor may see.
// Administrators see all tickets; artists see only their own.
func VisibleTickets(actor Actor, tickets []model.Ticket) []model.Ticket {
	if actor.Role == RoleAdmin {
		out := make([]model.Ticket, len(tickets))
		copy(out, tickets)
		return out
	}
	out := make([]model.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.UserID == actor.UserID {
			out = append(out, t)
		}
	}
	return out
}

// CanEdit reports whether the actor may edit the release's fields.
// Only the owning artist may, and only while the release is in draft or
// rejected (editing a rejected release implicitly reopens it).
func CanEdit(actor Actor, r *model.Release) bool {
	if actor.Role == RoleAdmin || r.UserID != actor.UserID {
		return false
	}
	return r.Status == model.StatusDraft || r.Status == model.StatusRejected
}

// CanSubmit reports whether the actor may send the release to moderation.
// Field-level completeness is checked separately by the lifecycle engine.
func CanSubmit(actor Actor, r *model.Release) bool {
	if actor.Role == RoleAdmin || r.UserID != actor.UserID {
		return false
	}
	return r.Status == model.StatusDraft || r.Status == model.StatusRejected
}

// CanModerate reports whether the actor may approve or reject the release.
func CanModerate(actor Actor, r *model.Release) bool {
	return actor.Role == RoleAdmin && r.Status == model.StatusModeration
}

// CanDelete reports whether the actor may delete the release. Only the
// owner may, never the administrator, and never while the release is
// under moderation.
func CanDelete(actor Actor, r *model.Release) bool {
	if actor.Role == RoleAdmin || r.UserID != actor.UserID {
		return false
	}
	switch r.Status {
	case model.StatusDraft, model.StatusApproved, model.StatusRejected:
		return true
	default:
		return false
	}
}

// CanViewRelease reports whether the actor may read the release at all.
func CanViewRelease(actor Actor, r *model.Release) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return r.UserID == actor.UserID
}

// CanRespond reports whether the actor may answer the ticket. Answers are
// admin-only and a ticket is answered at most once.
func CanRespond(actor Actor, t *model.Ticket) bool {
	return actor.Role == RoleAdmin && t.Status == model.TicketOpen
}

// CanViewTicket reports whether the actor may read the ticket.
func CanViewTicket(actor Actor, t *model.Ticket) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return t.UserID == actor.UserID
}
