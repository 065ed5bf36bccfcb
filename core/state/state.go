// Package state holds the in-memory collections and mirrors every
// mutation back to the snapshot store. The store is read once at startup;
// afterwards the in-memory copy is authoritative and each successful
// mutation rewrites the corresponding slot in full.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"kedoo/model"
	"kedoo/store"
)

var (
	// ErrNotFound reports that an entity id is absent from its collection.
	ErrNotFound = errors.New("entity not found")
	// ErrEmailTaken reports a duplicate email at registration time.
	ErrEmailTaken = errors.New("email already registered")
)

// AdminSeed describes the distinguished administrator account injected on
// load when the persisted user collection lacks it.
type AdminSeed struct {
	ID       string
	Email    string
	Password string
	Name     string
}

// AppState is the process-wide application state: one logical writer,
// guarded by a single lock. It is passed explicitly into the lifecycle
// engines rather than living in a package-level global.
type AppState struct {
	mu    sync.Mutex
	st    store.Store
	admin AdminSeed

	users    []model.User
	releases []model.Release
	tickets  []model.Ticket
	theme    string
}

// New creates an AppState over the given store. Call Load before use.
func New(st store.Store, admin AdminSeed) *AppState {
	return &AppState{st: st, admin: admin, theme: "light"}
}

// Load reads all slots from the store. Missing slots default to empty
// collections; the administrator account is injected ahead of the rest of
// the user collection if a previously persisted copy lacks it.
func (s *AppState) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = []model.User{}
	s.releases = []model.Release{}
	s.tickets = []model.Ticket{}

	if err := loadSlot(ctx, s.st, store.SlotUsers, &s.users); err != nil {
		return err
	}
	if err := loadSlot(ctx, s.st, store.SlotReleases, &s.releases); err != nil {
		return err
	}
	if err := loadSlot(ctx, s.st, store.SlotTickets, &s.tickets); err != nil {
		return err
	}

	raw, ok, err := s.st.Load(ctx, store.SlotTheme)
	if err != nil {
		return fmt.Errorf("failed to load slot %s: %w", store.SlotTheme, err)
	}
	if ok && (raw == "light" || raw == "dark") {
		s.theme = raw
	}

	if !s.hasAdminLocked() {
		admin := model.User{
			ID:        s.admin.ID,
			Email:     s.admin.Email,
			Password:  s.admin.Password,
			Name:      s.admin.Name,
			IsAdmin:   true,
			CreatedAt: time.Now(),
		}
		s.users = append([]model.User{admin}, s.users...)
	}
	return nil
}

func loadSlot(ctx context.Context, st store.Store, slot string, dst interface{}) error {
	raw, ok, err := st.Load(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to load slot %s: %w", slot, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode slot %s: %w", slot, err)
	}
	return nil
}

func (s *AppState) hasAdminLocked() bool {
	for _, u := range s.users {
		if u.Email == s.admin.Email {
			return true
		}
	}
	return false
}

func (s *AppState) save(ctx context.Context, slot string, collection interface{}) error {
	data, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to encode slot %s: %w", slot, err)
	}
	if err := s.st.Save(ctx, slot, string(data)); err != nil {
		return err
	}
	return nil
}

// --- users ---

// Users returns a copy of the user collection.
func (s *AppState) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}

// UserByID looks a user up by id.
func (s *AppState) UserByID(id string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// UserByEmail looks a user up by email.
func (s *AppState) UserByEmail(email string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return model.User{}, false
}

// AddUser appends a user after a point-in-time email uniqueness check.
// The check runs under the state lock, so under the single-writer model
// it cannot race with another registration in this process.
func (s *AppState) AddUser(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	next := make([]model.User, len(s.users), len(s.users)+1)
	copy(next, s.users)
	next = append(next, user)
	if err := s.save(ctx, store.SlotUsers, next); err != nil {
		return err
	}
	s.users = next
	return nil
}

// --- releases ---

// Releases returns a deep copy of the release collection.
func (s *AppState) Releases() []model.Release {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Release, len(s.releases))
	for i := range s.releases {
		out[i] = cloneRelease(s.releases[i])
	}
	return out
}

// ReleaseByID looks a release up by id.
func (s *AppState) ReleaseByID(id string) (model.Release, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.releases {
		if s.releases[i].ID == id {
			return cloneRelease(s.releases[i]), true
		}
	}
	return model.Release{}, false
}

// AddRelease appends a release and persists the collection.
func (s *AppState) AddRelease(ctx context.Context, release model.Release) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]model.Release, len(s.releases), len(s.releases)+1)
	for i := range s.releases {
		next[i] = cloneRelease(s.releases[i])
	}
	next = append(next, cloneRelease(release))
	if err := s.save(ctx, store.SlotReleases, next); err != nil {
		return err
	}
	s.releases = next
	return nil
}

// UpdateRelease applies fn to a copy of the release under the state lock,
// refreshes updatedAt, persists the whole collection and only then swaps
// the in-memory copy. A failing fn or a failing save leaves the state
// untouched. Returns ErrNotFound when id is absent.
func (s *AppState) UpdateRelease(ctx context.Context, id string, fn func(*model.Release) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.releases {
		if s.releases[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	updated := cloneRelease(s.releases[idx])
	if err := fn(&updated); err != nil {
		return err
	}
	updated.UpdatedAt = time.Now()

	next := make([]model.Release, len(s.releases))
	for i := range s.releases {
		next[i] = cloneRelease(s.releases[i])
	}
	next[idx] = updated

	if err := s.save(ctx, store.SlotReleases, next); err != nil {
		return err
	}
	s.releases = next
	return nil
}

// RemoveRelease deletes a release. Removing an absent id is a no-op.
func (s *AppState) RemoveRelease(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Release, 0, len(s.releases))
	found := false
	for i := range s.releases {
		if s.releases[i].ID == id {
			found = true
			continue
		}
		next = append(next, cloneRelease(s.releases[i]))
	}
	if !found {
		return nil
	}
	if err := s.save(ctx, store.SlotReleases, next); err != nil {
		return err
	}
	s.releases = next
	return nil
}

func cloneRelease(r model.Release) model.Release {
	out := r
	out.Tracks = make([]model.Track, len(r.Tracks))
	copy(out.Tracks, r.Tracks)
	return out
}

// --- tickets ---

// Tickets returns a copy of the ticket collection.
func (s *AppState) Tickets() []model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out
}

// TicketByID looks a ticket up by id.
func (s *AppState) TicketByID(id string) (model.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return model.Ticket{}, false
}

// AddTicket appends a ticket and persists the collection.
func (s *AppState) AddTicket(ctx context.Context, ticket model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]model.Ticket, len(s.tickets), len(s.tickets)+1)
	copy(next, s.tickets)
	next = append(next, ticket)
	if err := s.save(ctx, store.SlotTickets, next); err != nil {
		return err
	}
	s.tickets = next
	return nil
}

// UpdateTicket applies fn to a copy of the ticket, persists, then swaps.
// Returns ErrNotFound when id is absent.
func (s *AppState) UpdateTicket(ctx context.Context, id string, fn func(*model.Ticket) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	updated := s.tickets[idx]
	if err := fn(&updated); err != nil {
		return err
	}

	next := make([]model.Ticket, len(s.tickets))
	copy(next, s.tickets)
	next[idx] = updated

	if err := s.save(ctx, store.SlotTickets, next); err != nil {
		return err
	}
	s.tickets = next
	return nil
}

// --- theme ---

// Theme returns the persisted theme preference.
func (s *AppState) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// ToggleTheme flips the theme between light and dark and persists it.
func (s *AppState) ToggleTheme(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := "dark"
	if s.theme == "dark" {
		next = "light"
	}
	if err := s.st.Save(ctx, store.SlotTheme, next); err != nil {
		return s.theme, err
	}
	s.theme = next
	return next, nil
}
