// Package store persists application collections as named snapshot slots.
// Each slot holds one serialized collection (or a scalar, for the theme);
// writers always replace the whole slot, there are no delta writes.
package store

import "context"

// Slot names. The kedoo_ prefix keeps slots recognizable in shared
// backends and matches what earlier deployments of the product used.
const (
	SlotUsers    = "kedoo_users"
	SlotReleases = "kedoo_releases"
	SlotTickets  = "kedoo_tickets"
	SlotTheme    = "kedoo_theme"
)

// Slots lists every slot the application reads at startup.
var Slots = []string{SlotUsers, SlotReleases, SlotTickets, SlotTheme}

// Store is a key-value string store keyed by slot name.
type Store interface {
	// Load reads a slot. ok is false when the slot has never been written.
	Load(ctx context.Context, slot string) (value string, ok bool, err error)
	// Save overwrites a slot with a full snapshot.
	Save(ctx context.Context, slot, value string) error
}
