package model

import "time"

// EventKind identifies a creation event forwarded to the notifier.
type EventKind string

const (
	EventNewUser    EventKind = "new_user"
	EventNewRelease EventKind = "new_release"
)

// Event is a fire-and-forget notice about a creation event. Mailbox is the
// fixed delivery destination; Payload is a compact view of the entity that
// triggered the event.
type Event struct {
	Kind      EventKind              `json:"kind"`
	Mailbox   string                 `json:"mailbox"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"createdAt"`
}
