package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one moderation decision: who approved or rejected
// which release, when, and with what reason.
type AuditEntry struct {
	ID          string    `json:"id"`
	ModeratorID string    `json:"moderatorId"`
	ReleaseID   string    `json:"releaseId"`
	Verdict     string    `json:"verdict"` // approved or rejected
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewAuditEntry creates an audit entry stamped with the current time.
func NewAuditEntry(moderatorID, releaseID, verdict, reason string) AuditEntry {
	return AuditEntry{
		ID:          uuid.New().String(),
		ModeratorID: moderatorID,
		ReleaseID:   releaseID,
		Verdict:     verdict,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
}
