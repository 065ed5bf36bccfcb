// Package lifecycle implements the release and ticket state machines.
// Every operation re-validates actor role, ownership and current state
// before mutating anything; handlers never get to bypass the checks.
package lifecycle

import (
	"context"
	"errors"

	"kedoo/core/policy"
	"kedoo/core/state"
	"kedoo/logger"
	"kedoo/model"
)

var (
	// ErrForbidden reports an action the actor's role or ownership does
	// not permit. Reachable only by callers bypassing the UI.
	ErrForbidden = errors.New("action not permitted")
	// ErrBadTransition reports a transition from the wrong state.
	ErrBadTransition = errors.New("invalid status transition")
	// ErrEmptyReason reports a reject without a rejection reason.
	ErrEmptyReason = errors.New("rejection reason is required")
)

// Notifier receives fire-and-forget creation notices. Implementations
// must return immediately; a slow or failing notifier never blocks or
// rolls back the transition that triggered it.
type Notifier interface {
	Notify(kind model.EventKind, payload map[string]interface{})
}

// AuditSink records moderation decisions. Best-effort: a failing sink is
// logged, never surfaced to the actor.
type AuditSink interface {
	RecordDecision(ctx context.Context, entry model.AuditEntry) error
}

// Engine drives release transitions against the application state.
type Engine struct {
	st            *state.AppState
	notifier      Notifier
	audit         AuditSink
	maxCoverBytes int64
	maxAudioBytes int64
}

// NewEngine creates a release lifecycle engine. notifier and audit may be
// nil when the corresponding side channel is not wired.
func NewEngine(st *state.AppState, notifier Notifier, audit AuditSink, maxCoverBytes, maxAudioBytes int64) *Engine {
	return &Engine{
		st:            st,
		notifier:      notifier,
		audit:         audit,
		maxCoverBytes: maxCoverBytes,
		maxAudioBytes: maxAudioBytes,
	}
}

// CreateReleaseInput carries the authoring form. When SubmitToModeration
// is set the release must already satisfy the submit gate.
type CreateReleaseInput struct {
	AlbumName          string        `json:"albumName"`
	ArtistName         string        `json:"artistName"`
	ReleaseDate        string        `json:"releaseDate"`
	OldReleaseDate     string        `json:"oldReleaseDate"`
	Genre              string        `json:"genre"`
	CoverImage         string        `json:"coverImage"`
	Tracks             []model.Track `json:"tracks"`
	SubmitToModeration bool          `json:"submitToModeration"`
}

// CreateRelease creates a release owned by the actor, either as a draft
// or directly in moderation. Only artists own releases.
func (e *Engine) CreateRelease(ctx context.Context, actor policy.Actor, input CreateReleaseInput) (model.Release, error) {
	if actor.Role != policy.RoleArtist {
		return model.Release{}, ErrForbidden
	}
	if err := e.checkCover(input.CoverImage); err != nil {
		return model.Release{}, err
	}
	if err := e.checkTracks(input.Tracks); err != nil {
		return model.Release{}, err
	}

	release := model.NewRelease(actor.UserID)
	release.AlbumName = input.AlbumName
	release.ArtistName = input.ArtistName
	release.ReleaseDate = input.ReleaseDate
	release.OldReleaseDate = input.OldReleaseDate
	release.Genre = input.Genre
	release.CoverImage = input.CoverImage
	if input.Tracks != nil {
		release.Tracks = input.Tracks
	}

	if input.SubmitToModeration {
		if err := validateForSubmission(release); err != nil {
			return model.Release{}, err
		}
		release.Status = model.StatusModeration
	}

	if err := e.st.AddRelease(ctx, *release); err != nil {
		return model.Release{}, err
	}

	e.emit(model.EventNewRelease, map[string]interface{}{
		"releaseId": release.ID,
		"album":     release.AlbumName,
		"artist":    release.ArtistName,
		"status":    string(release.Status),
	})
	return *release, nil
}

// UpdateRelease merges a field-update set into a draft or rejected
// release owned by the actor. With submit set, the result must pass the
// submit gate and goes to moderation; otherwise it lands back in draft
// (which is how a rejected release reopens for editing).
func (e *Engine) UpdateRelease(ctx context.Context, actor policy.Actor, id string, upd model.ReleaseUpdate, submit bool) error {
	err := e.st.UpdateRelease(ctx, id, func(r *model.Release) error {
		if !policy.CanEdit(actor, r) {
			return ErrForbidden
		}
		mergeUpdate(r, upd)
		if err := e.checkCover(r.CoverImage); err != nil {
			return err
		}
		if err := e.checkTracks(r.Tracks); err != nil {
			return err
		}
		if submit {
			if err := validateForSubmission(r); err != nil {
				return err
			}
			r.Status = model.StatusModeration
		} else {
			r.Status = model.StatusDraft
		}
		return nil
	})
	if errors.Is(err, state.ErrNotFound) {
		// Updates against an already-removed release are ignored.
		return nil
	}
	return err
}

// Submit sends a draft (or an edited rejected release) to moderation.
func (e *Engine) Submit(ctx context.Context, actor policy.Actor, id string) error {
	err := e.st.UpdateRelease(ctx, id, func(r *model.Release) error {
		if !policy.CanSubmit(actor, r) {
			if actor.Role == policy.RoleAdmin || r.UserID != actor.UserID {
				return ErrForbidden
			}
			return ErrBadTransition
		}
		if err := validateForSubmission(r); err != nil {
			return err
		}
		r.Status = model.StatusModeration
		return nil
	})
	if errors.Is(err, state.ErrNotFound) {
		return nil
	}
	return err
}

// ApproveInput carries the identifiers an administrator may assign at
// approval time. Empty values preserve whatever the release already has.
type ApproveInput struct {
	UPC        string            `json:"upc"`
	TrackISRCs map[string]string `json:"trackIsrcs"`
}

// Approve moves a release from moderation to approved, merging UPC and
// per-track ISRC values. The stale rejection reason from an earlier
// round, if any, is cleared.
func (e *Engine) Approve(ctx context.Context, actor policy.Actor, id string, input ApproveInput) error {
	err := e.st.UpdateRelease(ctx, id, func(r *model.Release) error {
		if actor.Role != policy.RoleAdmin {
			return ErrForbidden
		}
		if !policy.CanModerate(actor, r) {
			return ErrBadTransition
		}
		if input.UPC != "" {
			r.UPC = input.UPC
		}
		for i := range r.Tracks {
			if isrc := input.TrackISRCs[r.Tracks[i].ID]; isrc != "" {
				r.Tracks[i].ISRC = isrc
			}
		}
		r.Status = model.StatusApproved
		r.RejectionReason = ""
		return nil
	})
	if errors.Is(err, state.ErrNotFound) {
		return nil
	}
	if err == nil {
		e.recordDecision(ctx, actor, id, "approved", "")
	}
	return err
}

// Reject moves a release from moderation to rejected. The reason is
// mandatory and stored on the release.
func (e *Engine) Reject(ctx context.Context, actor policy.Actor, id, reason string) error {
	err := e.st.UpdateRelease(ctx, id, func(r *model.Release) error {
		if actor.Role != policy.RoleAdmin {
			return ErrForbidden
		}
		if !policy.CanModerate(actor, r) {
			return ErrBadTransition
		}
		if reason == "" {
			return ErrEmptyReason
		}
		r.Status = model.StatusRejected
		r.RejectionReason = reason
		return nil
	})
	if errors.Is(err, state.ErrNotFound) {
		return nil
	}
	if err == nil {
		e.recordDecision(ctx, actor, id, "rejected", reason)
	}
	return err
}

// Delete removes a release. Owners may delete drafts at any time and
// approved or rejected releases; nothing leaves the moderation queue by
// deletion. Deleting an absent id is a no-op.
func (e *Engine) Delete(ctx context.Context, actor policy.Actor, id string) error {
	release, ok := e.st.ReleaseByID(id)
	if !ok {
		return nil
	}
	if !policy.CanDelete(actor, &release) {
		if actor.Role == policy.RoleAdmin || release.UserID != actor.UserID {
			return ErrForbidden
		}
		return ErrBadTransition
	}
	return e.st.RemoveRelease(ctx, id)
}

// mergeUpdate applies the tagged field set. Status, identity and
// ownership are not representable in ReleaseUpdate, so a merge can never
// smuggle them in.
func mergeUpdate(r *model.Release, upd model.ReleaseUpdate) {
	if upd.AlbumName != nil {
		r.AlbumName = *upd.AlbumName
	}
	if upd.ArtistName != nil {
		r.ArtistName = *upd.ArtistName
	}
	if upd.ReleaseDate != nil {
		r.ReleaseDate = *upd.ReleaseDate
	}
	if upd.OldReleaseDate != nil {
		r.OldReleaseDate = *upd.OldReleaseDate
	}
	if upd.Genre != nil {
		r.Genre = *upd.Genre
	}
	if upd.CoverImage != nil {
		r.CoverImage = *upd.CoverImage
	}
	if upd.Tracks != nil {
		r.Tracks = *upd.Tracks
	}
}

func (e *Engine) emit(kind model.EventKind, payload map[string]interface{}) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(kind, payload)
}

func (e *Engine) recordDecision(ctx context.Context, actor policy.Actor, releaseID, verdict, reason string) {
	if e.audit == nil {
		return
	}
	entry := model.NewAuditEntry(actor.UserID, releaseID, verdict, reason)
	if err := e.audit.RecordDecision(ctx, entry); err != nil {
		logger.Warn("failed to record moderation decision",
			logger.String("releaseId", releaseID),
			logger.String("verdict", verdict),
			logger.ErrorField(err))
	}
}
