package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"kedoo/core/lifecycle"
	"kedoo/core/policy"
	"kedoo/core/state"
	"kedoo/model"
	"kedoo/store"
)

var (
	artistActor = policy.Actor{UserID: "artist-1", Role: policy.RoleArtist}
	otherActor  = policy.Actor{UserID: "artist-2", Role: policy.RoleArtist}
	adminActor  = policy.Actor{UserID: "admin-001", Role: policy.RoleAdmin}
)

type capturingNotifier struct {
	events []model.EventKind
}

func (n *capturingNotifier) Notify(kind model.EventKind, payload map[string]interface{}) {
	n.events = append(n.events, kind)
}

type capturingAudit struct {
	entries []model.AuditEntry
}

func (a *capturingAudit) RecordDecision(_ context.Context, entry model.AuditEntry) error {
	a.entries = append(a.entries, entry)
	return nil
}

func newTestEngine(t *testing.T) (*lifecycle.Engine, *state.AppState, *capturingNotifier, *capturingAudit) {
	t.Helper()
	s := state.New(store.NewMemoryStore(), state.AdminSeed{
		ID: "admin-001", Email: "moder@olprod.ru", Password: "zzzz-2014", Name: "Moderator",
	})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	notifier := &capturingNotifier{}
	audit := &capturingAudit{}
	engine := lifecycle.NewEngine(s, notifier, audit, 10<<20, 50<<20)
	return engine, s, notifier, audit
}

func completeInput() lifecycle.CreateReleaseInput {
	return lifecycle.CreateReleaseInput{
		AlbumName:   "Test",
		ArtistName:  "Artist",
		ReleaseDate: "2025-01-01",
		Genre:       "Pop",
		CoverImage:  "data:image/jpeg;base64,AAAA",
		Tracks: []model.Track{
			{ID: "trk-1", Name: "Song", FileURL: "data:audio/mpeg;base64,AAAA"},
		},
	}
}

func TestModerationScenario(t *testing.T) {
	engine, s, _, _ := newTestEngine(t)
	ctx := context.Background()

	// Artist creates a complete release and submits it.
	input := completeInput()
	input.SubmitToModeration = true
	release, err := engine.CreateRelease(ctx, artistActor, input)
	if err != nil {
		t.Fatalf("CreateRelease returned error: %v", err)
	}
	if release.Status != model.StatusModeration {
		t.Fatalf("expected moderation, got %s", release.Status)
	}

	// Administrator rejects with a reason.
	if err := engine.Reject(ctx, adminActor, release.ID, "Low quality cover"); err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	got, _ := s.ReleaseByID(release.ID)
	if got.Status != model.StatusRejected {
		t.Fatalf("expected rejected, got %s", got.Status)
	}
	if got.RejectionReason != "Low quality cover" {
		t.Fatalf("unexpected rejection reason: %q", got.RejectionReason)
	}

	// Artist edits and resubmits.
	cover := "data:image/jpeg;base64,BBBB"
	err = engine.UpdateRelease(ctx, artistActor, release.ID, model.ReleaseUpdate{CoverImage: &cover}, true)
	if err != nil {
		t.Fatalf("UpdateRelease returned error: %v", err)
	}
	got, _ = s.ReleaseByID(release.ID)
	if got.Status != model.StatusModeration {
		t.Fatalf("expected moderation after resubmit, got %s", got.Status)
	}

	// Administrator approves with a UPC, no ISRCs supplied.
	err = engine.Approve(ctx, adminActor, release.ID, lifecycle.ApproveInput{UPC: "123456789012"})
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	got, _ = s.ReleaseByID(release.ID)
	if got.Status != model.StatusApproved {
		t.Fatalf("expected approved, got %s", got.Status)
	}
	if got.UPC != "123456789012" {
		t.Fatalf("unexpected UPC: %q", got.UPC)
	}
	if got.Tracks[0].ISRC != "" {
		t.Fatalf("ISRC must stay unset when none supplied, got %q", got.Tracks[0].ISRC)
	}
	if got.RejectionReason != "" {
		t.Fatalf("stale rejection reason must be cleared on approval, got %q", got.RejectionReason)
	}
}

func TestSubmitRequiresCompleteRelease(t *testing.T) {
	breakers := map[string]func(*lifecycle.CreateReleaseInput){
		"no album name":   func(in *lifecycle.CreateReleaseInput) { in.AlbumName = "" },
		"no artist name":  func(in *lifecycle.CreateReleaseInput) { in.ArtistName = "" },
		"no release date": func(in *lifecycle.CreateReleaseInput) { in.ReleaseDate = "" },
		"no genre":        func(in *lifecycle.CreateReleaseInput) { in.Genre = "" },
		"no cover":        func(in *lifecycle.CreateReleaseInput) { in.CoverImage = "" },
		"no tracks":       func(in *lifecycle.CreateReleaseInput) { in.Tracks = nil },
		"unnamed track":   func(in *lifecycle.CreateReleaseInput) { in.Tracks[0].Name = "" },
		"no track file":   func(in *lifecycle.CreateReleaseInput) { in.Tracks[0].FileURL = "" },
	}

	for name, breaker := range breakers {
		engine, s, _, _ := newTestEngine(t)
		ctx := context.Background()

		input := completeInput()
		breaker(&input)
		release, err := engine.CreateRelease(ctx, artistActor, input) // draft is fine
		if err != nil {
			t.Fatalf("%s: CreateRelease returned error: %v", name, err)
		}

		if err := engine.Submit(ctx, artistActor, release.ID); !errors.Is(err, lifecycle.ErrIncomplete) {
			t.Fatalf("%s: expected ErrIncomplete, got %v", name, err)
		}
		got, _ := s.ReleaseByID(release.ID)
		if got.Status != model.StatusDraft {
			t.Fatalf("%s: failed submit must leave status draft, got %s", name, got.Status)
		}
	}
}

func TestCreateDirectlyInModerationRequiresComplete(t *testing.T) {
	engine, s, _, _ := newTestEngine(t)

	input := completeInput()
	input.Genre = ""
	input.SubmitToModeration = true
	_, err := engine.CreateRelease(context.Background(), artistActor, input)
	if !errors.Is(err, lifecycle.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if len(s.Releases()) != 0 {
		t.Fatal("failed create must not persist anything")
	}
}

func TestAdminCannotCreateReleases(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	_, err := engine.CreateRelease(context.Background(), adminActor, completeInput())
	if !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestApproveOutsideModerationIsRefused(t *testing.T) {
	engine, s, _, _ := newTestEngine(t)
	ctx := context.Background()

	release, err := engine.CreateRelease(ctx, artistActor, completeInput())
	if err != nil {
		t.Fatalf("CreateRelease returned error: %v", err)
	}

	err = engine.Approve(ctx, adminActor, release.ID, lifecycle.ApproveInput{UPC: "1"})
	if !errors.Is(err, lifecycle.ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}
	got, _ := s.ReleaseByID(release.ID)
	if got.Status != model.StatusDraft || got.UPC != "" {
		t.Fatalf("refused approve must not mutate: %+v", got)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	engine, s, _, _ := newTestEngine(t)
	ctx := context.Background()

	input := completeInput()
	input.SubmitToModeration = true
	release, _ := engine.CreateRelease(ctx, artistActor, input)

	if err := engine.Reject(ctx, adminActor, release.ID, ""); !errors.Is(err, lifecycle.ErrEmptyReason) {
		t.Fatalf("expected ErrEmptyReason, got %v", err)
	}
	got, _ := s.ReleaseByID(release.ID)
	if got.Status != model.StatusModeration {
		t.Fatalf("refused reject must leave status unchanged, got %s", got.Status)
	}
}

func TestArtistCannotModerate(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	input := completeInput()
	input.SubmitToModeration = true
	release, _ := engine.CreateRelease(ctx, artistActor, input)

	if err := engine.Approve(ctx, artistActor, release.ID, lifecycle.ApproveInput{}); !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on approve, got %v", err)
	}
	if err := engine.Reject(ctx, artistActor, release.ID, "reason"); !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on reject, got %v", err)
	}
}

func TestApprovePreservesExistingIdentifiers(t *testing.T) {
	engine, s, _, _ := newTestEngine(t)
	ctx := context.Background()

	input := completeInput()
	input.Tracks[0].ISRC = "RU-A01-24-00001"
	input.SubmitToModeration = true
	release, _ := engine.CreateRelease(ctx, artistActor, input)

	// UPC assigned out-of-band on a previous round survives an approve
	// with empty inputs.
	err := s.UpdateRelease(ctx, release.ID, func(r *model.Release) error {
		r.UPC = "000111222333"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateRelease returned error: %v", err)
	}

	if err := engine.Approve(ctx, adminActor, release.ID, lifecycle.ApproveInput{}); err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	got, _ := s.ReleaseByID(release.ID)
	if got.UPC != "000111222333" {
		t.Fatalf("empty UPC input must preserve the existing value, got %q", got.UPC)
	}
	if got.Tracks[0].ISRC != "RU-A01-24-00001" {
		t.Fatalf("empty ISRC input must preserve the existing value, got %q", got.Tracks[0].ISRC)
	}
}

func TestDeleteRules(t *testing.T) {
	engine, s, _, _ := newTestEngine(t)
	ctx := context.Background()

	input := completeInput()
	input.SubmitToModeration = true
	release, _ := engine.CreateRelease(ctx, artistActor, input)

	// Nothing leaves the moderation queue by deletion.
	if err := engine.Delete(ctx, artistActor, release.ID); !errors.Is(err, lifecycle.ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition while in moderation, got %v", err)
	}

	if err := engine.Approve(ctx, adminActor, release.ID, lifecycle.ApproveInput{}); err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}

	// Administrators never delete.
	if err := engine.Delete(ctx, adminActor, release.ID); !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin, got %v", err)
	}
	// Neither do other artists.
	if err := engine.Delete(ctx, otherActor, release.ID); !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	if err := engine.Delete(ctx, artistActor, release.ID); err != nil {
		t.Fatalf("owner delete of approved release failed: %v", err)
	}
	if len(s.Releases()) != 0 {
		t.Fatal("release not removed")
	}
	// Deleting an absent id is a no-op.
	if err := engine.Delete(ctx, artistActor, release.ID); err != nil {
		t.Fatalf("delete of missing id must be a no-op, got %v", err)
	}
}

func TestUpdateForeignReleaseForbidden(t *testing.T) {
	engine, s, _, _ := newTestEngine(t)
	ctx := context.Background()

	release, _ := engine.CreateRelease(ctx, artistActor, completeInput())

	name := "Hijacked"
	err := engine.UpdateRelease(ctx, otherActor, release.ID, model.ReleaseUpdate{AlbumName: &name}, false)
	if !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	got, _ := s.ReleaseByID(release.ID)
	if got.AlbumName != "Test" {
		t.Fatalf("foreign update leaked: %q", got.AlbumName)
	}
}

func TestNotifierFiresOnCreationOnly(t *testing.T) {
	engine, _, notifier, _ := newTestEngine(t)
	ctx := context.Background()

	release, _ := engine.CreateRelease(ctx, artistActor, completeInput())
	if len(notifier.events) != 1 || notifier.events[0] != model.EventNewRelease {
		t.Fatalf("expected one new_release event, got %v", notifier.events)
	}

	if err := engine.Submit(ctx, artistActor, release.ID); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if len(notifier.events) != 1 {
		t.Fatalf("submit of an existing release must not notify again, got %v", notifier.events)
	}
}

func TestModerationDecisionsAreAudited(t *testing.T) {
	engine, _, _, audit := newTestEngine(t)
	ctx := context.Background()

	input := completeInput()
	input.SubmitToModeration = true
	release, _ := engine.CreateRelease(ctx, artistActor, input)

	if err := engine.Reject(ctx, adminActor, release.ID, "bad cover"); err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	cover := "data:image/jpeg;base64,CCCC"
	if err := engine.UpdateRelease(ctx, artistActor, release.ID, model.ReleaseUpdate{CoverImage: &cover}, true); err != nil {
		t.Fatalf("UpdateRelease returned error: %v", err)
	}
	if err := engine.Approve(ctx, adminActor, release.ID, lifecycle.ApproveInput{}); err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}

	if len(audit.entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(audit.entries))
	}
	if audit.entries[0].Verdict != "rejected" || audit.entries[0].Reason != "bad cover" {
		t.Fatalf("unexpected first entry: %+v", audit.entries[0])
	}
	if audit.entries[1].Verdict != "approved" || audit.entries[1].ModeratorID != "admin-001" {
		t.Fatalf("unexpected second entry: %+v", audit.entries[1])
	}
}

func TestUploadCaps(t *testing.T) {
	s := state.New(store.NewMemoryStore(), state.AdminSeed{Email: "moder@olprod.ru"})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	// Tiny caps so the fixtures stay small.
	engine := lifecycle.NewEngine(s, nil, nil, 4, 4)

	input := completeInput()
	input.CoverImage = "data:image/jpeg;base64,AAAAAAAAAAAA" // 9 decoded bytes
	_, err := engine.CreateRelease(context.Background(), artistActor, input)
	if !errors.Is(err, lifecycle.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge for cover, got %v", err)
	}

	input = completeInput()
	input.Tracks[0].FileURL = "data:audio/mpeg;base64,AAAAAAAAAAAA"
	_, err = engine.CreateRelease(context.Background(), artistActor, input)
	if !errors.Is(err, lifecycle.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge for track, got %v", err)
	}
	if len(s.Releases()) != 0 {
		t.Fatal("oversized upload must not persist anything")
	}
}

func TestDataURISize(t *testing.T) {
	cases := []struct {
		uri  string
		want int64
	}{
		{"data:image/png;base64,QUJD", 3},     // "ABC"
		{"data:image/png;base64,QUI=", 2},     // "AB"
		{"data:image/png;base64,QQ==", 1},     // "A"
		{"data:image/png;base64,", 0},
		{"plain text", 10},
	}
	for _, tc := range cases {
		if got := lifecycle.DataURISize(tc.uri); got != tc.want {
			t.Errorf("DataURISize(%q) = %d, want %d", tc.uri, got, tc.want)
		}
	}
}
