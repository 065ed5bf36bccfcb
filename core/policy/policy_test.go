package policy_test

import (
	"testing"

	"kedoo/core/policy"
	"kedoo/model"
)

var (
	admin  = policy.Actor{UserID: "admin-001", Role: policy.RoleAdmin}
	artist = policy.Actor{UserID: "artist-1", Role: policy.RoleArtist}
)

func release(id, userID string, status model.ReleaseStatus) model.Release {
	return model.Release{ID: id, UserID: userID, Status: status}
}

func sampleReleases() []model.Release {
	return []model.Release{
		release("r1", "artist-1", model.StatusDraft),
		release("r2", "artist-1", model.StatusModeration),
		release("r3", "artist-1", model.StatusApproved),
		release("r4", "artist-1", model.StatusRejected),
		release("r5", "artist-2", model.StatusModeration),
		release("r6", "artist-2", model.StatusApproved),
	}
}

func ids(releases []model.Release) map[string]bool {
	out := make(map[string]bool, len(releases))
	for _, r := range releases {
		out[r.ID] = true
	}
	return out
}

func TestAdminSeesExactlyTheModerationQueue(t *testing.T) {
	got := ids(policy.VisibleReleases(admin, sampleReleases()))
	want := map[string]bool{"r2": true, "r5": true}
	if len(got) != len(want) {
		t.Fatalf("unexpected visible set: %v", got)
	}
	for id := range want {
		if !got[id] {
			t.Fatalf("admin must see %s", id)
		}
	}
}

func TestArtistSeesOwnNonDraftReleases(t *testing.T) {
	got := ids(policy.VisibleReleases(artist, sampleReleases()))
	want := map[string]bool{"r2": true, "r3": true, "r4": true}
	if len(got) != len(want) {
		t.Fatalf("unexpected visible set: %v", got)
	}
	for id := range want {
		if !got[id] {
			t.Fatalf("artist must see %s", id)
		}
	}
	if got["r1"] {
		t.Fatal("drafts belong to the drafts view, not the catalog")
	}
	if got["r5"] || got["r6"] {
		t.Fatal("artist must never see another artist's releases")
	}
}

func TestDraftsViewReturnsOnlyOwnDrafts(t *testing.T) {
	got := policy.VisibleDrafts(artist, sampleReleases())
	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("unexpected drafts: %+v", got)
	}
	if got := policy.VisibleDrafts(admin, sampleReleases()); len(got) != 0 {
		t.Fatalf("admin has no drafts view, got %+v", got)
	}
}

func TestVisibleTickets(t *testing.T) {
	tickets := []model.Ticket{
		{ID: "t1", UserID: "artist-1"},
		{ID: "t2", UserID: "artist-2"},
	}
	if got := policy.VisibleTickets(admin, tickets); len(got) != 2 {
		t.Fatalf("admin must see all tickets, got %d", len(got))
	}
	got := policy.VisibleTickets(artist, tickets)
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("artist must see only own tickets, got %+v", got)
	}
}

func TestCanDelete(t *testing.T) {
	cases := []struct {
		name   string
		actor  policy.Actor
		status model.ReleaseStatus
		owner  string
		want   bool
	}{
		{"owner draft", artist, model.StatusDraft, "artist-1", true},
		{"owner approved", artist, model.StatusApproved, "artist-1", true},
		{"owner rejected", artist, model.StatusRejected, "artist-1", true},
		{"owner moderation", artist, model.StatusModeration, "artist-1", false},
		{"admin approved", admin, model.StatusApproved, "artist-1", false},
		{"other artist", artist, model.StatusApproved, "artist-2", false},
	}
	for _, tc := range cases {
		r := release("r", tc.owner, tc.status)
		if got := policy.CanDelete(tc.actor, &r); got != tc.want {
			t.Errorf("%s: CanDelete = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanModerate(t *testing.T) {
	r := release("r", "artist-1", model.StatusModeration)
	if !policy.CanModerate(admin, &r) {
		t.Fatal("admin must be able to moderate the queue")
	}
	if policy.CanModerate(artist, &r) {
		t.Fatal("artists never moderate")
	}
	approved := release("r", "artist-1", model.StatusApproved)
	if policy.CanModerate(admin, &approved) {
		t.Fatal("only releases in moderation can be moderated")
	}
}

func TestCanEditAndSubmit(t *testing.T) {
	draft := release("r", "artist-1", model.StatusDraft)
	rejected := release("r", "artist-1", model.StatusRejected)
	moderation := release("r", "artist-1", model.StatusModeration)

	if !policy.CanEdit(artist, &draft) || !policy.CanEdit(artist, &rejected) {
		t.Fatal("owner must be able to edit drafts and rejected releases")
	}
	if policy.CanEdit(artist, &moderation) {
		t.Fatal("releases under moderation are frozen")
	}
	if policy.CanEdit(admin, &draft) {
		t.Fatal("admin edits nothing")
	}
	if !policy.CanSubmit(artist, &draft) || !policy.CanSubmit(artist, &rejected) {
		t.Fatal("owner must be able to submit drafts and rejected releases")
	}
}

func TestCanRespond(t *testing.T) {
	open := model.Ticket{ID: "t", UserID: "artist-1", Status: model.TicketOpen}
	answered := model.Ticket{ID: "t", UserID: "artist-1", Status: model.TicketAnswered}

	if !policy.CanRespond(admin, &open) {
		t.Fatal("admin must answer open tickets")
	}
	if policy.CanRespond(artist, &open) {
		t.Fatal("artists never answer tickets")
	}
	if policy.CanRespond(admin, &answered) {
		t.Fatal("a ticket is answered at most once")
	}
}

func TestRoleOf(t *testing.T) {
	if policy.RoleOf(&model.User{IsAdmin: true}) != policy.RoleAdmin {
		t.Fatal("isAdmin user must map to RoleAdmin")
	}
	if policy.RoleOf(&model.User{}) != policy.RoleArtist {
		t.Fatal("regular user must map to RoleArtist")
	}
	if policy.RoleOf(nil) != policy.RoleArtist {
		t.Fatal("nil user must default to RoleArtist")
	}
}
