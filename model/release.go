package model

import (
	"time"

	"github.com/google/uuid"
)

// ReleaseStatus is the lifecycle state of a release.
type ReleaseStatus string

const (
	StatusDraft      ReleaseStatus = "draft"
	StatusModeration ReleaseStatus = "moderation"
	StatusApproved   ReleaseStatus = "approved"
	StatusRejected   ReleaseStatus = "rejected"
)

// Track is a single audio item inside a release. FileURL holds the durable
// payload in data-URI form; a track without it is not submittable.
type Track struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FileURL      string `json:"fileUrl,omitempty"`
	Duration     string `json:"duration,omitempty"`
	TikTokMoment string `json:"tiktokMoment,omitempty"`
	MusicAuthor  string `json:"musicAuthor,omitempty"`
	LyricsAuthor string `json:"lyricsAuthor,omitempty"`
	HasProfanity bool   `json:"hasProfanity,omitempty"`
	Performers   string `json:"performers,omitempty"`
	Producers    string `json:"producers,omitempty"`
	ISRC         string `json:"isrc,omitempty"`
	Language     string `json:"language,omitempty"`
}

// Complete reports whether the track can go to moderation: it needs a
// name and an attached file payload.
func (t *Track) Complete() bool {
	return t.Name != "" && t.FileURL != ""
}

// Release is the central aggregate: album metadata, cover art and an
// ordered tracklist. Track order determines track numbering.
type Release struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	AlbumName       string        `json:"albumName"`
	ArtistName      string        `json:"artistName"`
	ReleaseDate     string        `json:"releaseDate"`
	OldReleaseDate  string        `json:"oldReleaseDate,omitempty"`
	Genre           string        `json:"genre"`
	UPC             string        `json:"upc,omitempty"`
	CoverImage      string        `json:"coverImage,omitempty"`
	Tracks          []Track       `json:"tracks"`
	Status          ReleaseStatus `json:"status"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// NewRelease creates a release owned by userID. Status starts as draft;
// the lifecycle engine moves it from there.
func NewRelease(userID string) *Release {
	now := time.Now()
	return &Release{
		ID:        uuid.New().String(),
		UserID:    userID,
		Tracks:    []Track{},
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTrack creates an empty track ready for authoring.
func NewTrack() Track {
	return Track{ID: uuid.New().String()}
}

// ReleaseUpdate is an explicit field-update set for a release. Only the
// fields an artist may edit are representable here: identity, ownership
// and status cannot be smuggled through a merge, those belong to the
// lifecycle engine alone.
type ReleaseUpdate struct {
	AlbumName      *string  `json:"albumName,omitempty"`
	ArtistName     *string  `json:"artistName,omitempty"`
	ReleaseDate    *string  `json:"releaseDate,omitempty"`
	OldReleaseDate *string  `json:"oldReleaseDate,omitempty"`
	Genre          *string  `json:"genre,omitempty"`
	CoverImage     *string  `json:"coverImage,omitempty"`
	Tracks         *[]Track `json:"tracks,omitempty"`
}
