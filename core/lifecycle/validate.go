package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"kedoo/model"
)

var (
	// ErrIncomplete reports a submit attempt with required fields missing.
	ErrIncomplete = errors.New("release is not complete")
	// ErrPayloadTooLarge reports an upload above the configured cap.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// DataURISize returns the decoded byte size of a data-URI payload.
// Plain strings are measured as-is.
func DataURISize(uri string) int64 {
	idx := strings.Index(uri, "base64,")
	if idx < 0 {
		return int64(len(uri))
	}
	data := uri[idx+len("base64,"):]
	padding := int64(strings.Count(data[max(0, len(data)-2):], "="))
	return int64(len(data))*3/4 - padding
}

// checkCover enforces the cover-image size cap. Empty covers pass; the
// submit gate is the place that requires one.
func (e *Engine) checkCover(coverImage string) error {
	if coverImage == "" {
		return nil
	}
	if size := DataURISize(coverImage); size > e.maxCoverBytes {
		return fmt.Errorf("%w: cover is %d bytes, cap is %d", ErrPayloadTooLarge, size, e.maxCoverBytes)
	}
	return nil
}

// checkTracks enforces the audio size cap on every attached payload.
func (e *Engine) checkTracks(tracks []model.Track) error {
	for i := range tracks {
		if tracks[i].FileURL == "" {
			continue
		}
		if size := DataURISize(tracks[i].FileURL); size > e.maxAudioBytes {
			return fmt.Errorf("%w: track %q is %d bytes, cap is %d", ErrPayloadTooLarge, tracks[i].Name, size, e.maxAudioBytes)
		}
	}
	return nil
}

// MetadataComplete reports whether the album step of the authoring flow is
// done: album name, artist, date, genre and cover all present.
func MetadataComplete(r *model.Release) bool {
	return r.AlbumName != "" &&
		r.ArtistName != "" &&
		r.ReleaseDate != "" &&
		r.Genre != "" &&
		r.CoverImage != ""
}

// validateForSubmission gates the draft → moderation transition: metadata
// complete, at least one track, every track named with a file attached.
func validateForSubmission(r *model.Release) error {
	if !MetadataComplete(r) {
		return fmt.Errorf("%w: album metadata or cover missing", ErrIncomplete)
	}
	if len(r.Tracks) == 0 {
		return fmt.Errorf("%w: no tracks", ErrIncomplete)
	}
	for i := range r.Tracks {
		if !r.Tracks[i].Complete() {
			return fmt.Errorf("%w: track %d needs a name and a file", ErrIncomplete, i+1)
		}
	}
	return nil
}
