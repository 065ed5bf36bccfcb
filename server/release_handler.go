package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"kedoo/core/lifecycle"
	"kedoo/core/policy"
	"kedoo/logger"
	"kedoo/model"
)

// GetReleasesHandler returns the catalog for the current actor: the
// moderation queue for administrators, the artist's own non-draft
// releases otherwise.
func (h *APIHandler) GetReleasesHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)
	visible := policy.VisibleReleases(actor, h.st.Releases())
	writeJSON(w, http.StatusOK, visible)
}

// GetDraftsHandler returns the actor's drafts.
func (h *APIHandler) GetDraftsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)
	drafts := policy.VisibleDrafts(actor, h.st.Releases())
	writeJSON(w, http.StatusOK, drafts)
}

// GetReleaseHandler returns one release if the actor may see it.
func (h *APIHandler) GetReleaseHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)

	release, ok := h.st.ReleaseByID(mux.Vars(r)["id"])
	if !ok || !policy.CanViewRelease(actor, &release) {
		http.Error(w, "Release not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, release)
}

// CreateReleaseHandler creates a release as a draft, or submits it to
// moderation straight away when the form says so.
func (h *APIHandler) CreateReleaseHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)

	var input lifecycle.CreateReleaseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	release, err := h.releases.CreateRelease(r.Context(), actor, input)
	if err != nil {
		logger.Warn("[Release] create failed",
			logger.String("userId", user.ID),
			logger.ErrorField(err))
		writeEngineError(w, err)
		return
	}

	logger.Info("[Release] created",
		logger.String("releaseId", release.ID),
		logger.String("status", string(release.Status)))
	writeJSON(w, http.StatusCreated, release)
}

// updateReleaseRequest wraps the field-update set with the submit flag.
type updateReleaseRequest struct {
	model.ReleaseUpdate
	SubmitToModeration bool `json:"submitToModeration"`
}

// UpdateReleaseHandler merges edits into a draft or rejected release.
func (h *APIHandler) UpdateReleaseHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)
	id := mux.Vars(r)["id"]

	var req updateReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.releases.UpdateRelease(r.Context(), actor, id, req.ReleaseUpdate, req.SubmitToModeration); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SubmitReleaseHandler sends a draft to moderation.
func (h *APIHandler) SubmitReleaseHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)
	id := mux.Vars(r)["id"]

	if err := h.releases.Submit(r.Context(), actor, id); err != nil {
		writeEngineError(w, err)
		return
	}
	logger.Info("[Release] submitted to moderation", logger.String("releaseId", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ApproveReleaseHandler approves a release in moderation, optionally
// assigning a UPC and per-track ISRCs.
func (h *APIHandler) ApproveReleaseHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)
	id := mux.Vars(r)["id"]

	var input lifecycle.ApproveInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.releases.Approve(r.Context(), actor, id, input); err != nil {
		writeEngineError(w, err)
		return
	}
	logger.Info("[Moderation] release approved",
		logger.String("releaseId", id),
		logger.String("moderatorId", user.ID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RejectReleaseHandler rejects a release in moderation with a reason.
func (h *APIHandler) RejectReleaseHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)
	id := mux.Vars(r)["id"]

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.releases.Reject(r.Context(), actor, id, req.Reason); err != nil {
		writeEngineError(w, err)
		return
	}
	logger.Info("[Moderation] release rejected",
		logger.String("releaseId", id),
		logger.String("moderatorId", user.ID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteReleaseHandler deletes a release the actor owns.
func (h *APIHandler) DeleteReleaseHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	actor := policy.ActorFor(&user)
	id := mux.Vars(r)["id"]

	if err := h.releases.Delete(r.Context(), actor, id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
