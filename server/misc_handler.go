package server

import (
	"net/http"
	"strconv"

	"kedoo/logger"
)

// GetThemeHandler returns the persisted theme preference.
func (h *APIHandler) GetThemeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"theme": h.st.Theme()})
}

// ToggleThemeHandler flips the theme between light and dark.
func (h *APIHandler) ToggleThemeHandler(w http.ResponseWriter, r *http.Request) {
	theme, err := h.st.ToggleTheme(r.Context())
	if err != nil {
		logger.Error("[Theme] toggle failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

// GetAuditHandler lists recent moderation decisions. Admin only.
func (h *APIHandler) GetAuditHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if !user.IsAdmin {
		http.Error(w, "Action not permitted", http.StatusForbidden)
		return
	}
	if h.auditRepo == nil {
		http.Error(w, "Audit trail not configured", http.StatusServiceUnavailable)
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	var err error
	if releaseID := r.URL.Query().Get("releaseId"); releaseID != "" {
		entries, listErr := h.auditRepo.ListDecisionsForRelease(r.Context(), releaseID)
		if listErr == nil {
			writeJSON(w, http.StatusOK, entries)
			return
		}
		err = listErr
	} else {
		entries, listErr := h.auditRepo.ListDecisions(r.Context(), limit)
		if listErr == nil {
			writeJSON(w, http.StatusOK, entries)
			return
		}
		err = listErr
	}

	logger.Error("[Audit] query failed", logger.ErrorField(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
