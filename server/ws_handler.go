package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"kedoo/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled by the router middleware; the upgrade itself
	// accepts any origin the middleware let through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandler upgrades an administrator session to the live event feed.
func (h *APIHandler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if !user.IsAdmin {
		http.Error(w, "Action not permitted", http.StatusForbidden)
		return
	}
	if h.hub == nil {
		http.Error(w, "Event feed not configured", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("[Events] websocket upgrade failed", logger.ErrorField(err))
		return
	}
	h.hub.Serve(conn, user.ID)
}
