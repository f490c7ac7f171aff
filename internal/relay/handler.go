package relay

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"farmstand/internal/auth"
	"farmstand/internal/common"
	"farmstand/internal/config"
)

// Handler upgrades authenticated requests to relay connections. The
// socket is bound to the user id resolved from the same session token
// the HTTP API uses; a client-declared identity is never trusted.
type Handler struct {
	hub      *Hub
	auth     auth.Service
	mw       *auth.Middleware
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, authSvc auth.Service, mw *auth.Middleware, cfg *config.Config) *Handler {
	allowed := make(map[string]bool)
	allowAll := false
	for _, origin := range cfg.Server.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return &Handler{
		hub:  hub,
		auth: authSvc,
		mw:   mw,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return allowAll || allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// ServeWS handles GET /ws. Browsers cannot set headers on a WebSocket
// handshake, so the token may also arrive as a query parameter.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := h.mw.TokenFromRequest(r)
	if token == "" {
		common.RespondError(w, common.Unauthenticated("missing session"))
		return
	}

	session, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		common.RespondError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote its own error response
		log.Printf("relay: upgrade failed for user %d: %v", session.UserID, err)
		return
	}

	client := newClient(h.hub, session.UserID, conn)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}
