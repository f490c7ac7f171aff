package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"farmstand/internal/auth"
	"farmstand/internal/config"
	"farmstand/internal/message"
	"farmstand/internal/relay"
	"farmstand/internal/user"
)

// NewRouter assembles every HTTP surface the service exposes. The
// messaging endpoints and the relay upgrade all sit behind the session
// middleware; register/login/media are public.
func NewRouter(
	cfg *config.Config,
	mw *auth.Middleware,
	authHandler *auth.Handler,
	messageHandler *message.Handler,
	userHandler *user.Handler,
	relayHandler *relay.Handler,
) http.Handler {
	router := mux.NewRouter()

	// Public surface
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	router.HandleFunc("/media/{fileId}", userHandler.ServeAvatar).Methods(http.MethodGet)
	router.HandleFunc("/health", health).Methods(http.MethodGet)

	// Session-guarded API
	api := router.PathPrefix("/api").Subrouter()
	api.Use(mw.RequireSession)
	api.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", userHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/me/avatar", userHandler.UploadAvatar).Methods(http.MethodPut)
	api.HandleFunc("/conversations", messageHandler.Conversations).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{counterpartId:[0-9]+}", messageHandler.ConversationWith).Methods(http.MethodGet)
	api.HandleFunc("/messages", messageHandler.Send).Methods(http.MethodPost)
	api.HandleFunc("/messages/unread-count", messageHandler.UnreadCount).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id:[0-9]+}/read", messageHandler.MarkRead).Methods(http.MethodPut)

	// Relay upgrade authenticates inside the handler so the token can
	// arrive via query parameter
	router.HandleFunc("/ws", relayHandler.ServeWS).Methods(http.MethodGet)

	return withLogging(withCORS(cfg.Server.AllowedOrigins)(router))
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
