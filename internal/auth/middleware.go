package auth

import (
	"net/http"
	"strings"
	"time"

	"farmstand/internal/common"
	"farmstand/internal/config"
)

// Middleware guards HTTP routes behind a live session and refreshes
// the cookie so the browser's copy slides along with the server's.
type Middleware struct {
	svc        Service
	cookieName string
	cookieTTL  time.Duration
	secure     bool
}

func NewMiddleware(svc Service, cfg *config.Config) *Middleware {
	days := cfg.Session.TTLDays
	if days <= 0 {
		days = 7
	}
	return &Middleware{
		svc:        svc,
		cookieName: cfg.Session.CookieName,
		cookieTTL:  time.Duration(days) * 24 * time.Hour,
		secure:     cfg.Session.Secure,
	}
}

// RequireSession rejects the request with 401 before the handler runs
// unless a valid session token is presented.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.TokenFromRequest(r)
		if token == "" {
			common.RespondError(w, common.Unauthenticated("missing session"))
			return
		}

		session, err := m.svc.Authenticate(r.Context(), token)
		if err != nil {
			common.RespondError(w, err)
			return
		}

		// Refresh the cookie so the browser's copy slides with the
		// session, but only for cookie-borne tokens; header and query
		// clients get no cookie pushed on them.
		if c, cerr := r.Cookie(m.cookieName); cerr == nil && c.Value == token {
			m.SetCookie(w, token)
		}
		next.ServeHTTP(w, r.WithContext(common.WithUserID(r.Context(), session.UserID)))
	})
}

// TokenFromRequest looks for the session token in the cookie, the
// Authorization header, then the query string. The query form exists
// for the WebSocket handshake, where browsers cannot set headers.
func (m *Middleware) TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.Fields(h)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	return r.URL.Query().Get("token")
}

func (m *Middleware) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Middleware) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
