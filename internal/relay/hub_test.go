package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmstand/internal/auth"
	"farmstand/internal/common"
	"farmstand/internal/config"
	"farmstand/internal/dbmysql"
)

// stubAuth resolves fixed tokens of the form "u<id>" to sessions.
type stubAuth struct {
	users map[string]uint64
}

func (s *stubAuth) Register(context.Context, string, string, string, bool) (*dbmysql.User, string, error) {
	panic("not used")
}

func (s *stubAuth) Login(context.Context, string, string) (*dbmysql.User, string, error) {
	panic("not used")
}

func (s *stubAuth) Logout(context.Context, string) error { return nil }

func (s *stubAuth) PurgeExpired(context.Context) (int64, error) { return 0, nil }

func (s *stubAuth) Authenticate(_ context.Context, token string) (*dbmysql.Session, error) {
	userID, ok := s.users[token]
	if !ok {
		return nil, common.Unauthenticated("invalid session token")
	}
	return &dbmysql.Session{SessionID: token, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func newTestRelay(t *testing.T) (*Hub, *httptest.Server) {
	cfg := &config.Config{
		Server:  config.ServerConfig{AllowedOrigins: []string{"*"}},
		Session: config.SessionConfig{CookieName: "farmstand_session", TTLDays: 7},
	}
	authSvc := &stubAuth{users: map[string]uint64{"u1": 1, "u2": 2, "u3": 3}}
	mw := auth.NewMiddleware(authSvc, cfg)

	hub := NewHub()
	go hub.Run()

	handler := NewHandler(hub, authSvc, mw, cfg)
	srv := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	return env
}

func waitConnections(t *testing.T, hub *Hub, userID uint64, want int) {
	require.Eventually(t, func() bool {
		return hub.ConnectionCount(userID) == want
	}, 2*time.Second, 10*time.Millisecond, "user %d should have %d connections", userID, want)
}

func TestHub_DeliversOnlyToParticipants(t *testing.T) {
	hub, srv := newTestRelay(t)

	sender := dial(t, srv, "u1")
	recipient := dial(t, srv, "u2")
	bystander := dial(t, srv, "u3")
	waitConnections(t, hub, 1, 1)
	waitConnections(t, hub, 2, 1)
	waitConnections(t, hub, 3, 1)

	hub.NotifyNewMessage(&dbmysql.Message{
		MessageID: 10, SenderID: 1, RecipientID: 2,
		Subject: "Pickup", Body: "Saturday at the stand?",
	})

	for _, conn := range []*websocket.Conn{sender, recipient} {
		env := readEnvelope(t, conn)
		assert.Equal(t, "message", env.Type)
		assert.Equal(t, uint64(10), env.Message.MessageID)
	}

	// The bystander holds an authenticated connection but is not a
	// participant, so no frame may reach it.
	require.NoError(t, bystander.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := bystander.ReadMessage()
	assert.Error(t, err, "non-participant must not receive the notification")
}

func TestHub_DeliversToEveryConnectionOfAUser(t *testing.T) {
	hub, srv := newTestRelay(t)

	tabOne := dial(t, srv, "u2")
	tabTwo := dial(t, srv, "u2")
	waitConnections(t, hub, 2, 2)

	hub.NotifyNewMessage(&dbmysql.Message{MessageID: 11, SenderID: 1, RecipientID: 2})

	for _, conn := range []*websocket.Conn{tabOne, tabTwo} {
		env := readEnvelope(t, conn)
		assert.Equal(t, uint64(11), env.Message.MessageID)
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, srv := newTestRelay(t)

	conn := dial(t, srv, "u1")
	waitConnections(t, hub, 1, 1)

	conn.Close()
	waitConnections(t, hub, 1, 0)
}

func TestHub_SelfMessageDeliveredOnce(t *testing.T) {
	hub, srv := newTestRelay(t)

	conn := dial(t, srv, "u1")
	waitConnections(t, hub, 1, 1)

	hub.NotifyNewMessage(&dbmysql.Message{MessageID: 12, SenderID: 1, RecipientID: 1})

	env := readEnvelope(t, conn)
	assert.Equal(t, uint64(12), env.Message.MessageID)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "sender==recipient must produce a single frame")
}

func TestHandler_RejectsUnauthenticatedUpgrade(t *testing.T) {
	_, srv := newTestRelay(t)

	tests := []struct {
		name string
		url  string
	}{
		{name: "missing token", url: srv.URL},
		{name: "unknown token", url: srv.URL + "/?token=forged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(tt.url)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}
