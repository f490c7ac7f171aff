package message_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"farmstand/internal/common"
	"farmstand/internal/dbmysql"
	"farmstand/internal/message"
	"farmstand/internal/message/mocks"
)

func newHandlerRouter(t *testing.T) (*mux.Router, *mocks.MockService) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	h := message.NewHandler(svc)

	router := mux.NewRouter()
	router.HandleFunc("/api/conversations", h.Conversations).Methods(http.MethodGet)
	router.HandleFunc("/api/conversations/{counterpartId:[0-9]+}", h.ConversationWith).Methods(http.MethodGet)
	router.HandleFunc("/api/messages", h.Send).Methods(http.MethodPost)
	router.HandleFunc("/api/messages/unread-count", h.UnreadCount).Methods(http.MethodGet)
	router.HandleFunc("/api/messages/{id:[0-9]+}/read", h.MarkRead).Methods(http.MethodPut)
	return router, svc
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(common.WithUserID(req.Context(), 1))
}

func TestHandler_Send(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		authed     bool
		mockSetup  func(svc *mocks.MockService)
		wantStatus int
	}{
		{
			name:   "successful send",
			body:   `{"recipientId":2,"subject":"Availability","body":"Is this still available?"}`,
			authed: true,
			mockSetup: func(svc *mocks.MockService) {
				svc.EXPECT().
					Send(gomock.Any(), uint64(1), uint64(2), "Availability", "Is this still available?", nil).
					Return(&dbmysql.Message{MessageID: 10, SenderID: 1, RecipientID: 2, CreatedAt: time.Now()}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json",
			body:       `{"recipientId":`,
			authed:     true,
			mockSetup:  func(svc *mocks.MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "validation failure from service",
			body:   `{"recipientId":2,"subject":"s","body":""}`,
			authed: true,
			mockSetup: func(svc *mocks.MockService) {
				svc.EXPECT().
					Send(gomock.Any(), uint64(1), uint64(2), "s", "", nil).
					Return(nil, common.BadRequest("message body cannot be empty"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unauthenticated",
			body:       `{"recipientId":2,"subject":"s","body":"b"}`,
			authed:     false,
			mockSetup:  func(svc *mocks.MockService) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newHandlerRouter(t)
			tt.mockSetup(svc)

			var req *http.Request
			if tt.authed {
				req = authedRequest(http.MethodPost, "/api/messages", tt.body)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(tt.body))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				var resp map[string]*dbmysql.Message
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, uint64(10), resp["message"].MessageID)
			}
		})
	}
}

func TestHandler_Conversations(t *testing.T) {
	router, svc := newHandlerRouter(t)
	svc.EXPECT().Conversations(gomock.Any(), uint64(1)).Return([]*message.Conversation{
		{CounterpartID: 2, CounterpartName: "Otis Orchard", UnreadCount: 1,
			LastMessage: &dbmysql.Message{MessageID: 3, SenderID: 2, RecipientID: 1}},
	}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/conversations", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]*message.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["conversations"], 1)
	assert.Equal(t, "Otis Orchard", resp["conversations"][0].CounterpartName)
}

func TestHandler_ConversationWith(t *testing.T) {
	router, svc := newHandlerRouter(t)
	farmID := uint64(44)
	svc.EXPECT().
		ConversationWith(gomock.Any(), uint64(1), uint64(2), &farmID).
		Return([]*dbmysql.Message{{MessageID: 5, SenderID: 2, RecipientID: 1, IsRead: true}}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/conversations/2?farmSpaceId=44", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]*dbmysql.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["messages"], 1)
	assert.True(t, resp["messages"][0].IsRead)
}

func TestHandler_ConversationWith_EmptyThread(t *testing.T) {
	router, svc := newHandlerRouter(t)
	svc.EXPECT().
		ConversationWith(gomock.Any(), uint64(1), uint64(9), nil).
		Return(nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/conversations/9", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
}

func TestHandler_MarkRead(t *testing.T) {
	tests := []struct {
		name       string
		mockSetup  func(svc *mocks.MockService)
		wantStatus int
	}{
		{
			name: "recipient marks read",
			mockSetup: func(svc *mocks.MockService) {
				svc.EXPECT().MarkRead(gomock.Any(), uint64(1), uint64(5)).
					Return(&dbmysql.Message{MessageID: 5, IsRead: true}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "forbidden for non-recipient",
			mockSetup: func(svc *mocks.MockService) {
				svc.EXPECT().MarkRead(gomock.Any(), uint64(1), uint64(5)).
					Return(nil, common.Forbidden("only the recipient can mark a message read"))
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "unknown message",
			mockSetup: func(svc *mocks.MockService) {
				svc.EXPECT().MarkRead(gomock.Any(), uint64(1), uint64(5)).
					Return(nil, common.NotFound("message"))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newHandlerRouter(t)
			tt.mockSetup(svc)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, authedRequest(http.MethodPut, "/api/messages/5/read", ""))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_UnreadCount(t *testing.T) {
	router, svc := newHandlerRouter(t)
	svc.EXPECT().UnreadCount(gomock.Any(), uint64(1)).Return(int64(3), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/messages/unread-count", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}
