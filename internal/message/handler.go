package message

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"farmstand/internal/common"
	"farmstand/internal/dbmysql"
)

// Handler fronts the messaging service over HTTP. Every route here is
// mounted behind the session middleware, so a missing user id in the
// context is a programming error, not a client one.
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type sendMessageRequest struct {
	RecipientID uint64  `json:"recipientId"`
	Subject     string  `json:"subject"`
	Body        string  `json:"body"`
	FarmSpaceID *uint64 `json:"farmSpaceId,omitempty"`
}

// Conversations handles GET /api/conversations
func (h *Handler) Conversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.RespondError(w, common.Unauthenticated("no session"))
		return
	}

	conversations, err := h.svc.Conversations(r.Context(), userID)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string][]*Conversation{"conversations": conversations})
}

// ConversationWith handles GET /api/conversations/{counterpartId}
func (h *Handler) ConversationWith(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.RespondError(w, common.Unauthenticated("no session"))
		return
	}

	counterpartID, err := strconv.ParseUint(mux.Vars(r)["counterpartId"], 10, 64)
	if err != nil {
		common.RespondError(w, common.BadRequest("invalid counterpart id"))
		return
	}

	var farmSpaceID *uint64
	if raw := r.URL.Query().Get("farmSpaceId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			common.RespondError(w, common.BadRequest("invalid farm space id"))
			return
		}
		farmSpaceID = &id
	}

	messages, err := h.svc.ConversationWith(r.Context(), userID, counterpartID, farmSpaceID)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	if messages == nil {
		messages = []*dbmysql.Message{}
	}
	common.RespondJSON(w, http.StatusOK, map[string][]*dbmysql.Message{"messages": messages})
}

// Send handles POST /api/messages
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.RespondError(w, common.Unauthenticated("no session"))
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, common.BadRequest("invalid request body"))
		return
	}

	msg, err := h.svc.Send(r.Context(), userID, req.RecipientID, req.Subject, req.Body, req.FarmSpaceID)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]*dbmysql.Message{"message": msg})
}

// MarkRead handles PUT /api/messages/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.RespondError(w, common.Unauthenticated("no session"))
		return
	}

	messageID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		common.RespondError(w, common.BadRequest("invalid message id"))
		return
	}

	msg, err := h.svc.MarkRead(r.Context(), userID, messageID)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]*dbmysql.Message{"message": msg})
}

// UnreadCount handles GET /api/messages/unread-count
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.RespondError(w, common.Unauthenticated("no session"))
		return
	}

	count, err := h.svc.UnreadCount(r.Context(), userID)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]int64{"count": count})
}
