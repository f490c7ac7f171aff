package auth

import (
	"encoding/json"
	"net/http"

	"farmstand/internal/common"
	"farmstand/internal/dbmysql"
	"farmstand/internal/user"
)

// Handler wires the auth endpoints: register, login, logout, me.
type Handler struct {
	svc   Service
	users user.Repository
	mw    *Middleware
}

func NewHandler(svc Service, users user.Repository, mw *Middleware) *Handler {
	return &Handler{svc: svc, users: users, mw: mw}
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
	IsGrower    bool   `json:"isGrower"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, common.BadRequest("invalid request body"))
		return
	}

	u, token, err := h.svc.Register(r.Context(), req.Email, req.DisplayName, req.Password, req.IsGrower)
	if err != nil {
		common.RespondError(w, err)
		return
	}

	h.mw.SetCookie(w, token)
	common.RespondJSON(w, http.StatusCreated, map[string]*dbmysql.User{"user": u})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, common.BadRequest("invalid request body"))
		return
	}

	u, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondError(w, err)
		return
	}

	h.mw.SetCookie(w, token)
	common.RespondJSON(w, http.StatusOK, map[string]*dbmysql.User{"user": u})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.mw.TokenFromRequest(r); token != "" {
		if err := h.svc.Logout(r.Context(), token); err != nil {
			common.RespondError(w, err)
			return
		}
	}
	h.mw.ClearCookie(w)
	common.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the profile behind the current session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.RespondError(w, common.Unauthenticated("no session"))
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]*dbmysql.User{"user": u})
}
