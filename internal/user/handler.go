package user

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"farmstand/internal/common"
	"farmstand/internal/dbmongo"
)

// maxAvatarBytes caps profile image uploads.
const maxAvatarBytes = 5 << 20

// AvatarStore is the media storage the handler reads and writes.
// Download hands ownership of the stream to the caller.
type AvatarStore interface {
	Upload(ctx context.Context, filename, mimeType string, uploaderID uint64, content io.Reader) (*dbmongo.AvatarFile, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, *dbmongo.AvatarFile, error)
	Delete(ctx context.Context, fileID string) error
}

// Handler serves directory lookups and avatar media. Avatars may be
// nil when Mongo is not configured; the endpoints then answer 404.
type Handler struct {
	repo    Repository
	avatars AvatarStore
}

func NewHandler(repo Repository, avatars AvatarStore) *Handler {
	return &Handler{repo: repo, avatars: avatars}
}

type profileResponse struct {
	UserID      uint64 `json:"userId"`
	DisplayName string `json:"displayName"`
	IsGrower    bool   `json:"isGrower"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Get handles GET /api/users/{id}. Only public profile fields leave
// the directory.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		common.RespondError(w, common.BadRequest("invalid user id"))
		return
	}

	u, err := h.repo.GetByID(r.Context(), userID)
	if err != nil {
		common.RespondError(w, err)
		return
	}

	resp := profileResponse{
		UserID:      u.UserID,
		DisplayName: u.DisplayName,
		IsGrower:    u.IsGrower,
	}
	if u.AvatarFileID != "" {
		resp.AvatarURL = "/media/" + u.AvatarFileID
	}
	common.RespondJSON(w, http.StatusOK, map[string]profileResponse{"user": resp})
}

// UploadAvatar handles PUT /api/users/me/avatar (multipart form,
// field "avatar").
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	callerID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.RespondError(w, common.Unauthenticated("no session"))
		return
	}
	if h.avatars == nil {
		common.RespondError(w, common.NotFound("avatar storage"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		common.RespondError(w, common.BadRequest("avatar file is required"))
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		common.RespondError(w, common.BadRequest("avatar must be an image"))
		return
	}

	caller, err := h.repo.GetByID(r.Context(), callerID)
	if err != nil {
		common.RespondError(w, err)
		return
	}

	uploaded, err := h.avatars.Upload(r.Context(), header.Filename, mimeType, callerID, file)
	if err != nil {
		common.RespondError(w, common.StorageUnavailable(err))
		return
	}

	if err := h.repo.UpdateAvatar(r.Context(), callerID, uploaded.ID); err != nil {
		common.RespondError(w, err)
		return
	}

	// Old avatar is unreachable now; best effort cleanup
	if caller.AvatarFileID != "" {
		if err := h.avatars.Delete(r.Context(), caller.AvatarFileID); err != nil {
			log.Printf("failed to delete old avatar %s: %v", caller.AvatarFileID, err)
		}
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"avatarUrl": "/media/" + uploaded.ID})
}

// ServeAvatar handles GET /media/{fileId}, streaming the image bytes.
func (h *Handler) ServeAvatar(w http.ResponseWriter, r *http.Request) {
	if h.avatars == nil {
		http.Error(w, "media storage disabled", http.StatusNotFound)
		return
	}

	fileID := mux.Vars(r)["fileId"]
	reader, file, err := h.avatars.Download(r.Context(), fileID)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	defer reader.Close()

	contentType := file.MimeType
	if contentType == "" {
		contentType = contentTypeByExt(file.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", file.Size))

	if _, err := io.Copy(w, reader); err != nil {
		log.Printf("error streaming avatar %s: %v", fileID, err)
	}
}

func contentTypeByExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
