package handler

import (
	"errors"
	"net/http"

	"github.com/contacthub/contacthub-go/internal/middleware"
	"github.com/contacthub/contacthub-go/internal/model"
	"github.com/contacthub/contacthub-go/internal/service"
)

// UserHandler handles HTTP requests for the authenticated user's profile.
type UserHandler struct {
	avatars *service.AvatarService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(avatars *service.AvatarService) *UserHandler {
	return &UserHandler{avatars: avatars}
}

// HandleMe handles GET /api/users/me requests.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	writeJSON(w, http.StatusOK, model.NewUserResponse(user))
}

// HandleUpdateAvatar handles PATCH /api/users/avatar requests with a
// multipart "file" part carrying the image.
func (h *UserHandler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 8<<20) // 8MB

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("missing file upload"))
		return
	}
	defer file.Close()

	updated, err := h.avatars.Upload(r.Context(), user.ID, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedImage) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, model.NewUserResponse(updated))
}
