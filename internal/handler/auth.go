package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/contacthub/contacthub-go/internal/model"
	"github.com/contacthub/contacthub-go/internal/service"
)

// AuthHandler handles HTTP requests for registration, login, token refresh
// and email confirmation.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleSignup handles POST /api/auth/signup requests.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	user, err := h.service.Signup(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired), errors.Is(err, service.ErrPasswordRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, model.SignupResponse{
		User:   model.NewUserResponse(user),
		Detail: "User successfully created. Check your email for confirmation.",
	})
}

// HandleLogin handles POST /api/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	pair, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrEmailNotConfirmed):
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// HandleRefresh handles GET /api/auth/refresh_token requests. The refresh
// token is presented as a Bearer credential.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse("missing refresh token"))
		return
	}

	pair, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// HandleConfirmEmail handles GET /api/auth/confirmed_email/{token} requests.
func (h *AuthHandler) HandleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	already, err := h.service.ConfirmEmail(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			writeJSON(w, http.StatusBadRequest, errorResponse("verification error"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	if already {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Your email is already confirmed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email confirmed"})
}

// HandleRequestEmail handles POST /api/auth/request_email requests,
// re-sending the confirmation email for an unconfirmed account.
func (h *AuthHandler) HandleRequestEmail(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.RequestEmail
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	already, err := h.service.ResendConfirmation(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	if already {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Your email is already confirmed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Check your email for confirmation."})
}
