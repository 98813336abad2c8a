package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/contacthub/contacthub-go/internal/middleware"
	"github.com/contacthub/contacthub-go/internal/model"
	"github.com/contacthub/contacthub-go/internal/service"
)

// ContactHandler handles HTTP requests for contact operations. Empty results
// from listings and lookups are mapped to 404 here; the service layer never
// treats absence as a failure.
type ContactHandler struct {
	service *service.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{service: svc}
}

// HandleList handles GET /api/contacts requests with optional first_name,
// last_name and email exact-match filters.
func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	skip, limit, ok := parsePagination(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid pagination parameters"))
		return
	}

	filter := service.ContactFilter{
		FirstName: r.URL.Query().Get("first_name"),
		LastName:  r.URL.Query().Get("last_name"),
		Email:     r.URL.Query().Get("email"),
	}

	contacts, err := h.service.List(r.Context(), user.ID, filter, skip, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	if len(contacts) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse("contacts with requested parameters not found"))
		return
	}

	writeJSON(w, http.StatusOK, model.ContactsToResponse(contacts))
}

// HandleBirthdays handles GET /api/contacts/birthdays requests.
func (h *ContactHandler) HandleBirthdays(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	skip, limit, ok := parsePagination(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid pagination parameters"))
		return
	}

	contacts, err := h.service.UpcomingBirthdays(r.Context(), user.ID, skip, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	if len(contacts) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse("contacts with birthdays for the next 7 days not found"))
		return
	}

	writeJSON(w, http.StatusOK, model.ContactsToResponse(contacts))
}

// HandleGet handles GET /api/contacts/{contact_id} requests.
func (h *ContactHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	contactID, ok := parseContactID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid contact id"))
		return
	}

	contact, err := h.service.Get(r.Context(), user.ID, contactID)
	if err != nil {
		h.writeContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewContactResponse(contact))
}

// HandleCreate handles POST /api/contacts requests.
func (h *ContactHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	req, ok := decodeContactRequest(w, r)
	if !ok {
		return
	}

	contact, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, model.NewContactResponse(contact))
}

// HandleUpdate handles PUT /api/contacts/{contact_id} requests. Every
// mutable field is overwritten with the request's values.
func (h *ContactHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	contactID, ok := parseContactID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid contact id"))
		return
	}

	req, ok := decodeContactRequest(w, r)
	if !ok {
		return
	}

	contact, err := h.service.Update(r.Context(), user.ID, contactID, req)
	if err != nil {
		h.writeContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewContactResponse(contact))
}

// HandleDelete handles DELETE /api/contacts/{contact_id} requests.
func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	contactID, ok := parseContactID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid contact id"))
		return
	}

	if _, err := h.service.Delete(r.Context(), user.ID, contactID); err != nil {
		h.writeContactError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) writeContactError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrContactNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse("contact with requested id not found"))
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
}

func parseContactID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "contact_id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func decodeContactRequest(w http.ResponseWriter, r *http.Request) (model.ContactRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return model.ContactRequest{}, false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return model.ContactRequest{}, false
	}

	return req, true
}
