package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/contacthub/contacthub-go/internal/crypto"
	"github.com/contacthub/contacthub-go/internal/middleware"
	"github.com/contacthub/contacthub-go/internal/model"
	"github.com/contacthub/contacthub-go/internal/repository"
	"github.com/contacthub/contacthub-go/internal/service"
)

const testSecret = "handler-test-secret"

// memContactStore backs the contact service in route tests.
type memContactStore struct {
	nextID   int64
	contacts []model.Contact
}

func (m *memContactStore) add(ownerID int64, first, last, email, phone string, dob model.Date) model.Contact {
	m.nextID++
	c := model.Contact{
		ID:          m.nextID,
		UserID:      ownerID,
		FirstName:   first,
		LastName:    last,
		Email:       email,
		Phone:       phone,
		DateOfBirth: dob,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	m.contacts = append(m.contacts, c)
	return c
}

func (m *memContactStore) ListByOwner(_ context.Context, ownerID int64, skip, limit int) ([]model.Contact, error) {
	var owned []model.Contact
	for _, c := range m.contacts {
		if c.UserID == ownerID {
			owned = append(owned, c)
		}
	}
	if skip >= len(owned) {
		return nil, nil
	}
	owned = owned[skip:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (m *memContactStore) match(ownerID int64, pred func(model.Contact) bool) []model.Contact {
	var matched []model.Contact
	for _, c := range m.contacts {
		if c.UserID == ownerID && pred(c) {
			matched = append(matched, c)
		}
	}
	return matched
}

func (m *memContactStore) MatchFirstName(_ context.Context, ownerID int64, value string) ([]model.Contact, error) {
	return m.match(ownerID, func(c model.Contact) bool { return c.FirstName == value }), nil
}

func (m *memContactStore) MatchLastName(_ context.Context, ownerID int64, value string) ([]model.Contact, error) {
	return m.match(ownerID, func(c model.Contact) bool { return c.LastName == value }), nil
}

func (m *memContactStore) MatchEmail(_ context.Context, ownerID int64, value string) ([]model.Contact, error) {
	return m.match(ownerID, func(c model.Contact) bool { return c.Email == value }), nil
}

func (m *memContactStore) GetByID(_ context.Context, ownerID, contactID int64) (*model.Contact, error) {
	for i := range m.contacts {
		if m.contacts[i].ID == contactID && m.contacts[i].UserID == ownerID {
			c := m.contacts[i]
			return &c, nil
		}
	}
	return nil, repository.ErrContactNotFound
}

func (m *memContactStore) Create(_ context.Context, contact *model.Contact) error {
	m.nextID++
	contact.ID = m.nextID
	contact.CreatedAt = time.Now().UTC()
	contact.UpdatedAt = contact.CreatedAt
	m.contacts = append(m.contacts, *contact)
	return nil
}

func (m *memContactStore) Update(_ context.Context, contact *model.Contact) error {
	for i := range m.contacts {
		if m.contacts[i].ID == contact.ID && m.contacts[i].UserID == contact.UserID {
			m.contacts[i] = *contact
			return nil
		}
	}
	return nil
}

func (m *memContactStore) Delete(_ context.Context, ownerID, contactID int64) error {
	for i := range m.contacts {
		if m.contacts[i].ID == contactID && m.contacts[i].UserID == ownerID {
			m.contacts = append(m.contacts[:i], m.contacts[i+1:]...)
			return nil
		}
	}
	return repository.ErrContactNotFound
}

// confirmedUsers resolves any user ID to a confirmed account, standing in
// for the user repository behind the auth middleware.
type confirmedUsers struct{}

func (confirmedUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	return &model.User{ID: id, Email: "user@example.com", Confirmed: true}, nil
}

func newTestRouter(store service.ContactStore) http.Handler {
	h := NewContactHandler(service.NewContactService(store))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(testSecret, confirmedUsers{}))
		r.Get("/api/contacts", h.HandleList)
		r.Get("/api/contacts/birthdays", h.HandleBirthdays)
		r.Get("/api/contacts/{contact_id}", h.HandleGet)
		r.Post("/api/contacts", h.HandleCreate)
		r.Put("/api/contacts/{contact_id}", h.HandleUpdate)
		r.Delete("/api/contacts/{contact_id}", h.HandleDelete)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, target string, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if userID != 0 {
		token, err := crypto.GenerateToken(userID, "user@example.com", crypto.ScopeAccess, testSecret, time.Hour)
		if err != nil {
			t.Fatalf("token generation failed: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_MissingTokenIs401(t *testing.T) {
	router := newTestRouter(&memContactStore{})

	rec := doRequest(t, router, "GET", "/api/contacts", "", 0)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandleList_EmptyFilteredResultIs404(t *testing.T) {
	store := &memContactStore{}
	store.add(1, "Luffy", "MonkeyD", "captain@example.com", "1", model.NewDate(1994, time.May, 5))
	router := newTestRouter(store)

	rec := doRequest(t, router, "GET", "/api/contacts?first_name=Nobody", "", 1)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for empty filtered listing, got %d", rec.Code)
	}
}

func TestHandleList_ReturnsOwnersContacts(t *testing.T) {
	store := &memContactStore{}
	store.add(1, "Luffy", "MonkeyD", "captain@example.com", "1", model.NewDate(1994, time.May, 5))
	store.add(2, "Zoro", "Roronoa", "swords@example.com", "2", model.NewDate(1991, time.November, 11))
	router := newTestRouter(store)

	rec := doRequest(t, router, "GET", "/api/contacts", "", 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var contacts []model.ContactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &contacts); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(contacts) != 1 || contacts[0].FirstName != "Luffy" {
		t.Errorf("expected only owner 1's contact, got %+v", contacts)
	}
}

func TestHandleBirthdays_EmptyResultIs404(t *testing.T) {
	store := &memContactStore{}
	// A birthday two months out can never fall in the 7-day window.
	far := time.Now().AddDate(0, 0, 60)
	store.add(1, "Luffy", "MonkeyD", "captain@example.com", "1", model.NewDate(1994, far.Month(), far.Day()))
	router := newTestRouter(store)

	rec := doRequest(t, router, "GET", "/api/contacts/birthdays", "", 1)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for empty birthday listing, got %d", rec.Code)
	}
}

func TestHandleGet_ForeignOwnerIs404(t *testing.T) {
	store := &memContactStore{}
	mine := store.add(1, "Luffy", "MonkeyD", "captain@example.com", "1", model.NewDate(1994, time.May, 5))
	router := newTestRouter(store)

	rec := doRequest(t, router, "GET", "/api/contacts/1", "", 2)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another owner's contact, got %d", rec.Code)
	}

	// The owner still sees the row.
	rec = doRequest(t, router, "GET", "/api/contacts/1", "", 1)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for the owner, got %d", rec.Code)
	}

	var got model.ContactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.ID != mine.ID {
		t.Errorf("expected contact %d, got %d", mine.ID, got.ID)
	}
}

func TestHandleCreate_Returns201(t *testing.T) {
	store := &memContactStore{}
	router := newTestRouter(store)

	body := `{"first_name":"Luffy","last_name":"MonkeyD","email":"captain@example.com","phone":"+3057218410","date_of_birth":"1994-05-05"}`
	rec := doRequest(t, router, "POST", "/api/contacts", body, 1)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var created model.ContactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if created.ID == 0 || created.FirstName != "Luffy" || created.DateOfBirth.String() != "1994-05-05" {
		t.Errorf("unexpected created contact: %+v", created)
	}
}

func TestHandleCreate_OversizedBodyIs413(t *testing.T) {
	router := newTestRouter(&memContactStore{})

	body := `{"first_name":"` + strings.Repeat("a", 1<<20) + `"}`
	rec := doRequest(t, router, "POST", "/api/contacts", body, 1)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversized body, got %d", rec.Code)
	}
}

func TestHandleUpdate_ForeignOwnerIs404(t *testing.T) {
	store := &memContactStore{}
	store.add(1, "Luffy", "MonkeyD", "captain@example.com", "1", model.NewDate(1994, time.May, 5))
	router := newTestRouter(store)

	body := `{"first_name":"Zoro","last_name":"Roronoa","email":"swords@example.com","phone":"2","date_of_birth":"1991-11-11"}`
	rec := doRequest(t, router, "PUT", "/api/contacts/1", body, 2)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 updating another owner's contact, got %d", rec.Code)
	}
	if store.contacts[0].FirstName != "Luffy" {
		t.Errorf("foreign update must not modify the row, got %+v", store.contacts[0])
	}
}

func TestHandleDelete_StatusCodes(t *testing.T) {
	store := &memContactStore{}
	store.add(1, "Luffy", "MonkeyD", "captain@example.com", "1", model.NewDate(1994, time.May, 5))
	router := newTestRouter(store)

	rec := doRequest(t, router, "DELETE", "/api/contacts/1", "", 1)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	// A second delete targets a row that no longer exists.
	rec = doRequest(t, router, "DELETE", "/api/contacts/1", "", 1)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing contact, got %d", rec.Code)
	}
}

func TestHandleGet_InvalidIDIs400(t *testing.T) {
	router := newTestRouter(&memContactStore{})

	for _, id := range []string{"abc", "0", "-3"} {
		rec := doRequest(t, router, "GET", "/api/contacts/"+id, "", 1)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: expected 400, got %d", id, rec.Code)
		}
	}
}
