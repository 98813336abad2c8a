package service

import (
	"context"
	"errors"
	"time"

	"github.com/contacthub/contacthub-go/internal/model"
	"github.com/contacthub/contacthub-go/internal/repository"
)

var ErrContactNotFound = errors.New("contact not found")

// birthdayWindowDays is the inclusive lookahead for upcoming birthdays.
const birthdayWindowDays = 7

// ContactStore is the persistence surface the contact service needs. It is
// satisfied by *repository.ContactRepository; tests supply an in-memory fake.
type ContactStore interface {
	ListByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]model.Contact, error)
	MatchFirstName(ctx context.Context, ownerID int64, value string) ([]model.Contact, error)
	MatchLastName(ctx context.Context, ownerID int64, value string) ([]model.Contact, error)
	MatchEmail(ctx context.Context, ownerID int64, value string) ([]model.Contact, error)
	GetByID(ctx context.Context, ownerID, contactID int64) (*model.Contact, error)
	Create(ctx context.Context, contact *model.Contact) error
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, ownerID, contactID int64) error
}

// ContactFilter carries the optional exact-match listing filters.
// An empty string disables a field; it is never matched literally.
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
}

func (f ContactFilter) active() bool {
	return f.FirstName != "" || f.LastName != "" || f.Email != ""
}

// ContactService implements owner-scoped contact operations: the filtered
// listing engine, the upcoming-birthday selector and CRUD.
type ContactService struct {
	store ContactStore
	now   func() time.Time
}

// NewContactService creates a new ContactService.
func NewContactService(store ContactStore) *ContactService {
	return &ContactService{store: store, now: time.Now}
}

// List returns the owner's contacts matching the filter. With no active
// filter it returns one store-ordered page (skip/limit). With filters it
// returns the de-duplicated union of the per-field exact matches; skip and
// limit are deliberately not applied on that branch, matching the behavior
// existing clients depend on.
func (s *ContactService) List(ctx context.Context, ownerID int64, filter ContactFilter, skip, limit int) ([]model.Contact, error) {
	if !filter.active() {
		return s.store.ListByOwner(ctx, ownerID, skip, limit)
	}

	var groups [][]model.Contact

	if filter.FirstName != "" {
		matches, err := s.store.MatchFirstName(ctx, ownerID, filter.FirstName)
		if err != nil {
			return nil, err
		}
		groups = append(groups, matches)
	}
	if filter.LastName != "" {
		matches, err := s.store.MatchLastName(ctx, ownerID, filter.LastName)
		if err != nil {
			return nil, err
		}
		groups = append(groups, matches)
	}
	if filter.Email != "" {
		matches, err := s.store.MatchEmail(ctx, ownerID, filter.Email)
		if err != nil {
			return nil, err
		}
		groups = append(groups, matches)
	}

	return unionContacts(groups...), nil
}

// UpcomingBirthdays returns the contacts from one page (skip/limit applied
// before filtering) whose birthday falls within the next 7 calendar days.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, ownerID int64, skip, limit int) ([]model.Contact, error) {
	contacts, err := s.store.ListByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, err
	}
	return upcomingBirthdays(contacts, s.now()), nil
}

// Get returns the contact scoped by (id, owner), or ErrContactNotFound.
func (s *ContactService) Get(ctx context.Context, ownerID, contactID int64) (*model.Contact, error) {
	contact, err := s.store.GetByID(ctx, ownerID, contactID)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

// Create persists a new contact for the owner and returns it with its
// generated ID and store-assigned timestamps.
func (s *ContactService) Create(ctx context.Context, ownerID int64, req model.ContactRequest) (*model.Contact, error) {
	contact := &model.Contact{
		UserID:      ownerID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
	}

	if err := s.store.Create(ctx, contact); err != nil {
		return nil, err
	}

	return s.Get(ctx, ownerID, contact.ID)
}

// Update replaces every mutable field of the contact scoped by (id, owner).
// If the row is absent the store is left untouched and ErrContactNotFound is
// returned; there is no partial update.
func (s *ContactService) Update(ctx context.Context, ownerID, contactID int64, req model.ContactRequest) (*model.Contact, error) {
	contact, err := s.Get(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}

	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.DateOfBirth = req.DateOfBirth

	if err := s.store.Update(ctx, contact); err != nil {
		return nil, err
	}

	return s.Get(ctx, ownerID, contactID)
}

// Delete removes the contact scoped by (id, owner) and returns the row as it
// existed immediately before deletion. A missing row is a no-op reported as
// ErrContactNotFound.
func (s *ContactService) Delete(ctx context.Context, ownerID, contactID int64) (*model.Contact, error) {
	contact, err := s.Get(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, ownerID, contactID); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	return contact, nil
}

// unionContacts merges match groups in order, dropping rows already seen.
func unionContacts(groups ...[]model.Contact) []model.Contact {
	seen := make(map[int64]struct{})
	var union []model.Contact
	for _, group := range groups {
		for _, c := range group {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			union = append(union, c)
		}
	}
	return union
}

// upcomingBirthdays filters contacts whose birthday, re-anchored to the
// current year, falls within [today, today+7]. Re-anchoring goes through
// time.Date, so Feb 29 normalizes to Mar 1 in non-leap years. A birthday
// that lands before today after re-anchoring is excluded even when it is
// within the window across New Year; see DESIGN.md for that decision.
func upcomingBirthdays(contacts []model.Contact, now time.Time) []model.Contact {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var matched []model.Contact
	for _, c := range contacts {
		dob := c.DateOfBirth
		anchored := time.Date(today.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
		days := int(anchored.Sub(today).Hours() / 24)
		if days >= 0 && days <= birthdayWindowDays {
			matched = append(matched, c)
		}
	}
	return matched
}
