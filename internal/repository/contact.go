package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/contacthub/contacthub-go/internal/model"
)

var ErrContactNotFound = errors.New("contact not found")

// ContactRepository handles contact persistence operations. Every query is
// scoped by the owning user's ID; a contact belonging to another user is
// indistinguishable from a missing row.
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new ContactRepository.
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, user_id, first_name, last_name, email, phone, date_of_birth, created_at, updated_at`

// ListByOwner retrieves a page of the owner's contacts in store (id) order.
func (r *ContactRepository) ListByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`
	return r.queryMany(ctx, query, ownerID, limit, skip)
}

// MatchFirstName retrieves the owner's contacts whose first name equals value.
func (r *ContactRepository) MatchFirstName(ctx context.Context, ownerID int64, value string) ([]model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ? AND first_name = ? ORDER BY id`
	return r.queryMany(ctx, query, ownerID, value)
}

// MatchLastName retrieves the owner's contacts whose last name equals value.
func (r *ContactRepository) MatchLastName(ctx context.Context, ownerID int64, value string) ([]model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ? AND last_name = ? ORDER BY id`
	return r.queryMany(ctx, query, ownerID, value)
}

// MatchEmail retrieves the owner's contacts whose email equals value.
func (r *ContactRepository) MatchEmail(ctx context.Context, ownerID int64, value string) ([]model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ? AND email = ? ORDER BY id`
	return r.queryMany(ctx, query, ownerID, value)
}

// GetByID retrieves a single contact scoped by (id, owner).
func (r *ContactRepository) GetByID(ctx context.Context, ownerID, contactID int64) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ? AND user_id = ?`

	contact := &model.Contact{}
	err := r.db.QueryRowContext(ctx, query, contactID, ownerID).Scan(
		&contact.ID, &contact.UserID, &contact.FirstName, &contact.LastName,
		&contact.Email, &contact.Phone, &contact.DateOfBirth,
		&contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	return contact, nil
}

// Create inserts a new contact and sets the generated ID on the struct.
// Timestamps are assigned by the database; callers re-fetch to observe them.
func (r *ContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	query := `INSERT INTO contacts (user_id, first_name, last_name, email, phone, date_of_birth)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		contact.UserID, contact.FirstName, contact.LastName,
		contact.Email, contact.Phone, contact.DateOfBirth,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	contact.ID = id
	return nil
}

// Update overwrites every mutable field of the contact scoped by (id, owner).
// A zero affected-row count is not treated as absence: MySQL also reports
// zero when the new values equal the old ones, and callers re-fetch the row
// before updating.
func (r *ContactRepository) Update(ctx context.Context, contact *model.Contact) error {
	query := `UPDATE contacts SET first_name = ?, last_name = ?, email = ?, phone = ?, date_of_birth = ?
		WHERE id = ? AND user_id = ?`

	_, err := r.db.ExecContext(ctx, query,
		contact.FirstName, contact.LastName, contact.Email,
		contact.Phone, contact.DateOfBirth,
		contact.ID, contact.UserID,
	)
	return err
}

// Delete removes the contact scoped by (id, owner).
func (r *ContactRepository) Delete(ctx context.Context, ownerID, contactID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ? AND user_id = ?`, contactID, ownerID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrContactNotFound
	}

	return nil
}

func (r *ContactRepository) queryMany(ctx context.Context, query string, args ...any) ([]model.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.FirstName, &c.LastName,
			&c.Email, &c.Phone, &c.DateOfBirth,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}
