package model

import "time"

// Contact represents a contact record owned by a single user. Every read and
// write is scoped by UserID; a contact is never visible across owners.
type Contact struct {
	ID          int64
	UserID      int64
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth Date
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContactRequest represents the full field set for creating or replacing a
// contact. Updates overwrite every field; there is no partial patch.
type ContactRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth Date   `json:"date_of_birth"`
}

// ContactResponse represents a contact in API responses.
type ContactResponse struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	DateOfBirth Date      `json:"date_of_birth"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewContactResponse converts a Contact to its API representation.
func NewContactResponse(c *Contact) ContactResponse {
	return ContactResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		DateOfBirth: c.DateOfBirth,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ContactsToResponse converts a slice of contacts, preserving order.
func ContactsToResponse(contacts []Contact) []ContactResponse {
	result := make([]ContactResponse, len(contacts))
	for i := range contacts {
		result[i] = NewContactResponse(&contacts[i])
	}
	return result
}
