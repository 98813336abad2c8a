package model

import "time"

// User represents a registered account in the database.
// Avatar and RefreshToken are empty strings when unset (NULL columns).
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Avatar       string
	Confirmed    bool
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair represents issued access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupResponse represents the registration response: the created user plus
// a hint that a confirmation email was sent.
type SignupResponse struct {
	User   UserResponse `json:"user"`
	Detail string       `json:"detail"`
}

// RequestEmail represents a request to re-send the confirmation email.
type RequestEmail struct {
	Email string `json:"email"`
}

// NewUserResponse converts a User to its API representation.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}
