package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/contacthub/contacthub-go/internal/crypto"
	"github.com/contacthub/contacthub-go/internal/model"
	"github.com/contacthub/contacthub-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailTaken         = errors.New("account already exists")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore is the persistence surface the auth service needs. It is
// satisfied by *repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ConfirmEmail(ctx context.Context, email string) error
	UpdateRefreshToken(ctx context.Context, userID int64, token string) error
}

// ConfirmationMailer delivers the email-confirmation message. It is
// satisfied by *mailer.Mailer.
type ConfirmationMailer interface {
	SendConfirmation(to, username, token string) error
}

// AuthService handles registration, email confirmation and token issuance.
type AuthService struct {
	users         UserStore
	mail          ConfirmationMailer
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	emailExpiry   time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, mail ConfirmationMailer, secret string, accessExpiry, refreshExpiry, emailExpiry time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		mail:          mail,
		jwtSecret:     secret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		emailExpiry:   emailExpiry,
	}
}

// Signup creates an unconfirmed account with a Gravatar-derived avatar and
// sends the confirmation email in the background.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	if req.Email == "" {
		return nil, ErrEmailRequired
	}
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Avatar:       crypto.GravatarURL(req.Email),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.sendConfirmation(user)
	return user, nil
}

// Login authenticates a confirmed user and issues a token pair. The refresh
// token is stored on the user row, replacing any previous session.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.TokenPair{}, ErrInvalidCredentials
		}
		return model.TokenPair{}, err
	}

	if !user.Confirmed {
		return model.TokenPair{}, ErrEmailNotConfirmed
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, err
	}
	if !match {
		return model.TokenPair{}, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh validates a refresh token against the stored one and rotates the
// pair. A mismatch clears the stored token, ending the session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := crypto.ValidateToken(refreshToken, s.jwtSecret, crypto.ScopeRefresh)
	if err != nil {
		return model.TokenPair{}, ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.TokenPair{}, ErrInvalidToken
		}
		return model.TokenPair{}, err
	}

	if user.RefreshToken != refreshToken {
		if err := s.users.UpdateRefreshToken(ctx, user.ID, ""); err != nil {
			return model.TokenPair{}, err
		}
		return model.TokenPair{}, ErrInvalidToken
	}

	return s.issueTokens(ctx, user)
}

// ConfirmEmail decodes an email-scope token and marks the account confirmed.
// Returns true when the account was already confirmed.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	claims, err := crypto.ValidateToken(token, s.jwtSecret, crypto.ScopeEmail)
	if err != nil {
		return false, ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, ErrInvalidToken
		}
		return false, err
	}

	if user.Confirmed {
		return true, nil
	}

	return false, s.users.ConfirmEmail(ctx, user.Email)
}

// ResendConfirmation re-sends the confirmation email for an unconfirmed
// account. Returns true when the account is already confirmed.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	if user.Confirmed {
		return true, nil
	}

	s.sendConfirmation(user)
	return false, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (model.TokenPair, error) {
	access, err := crypto.GenerateToken(user.ID, user.Email, crypto.ScopeAccess, s.jwtSecret, s.accessExpiry)
	if err != nil {
		return model.TokenPair{}, err
	}

	refresh, err := crypto.GenerateToken(user.ID, user.Email, crypto.ScopeRefresh, s.jwtSecret, s.refreshExpiry)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// sendConfirmation delivers the confirmation email without blocking the
// request; a delivery failure is logged and the user can ask for a re-send.
func (s *AuthService) sendConfirmation(user *model.User) {
	token, err := crypto.GenerateToken(user.ID, user.Email, crypto.ScopeEmail, s.jwtSecret, s.emailExpiry)
	if err != nil {
		slog.Warn("confirmation token generation failed", "email", user.Email, "error", err)
		return
	}

	go func() {
		if err := s.mail.SendConfirmation(user.Email, user.Username, token); err != nil {
			slog.Warn("confirmation email delivery failed", "email", user.Email, "error", err)
		}
	}()
}
