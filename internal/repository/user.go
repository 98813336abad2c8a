package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/contacthub/contacthub-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, avatar, confirmed, refresh_token, created_at, updated_at`

// Create inserts a new user and sets the generated ID on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (username, email, password_hash, avatar) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, nullable(user.Avatar))
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	user.ID = id
	return nil
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// ConfirmEmail flips the confirmed flag for the user with the given email.
// MySQL reports zero affected rows for a no-change update, so callers verify
// existence beforehand rather than relying on the row count here.
func (r *UserRepository) ConfirmEmail(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET confirmed = TRUE WHERE email = ?`, email)
	return err
}

// UpdateRefreshToken replaces the stored refresh token; an empty token clears it.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID int64, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET refresh_token = ? WHERE id = ?`, nullable(token), userID)
	return err
}

// UpdateAvatar stores a new avatar URL and returns the updated user.
func (r *UserRepository) UpdateAvatar(ctx context.Context, userID int64, url string) (*model.User, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET avatar = ? WHERE id = ?`, url, userID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	var avatar, refreshToken sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&avatar, &user.Confirmed, &refreshToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Avatar = avatar.String
	user.RefreshToken = refreshToken.String
	return user, nil
}

// nullable converts an empty string to a SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
