package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/contacthub/contacthub-go/internal/crypto"
	"github.com/contacthub/contacthub-go/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// UserLoader resolves a user ID from a validated token into a full account.
// It is satisfied by *repository.UserRepository.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// JWTAuth returns middleware that validates a Bearer access token, loads the
// account and requires it to be confirmed. The resolved user is stored in
// the request context; downstream handlers never see credentials.
func JWTAuth(secret string, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, err := crypto.ValidateToken(token, secret, crypto.ScopeAccess)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "could not validate credentials")
				return
			}
			if !user.Confirmed {
				writeJSONError(w, http.StatusUnauthorized, "email not confirmed")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
