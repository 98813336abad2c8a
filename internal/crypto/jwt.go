package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInvalidScope = errors.New("invalid scope for token")
)

// TokenScope restricts what a token may be used for. Access tokens
// authenticate API calls, refresh tokens mint new pairs, email tokens
// confirm ownership of an address.
type TokenScope string

const (
	ScopeAccess  TokenScope = "access_token"
	ScopeRefresh TokenScope = "refresh_token"
	ScopeEmail   TokenScope = "email_token"
)

// Claims represents the JWT claims for ContactHub tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64      `json:"user_id"`
	Scope  TokenScope `json:"scope"`
}

// GenerateToken creates a signed token for the given user and scope.
// The subject is the user's email, matching what ValidateToken returns.
func GenerateToken(userID int64, email string, scope TokenScope, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "contacthub",
			Audience:  jwt.ClaimStrings{"contacthub-api"},
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Scope:  scope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a token, requiring the given scope.
// A structurally valid token presented with the wrong scope is rejected
// with ErrInvalidScope.
func ValidateToken(tokenString, secret string, scope TokenScope) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer("contacthub"), jwt.WithAudience("contacthub-api"))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Scope != scope {
		return nil, ErrInvalidScope
	}

	return claims, nil
}
