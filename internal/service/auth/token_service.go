// Package auth provides token issuance/verification and password hashing.
// It is the only package that understands the shape of bearer credentials;
// the rest of the application treats tokens as opaque strings.
package auth

import (
	"context"
	"time"
)

// TokenService defines operations for managing bearer authentication tokens.
// Tokens are opaque signed strings embedding a user identifier and an
// absolute expiry.
type TokenService interface {
	// Issue creates a signed token for the given user.
	Issue(ctx context.Context, userID int64) (string, error)

	// Verify validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken for expired tokens and ErrInvalidToken for
	// anything else that fails verification, so that expiry can be logged
	// distinctly while the client sees a 401 either way.
	Verify(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the verified content of a bearer token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID int64

	// IssuedAt and ExpiresAt bound the token's validity window.
	IssuedAt  time.Time
	ExpiresAt time.Time

	// ID is the unique token identifier (jti).
	ID string
}
