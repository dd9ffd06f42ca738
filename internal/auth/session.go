package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultSessionTTL is two weeks.
const DefaultSessionTTL = 14 * 24 * time.Hour

// SessionStore maps opaque session tokens to user ids.
type SessionStore interface {
	// Create starts a session for userID and returns its token.
	Create(ctx context.Context, userID uint) (string, error)
	// UserID resolves a token. ok is false for unknown or expired tokens.
	UserID(ctx context.Context, token string) (userID uint, ok bool, err error)
	Delete(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
