package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/models"
)

// ErrSessionNotFound is returned by Get when the id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps login sessions outside the item collection.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// NewOAuthState returns the value round-tripped through the provider to
// bind a callback to the session that started the login.
func NewOAuthState() string {
	return uuid.NewString()
}
