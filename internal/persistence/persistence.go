// Package persistence provides the user account store. A PostgreSQL
// implementation backs deployments; an in-memory implementation backs
// development and tests when no DATABASE_URL is configured.
package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"prepwise/internal/core"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when creating a user whose username
	// already exists.
	ErrUsernameTaken = errors.New("username already taken")
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *core.User) error
	GetUserByUsername(ctx context.Context, username string) (*core.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*core.User, error)
	Close() error
}
