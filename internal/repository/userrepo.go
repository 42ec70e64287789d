// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/foodgram/internal/model"
)

// UserRepository provides access to accounts.
type UserRepository interface {
	// Create inserts a new user and fills its ID and CreatedAt.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByEmail loads a user by email (the login identifier).
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, hash string) error
	// SetStaff grants or revokes staff rights by email.
	SetStaff(ctx context.Context, email string, staff bool) error
	// Profile loads a user as seen by viewerID (is_subscribed).
	Profile(ctx context.Context, viewerID, id int64) (*model.Profile, error)
	// List returns a page of users ordered by username and the total count.
	List(ctx context.Context, viewerID int64, page model.Page) ([]model.Profile, int, error)
}

// FollowRepository manages subscriptions between users.
type FollowRepository interface {
	// Create stores the (user, author) edge; the store rejects duplicates and self-follow.
	Create(ctx context.Context, userID, authorID int64) error
	// Delete removes the edge or returns errs.ErrNotFound.
	Delete(ctx context.Context, userID, authorID int64) error
	// ListAuthors returns a page of authors followed by userID and the total count.
	ListAuthors(ctx context.Context, userID int64, page model.Page) ([]model.Profile, int, error)
}

// TokenRepository keeps the ids of access tokens revoked before they expire.
type TokenRepository interface {
	// Revoke records jti until expiresAt. Revoking twice is not an error.
	Revoke(ctx context.Context, jti uuid.UUID, expiresAt time.Time) error
	// IsRevoked reports whether jti was revoked.
	IsRevoked(ctx context.Context, jti uuid.UUID) (bool, error)
}
