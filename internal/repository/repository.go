// Package repository declares the storage contracts the services depend on.
// Implementations live in the sqlite and postgres subpackages; both keep
// profiles and posts as documents whose sub-lists (skills, experience,
// education, likes, comments) are stored whole.
//
// Lookups of a missing record return an *apperror.AppError wrapping
// apperror.ErrNotFound. Unique-key violations wrap apperror.ErrConflict.
package repository

import (
	"context"

	"github.com/sakif/devlink/internal/model"
)

type UserRepository interface {
	// Create assigns ID and CreatedAt and inserts the user.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// DeleteOne removes the first user whose field equals value and reports
	// whether one was removed. A field users do not have matches nothing.
	DeleteOne(ctx context.Context, field, value string) (bool, error)
}

type ProfileRepository interface {
	// GetByUserID returns the profile owned by userID with its owner's name
	// and avatar joined in.
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	// Create assigns ID and timestamps and inserts the profile. A second
	// profile for the same user is a conflict.
	Create(ctx context.Context, profile *model.Profile) error
	// Update replaces the stored document with profile, keyed by ID.
	Update(ctx context.Context, profile *model.Profile) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type PostRepository interface {
	// Create assigns ID (and CreatedAt when unset) and inserts the post.
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]model.Post, error)
	// Update writes the post's text, likes and comments back.
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}

// Store is a document store holding all three collections.
type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Posts() PostRepository
	Ping(ctx context.Context) error
	Close() error
}
