package repository

import (
	"context"
	"errors"

	"github.com/ideilsonsouza/backend/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when creating a user with an email
	// that already exists (case-insensitively).
	ErrDuplicateEmail = errors.New("email already taken")
)

// UserRepository defines the interface for user persistence.
// Emails are expected to be lowercased by callers before lookups.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
