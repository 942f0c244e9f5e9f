package userRepo

import (
	"context"

	"hustlr/models"
)

// UserRepository defines methods for user data access. Users are keyed by phone token.
type UserRepository interface {
	// GetByPhone returns database.ErrNotFound when no user has the phone.
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// Update replaces the stored user with the same phone.
	Update(ctx context.Context, user *models.User) error
}
