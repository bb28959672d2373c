// Package users declares the repository contract for account rows.
package users

import (
	"context"

	"github.com/dsavelev/userpost/internal/server/models"
)

// Repository defines persistence operations for users.
type Repository interface {
	// Create inserts a new user and returns it with the generated id.
	// A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with the given email, or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// List returns users ordered by id, skipping offset rows and returning
	// at most limit.
	List(ctx context.Context, offset, limit int) ([]*models.User, error)

	// Update rewrites name and email of an existing user.
	// Returns common.ErrorNotFound when the row is gone.
	Update(ctx context.Context, user *models.User) (*models.User, error)

	// Delete removes a user by id; refresh tokens and posts go with it via
	// the schema's cascade rules. Returns common.ErrorNotFound for a
	// missing row.
	Delete(ctx context.Context, id int64) error
}
