// Package posts declares the repository contract for post rows.
package posts

import (
	"context"

	"github.com/dsavelev/userpost/internal/server/models"
)

// Repository defines persistence operations for posts.
type Repository interface {
	// Create inserts a new post and returns it with the generated id.
	Create(ctx context.Context, post *models.Post) (*models.Post, error)

	// List returns all posts ordered by id.
	List(ctx context.Context) ([]*models.Post, error)

	// ListByUser returns the posts belonging to userID, ordered by id.
	ListByUser(ctx context.Context, userID int64) ([]*models.Post, error)
}
