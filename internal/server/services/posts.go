package services

import (
	"context"
	"database/sql"

	"github.com/dsavelev/userpost/internal/dbx"
	"github.com/dsavelev/userpost/internal/server/models"
	"github.com/dsavelev/userpost/internal/server/repositories/repomanager"
)

// PostService provides post operations on behalf of existing users.
type PostService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager) *PostService {
	return &PostService{db: db, repos: m}
}

// CreatePost inserts a post for userID. The author check and the insert run
// in one transaction, so a concurrently deleted user cannot end up with an
// orphaned post. A missing user yields common.ErrorNotFound.
func (s *PostService) CreatePost(ctx context.Context, userID int64, title, content string) (*models.Post, error) {
	var created *models.Post

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Users(tx).GetByID(ctx, userID); err != nil {
			return err
		}

		var err error
		created, err = s.repos.Posts(tx).Create(ctx, &models.Post{
			Title:   title,
			Content: content,
			UserID:  userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ListPosts returns all posts.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.repos.Posts(s.db).List(ctx)
}

// ListUserPosts returns the posts of userID, or common.ErrorNotFound when
// the user does not exist.
func (s *PostService) ListUserPosts(ctx context.Context, userID int64) ([]*models.Post, error) {
	if _, err := s.repos.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repos.Posts(s.db).ListByUser(ctx, userID)
}
