package posts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dsavelev/userpost/internal/dbx"
	"github.com/dsavelev/userpost/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (title, content, user_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	content := sql.NullString{String: post.Content, Valid: post.Content != ""}
	err := r.db.QueryRowContext(ctx, query, post.Title, content, post.UserID).Scan(&post.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Post, error) {
	query := `
		SELECT id, title, content, user_id FROM posts
		ORDER BY id
	`
	return r.queryPosts(ctx, query)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `
		SELECT id, title, content, user_id FROM posts
		WHERE user_id = $1
		ORDER BY id
	`
	return r.queryPosts(ctx, query, userID)
}

func (r *PostgresRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Post, 0)
	for rows.Next() {
		post := &models.Post{}
		var content sql.NullString
		if err := rows.Scan(&post.ID, &post.Title, &content, &post.UserID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		post.Content = content.String
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
