// Package tokens implements the refresh-token store: issuing opaque
// long-lived tokens, validating them against the clock, and revoking them.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dsavelev/userpost/internal/common"
	"github.com/dsavelev/userpost/internal/server/config"
	"github.com/dsavelev/userpost/internal/server/models"
	"github.com/dsavelev/userpost/internal/server/repositories/repomanager"
)

// tokenBytes is the entropy of an issued token; the stored string is twice
// as long in hex.
const tokenBytes = 32

// Store issues and validates persisted refresh tokens. A user may hold any
// number of live tokens at once (one per device); every issuance is an
// independent insert.
type Store struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	validity time.Duration
}

func NewStore(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *Store {
	return &Store{
		db:       db,
		repos:    m,
		validity: cfg.RefreshTokenValidityDuration,
	}
}

// Issue creates, persists and returns a new refresh token for userID.
// The token value is crypto-random; the UNIQUE constraint on the token
// column backs up its global uniqueness.
func (s *Store) Issue(ctx context.Context, userID int64) (*models.RefreshToken, error) {
	value, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	token := &models.RefreshToken{
		UserID:  userID,
		Token:   value,
		Expires: time.Now().Add(s.validity),
	}

	token, err = s.repos.RefreshTokens(s.db).Create(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("error persisting refresh token: %w", err)
	}

	return token, nil
}

// Lookup returns the stored row for the exact token string, or
// common.ErrorNotFound.
func (s *Store) Lookup(ctx context.Context, token string) (*models.RefreshToken, error) {
	return s.repos.RefreshTokens(s.db).Find(ctx, token)
}

// Validate looks the token up and checks its expiry. An unknown token
// yields common.ErrInvalidToken, a known-but-stale one
// common.ErrRefreshTokenExpired. Expired rows are left in place: expiry is
// advisory and only Revoke deletes.
func (s *Store) Validate(ctx context.Context, token string) (*models.RefreshToken, error) {
	found, err := s.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if found.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	return found, nil
}

// Revoke deletes the token row. Revoking an unknown token is a no-op, and
// other tokens held by the same user are untouched.
func (s *Store) Revoke(ctx context.Context, token string) error {
	if err := s.repos.RefreshTokens(s.db).Delete(ctx, token); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}
