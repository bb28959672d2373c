// Package services contains server-side business logic. This file implements
// UserService, which handles registration, the login/refresh/logout session
// flow, access-token resolution, and user CRUD.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dsavelev/userpost/internal/common"
	"github.com/dsavelev/userpost/internal/dbx"
	"github.com/dsavelev/userpost/internal/server/auth"
	"github.com/dsavelev/userpost/internal/server/config"
	"github.com/dsavelev/userpost/internal/server/models"
	"github.com/dsavelev/userpost/internal/server/repositories/repomanager"
	"github.com/dsavelev/userpost/internal/server/tokens"
)

// TokenTypeBearer is the token_type discriminator returned with every pair.
const TokenTypeBearer = "bearer"

// TokenPair bundles a short-lived access token and a long-lived refresh
// token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// UserService provides authentication and account operations:
//   - Register: create users
//   - Login: verify credentials and mint a token pair
//   - Refresh: mint a new access token off a live refresh token
//   - Logout: revoke a refresh token
//   - CurrentUser: resolve a bearer access token to its user
type UserService struct {
	db                          *sql.DB
	repos                       repomanager.RepositoryManager
	tokens                      *tokens.Store
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
}

// NewUserService constructs a UserService from repositories, the refresh
// token store, and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, ts *tokens.Store, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repos:                       m,
		tokens:                      ts,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
	}
}

// Register hashes the password and creates the user. A taken email yields
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	user, err = s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login checks the credentials and returns a fresh token pair. Unknown
// email and wrong password are indistinguishable to the caller: both come
// back as common.ErrInvalidCredentials, and the unknown-email path still
// burns a bcrypt comparison so the two cases cost the same.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnCheck(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		// stored hash is unreadable, not a wrong password
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	accessToken, err := auth.GenerateToken(user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		TokenType:    TokenTypeBearer,
	}, nil
}

// Refresh validates the refresh token and mints a new access token for its
// user. Invalid and expired tokens both surface as ErrorUnauthorized; the
// caller must log in again. The refresh token itself is not rotated and
// stays usable until its own expiry or an explicit logout.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.tokens.Validate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrRefreshTokenExpired) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	accessToken, err := auth.GenerateToken(user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
	}, nil
}

// Logout revokes the refresh token. It is idempotent: an unknown or
// already-revoked token still returns nil.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// CurrentUser resolves an access token to the user it names. Every failure
// mode (bad signature, expiry, empty subject, user deleted after issuance)
// collapses to ErrorUnauthorized.
func (s *UserService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	subject, err := auth.GetSubjectFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repos.Users(s.db).GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// the token outlived its user
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// GetUser returns the user with the given id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}

// ListUsers returns one page of users. Page numbers start at 1; sizes
// outside 1..100 fall back to 10.
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]*models.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return s.repos.Users(s.db).List(ctx, (page-1)*pageSize, pageSize)
}

// UpdateUserParams carries the optional fields of a partial user update.
type UpdateUserParams struct {
	Name  *string
	Email *string
}

// UpdateUser applies a partial update inside a transaction, so the
// read-modify-write does not race a concurrent update or delete.
func (s *UserService) UpdateUser(ctx context.Context, id int64, params UpdateUserParams) (*models.User, error) {
	var updated *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if params.Name != nil {
			user.Name = *params.Name
		}
		if params.Email != nil {
			user.Email = *params.Email
		}

		updated, err = repo.Update(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteUser removes the user; the schema cascades to their posts and
// refresh tokens.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return s.repos.Users(s.db).Delete(ctx, id)
}
