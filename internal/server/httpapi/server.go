// Package httpapi exposes the service layer over a JSON HTTP API built on
// echo: user and post CRUD plus the login/refresh/logout session endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dsavelev/userpost/internal/logging"
	"github.com/dsavelev/userpost/internal/server/models"
	"github.com/dsavelev/userpost/internal/server/services"
	"github.com/labstack/echo/v4"
)

// UserService is the slice of the user service the HTTP layer needs.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, page, pageSize int) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int64, params services.UpdateUserParams) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// PostService is the slice of the post service the HTTP layer needs.
type PostService interface {
	CreatePost(ctx context.Context, userID int64, title, content string) (*models.Post, error)
	ListPosts(ctx context.Context) ([]*models.Post, error)
	ListUserPosts(ctx context.Context, userID int64) ([]*models.Post, error)
}

type Server struct {
	address string
	logger  logging.Logger
	users   UserService
	posts   PostService
	echo    *echo.Echo
}

func NewServer(address string, l logging.Logger, us UserService, ps PostService) *Server {
	s := &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		users:   us,
		posts:   ps,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.requestIDMiddleware)
	e.Use(s.requestLogMiddleware)

	s.registerRoutes(e)
	s.echo = e

	return s
}

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/health", s.health)

	e.POST("/login", s.login)
	e.POST("/refresh", s.refresh)
	e.POST("/logout", s.logout)

	e.POST("/users", s.registerUser)
	e.GET("/users", s.listUsers)
	e.GET("/users/me", s.currentUser, s.bearerAuthMiddleware)
	e.GET("/users/:id", s.getUser)
	e.PUT("/users/:id", s.updateUser)
	e.DELETE("/users/:id", s.deleteUser)

	e.POST("/users/:id/posts", s.createPost)
	e.GET("/users/:id/posts", s.listUserPosts)
	e.GET("/posts", s.listPosts)
}

// Handler returns the configured HTTP handler; tests drive it directly
// through httptest without opening a socket.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
}
