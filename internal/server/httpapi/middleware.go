package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	currentUserKey    = "current_user"
	requestIDHeader   = "X-Request-Id"
	bearerScheme      = "Bearer "
	authorizationName = "Authorization"
)

// requestIDMiddleware tags every request with an id, reusing the client's
// X-Request-Id when present.
func (s *Server) requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(requestIDHeader, id)
		return next(c)
	}
}

func (s *Server) requestLogMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		s.logger.Info(c.Request().Context(), "request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(start),
			"request_id", c.Response().Header().Get(requestIDHeader),
		)

		return err
	}
}

// bearerAuthMiddleware resolves the Authorization bearer token to a user
// and stores it on the context. Any failure is a plain 401; the response
// does not say whether the token was missing, malformed, expired or
// belonged to a deleted user.
func (s *Server) bearerAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(authorizationName)
		if !strings.HasPrefix(header, bearerScheme) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		}

		user, err := s.users.CurrentUser(c.Request().Context(), strings.TrimPrefix(header, bearerScheme))
		if err != nil {
			return writeError(c, err)
		}

		c.Set(currentUserKey, user)
		return next(c)
	}
}
