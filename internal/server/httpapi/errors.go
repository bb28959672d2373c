package httpapi

import (
	"errors"
	"net/http"

	"github.com/dsavelev/userpost/internal/common"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service sentinels to HTTP statuses. Credential and token
// failures come back with fixed messages so the response never reveals
// whether an email exists or why a token was rejected.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, common.ErrorUnauthorized):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, common.ErrorNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		return c.JSON(http.StatusConflict, errorResponse{Error: "already exists"})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
