package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-api/internal/api/middleware"
	"github.com/99minutos/auth-api/internal/core/domain"
)

// ctxIdentity returns what the Auth middleware resolved for the caller. An
// empty id means the middleware did not run, which is treated as a missing
// token.
func ctxIdentity(c echo.Context) (string, *domain.User, error) {
	id := middleware.UserID(c)
	if id == "" {
		return "", nil, domain.ErrMissingToken
	}
	return id, middleware.User(c), nil
}
