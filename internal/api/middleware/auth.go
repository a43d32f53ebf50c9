package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/99minutos/auth-api/internal/api/metrics"
	"github.com/99minutos/auth-api/internal/core/domain"
	"github.com/99minutos/auth-api/internal/core/ports"
)

// Context keys populated by Auth.
const (
	ContextUserID = "user_id"
	ContextUser   = "user"
)

// UserLookup resolves a token subject to the stored user.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth verifies the bearer token and stores the caller's id in the context.
// When users is non-nil the user projection is stored as well; a subject that
// no longer exists passes with only the id set.
func Auth(verifier ports.TokenVerifier, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return domain.ErrMissingToken
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
				return domain.ErrInvalidToken
			}
			c.Set(ContextUserID, userID)

			if users != nil {
				user, err := users.FindByID(c.Request().Context(), userID)
				switch {
				case err == nil:
					c.Set(ContextUser, user.Public())
				case !errors.Is(err, domain.ErrUserNotFound):
					return oops.Code("AUTH_IDENTITY_LOOKUP_FAILED").With("user_id", userID).Wrap(err)
				}
			}

			return next(c)
		}
	}
}

// UserID returns the authenticated subject, or "" outside Auth.
func UserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}

// User returns the authenticated user projection when it was resolved.
func User(c echo.Context) *domain.User {
	u, _ := c.Get(ContextUser).(*domain.User)
	return u
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
