package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/99minutos/auth-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs 5xx at error level and 4xx at warn, without leaking internals.
//   - Renders {"success": false, "message": "..."}; when exposeStack is set
//     the error detail is included as "stack".
func NewHTTPErrorHandler(log zerolog.Logger, exposeStack bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, c)
		logError(log, err, code, c)

		resp := errorResponse{Success: false, Message: msg}
		if exposeStack {
			resp.Stack = stackOf(err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, c echo.Context) (int, string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "User with this email already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, "No token provided"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	}

	// Echo's own errors (bind failures, unknown routes, rate limiting).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed {
			return http.StatusNotFound, "Route not found: " + c.Request().RequestURI
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	return http.StatusInternalServerError, "Internal Server Error"
}

func logError(log zerolog.Logger, err error, code int, c echo.Context) {
	evt := log.Warn()
	if code >= http.StatusInternalServerError {
		evt = log.Error()
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		evt = evt.Interface("code", oopsErr.Code())
	}
	evt.Err(err).
		Int("status", code).
		Str("method", c.Request().Method).
		Str("uri", c.Request().RequestURI).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("request failed")
}

func stackOf(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if st := oopsErr.Stacktrace(); st != "" {
			return st
		}
	}
	return err.Error()
}
