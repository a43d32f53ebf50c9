package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-api/internal/core/ports"
)

// successResponse is the envelope wrapped around every 2xx body.
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorResponse documents the envelope rendered by the API error handler.
type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Invalid credentials"`
	Stack   string `json:"stack,omitempty"`
}

// --- Request / Response types ---

type registerRequest struct {
	Name     string `json:"name"     example:"Ana"`
	Email    string `json:"email"    example:"ana@example.com"`
	Password string `json:"password" example:"secret1"`
}

type loginRequest struct {
	Email    string `json:"email"    example:"ana@example.com"`
	Password string `json:"password" example:"secret1"`
}

type createUserRequest struct {
	Name     string `json:"name"     example:"Bo"`
	Email    string `json:"email"    example:"bo@example.com"`
	Password string `json:"password" example:"secret1"`
}

type authData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

func toAuthData(r *ports.AuthResult) authData {
	return authData{ID: r.ID, Name: r.Name, Email: r.Email, Token: r.Token}
}

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, successResponse{Success: true, Data: data})
}
