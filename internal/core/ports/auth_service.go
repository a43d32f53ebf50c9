package ports

import (
	"context"

	"github.com/99minutos/auth-api/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// LoginInput is the DTO for AuthService.Login. Password length is not
// checked here: any non-empty password goes to the credential check.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is the identity plus a freshly minted token.
type AuthResult struct {
	ID    string
	Name  string
	Email string
	Token string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}
