package ports

import (
	"context"

	"github.com/99minutos/auth-api/internal/core/domain"
)

// CreateUserInput carries the fields accepted by POST /api/users.
type CreateUserInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UserService defines the plain user-management use cases.
type UserService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
