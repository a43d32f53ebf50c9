package ports

import (
	"context"

	"github.com/99minutos/auth-api/internal/core/domain"
)

// UserRepository is the credential store. Implementations must enforce email
// uniqueness and report a violation as domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
