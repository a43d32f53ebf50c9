package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/99minutos/auth-api/internal/core/domain"
	"github.com/99minutos/auth-api/internal/core/ports"
	"github.com/99minutos/auth-api/internal/pkg/validation"
)

// dummyPassword is hashed once at construction so that logins for unknown
// emails still pay for a bcrypt comparison.
const dummyPassword = "dummy-password-for-timing"

// AuthService implements registration, login and identity resolution.
type AuthService struct {
	repo      ports.UserRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenIssuer
	validate  *validation.Validator
	logger    zerolog.Logger
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	logger zerolog.Logger,
) (*AuthService, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, oops.Code("AUTH_DUMMY_HASH_FAILED").Wrap(err)
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		validate:  validation.New(),
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Register creates an account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	// The unique index still decides races; this only saves a hash.
	_, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, oops.Code("AUTH_LOOKUP_FAILED").With("email", in.Email).Wrap(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, oops.Code("AUTH_CREATE_FAILED").With("email", in.Email).Wrap(err)
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, oops.Code("AUTH_TOKEN_FAILED").With("user_id", created.ID).Wrap(err)
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return authResult(created, token), nil
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(in.Password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").With("email", in.Email).Wrap(err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, oops.Code("AUTH_TOKEN_FAILED").With("user_id", user.ID).Wrap(err)
	}

	s.logger.Debug().Str("user_id", user.ID).Msg("user logged in")
	return authResult(user, token), nil
}

// CurrentUser loads the caller's public projection.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").With("user_id", userID).Wrap(err)
	}
	return user.Public(), nil
}

func authResult(u *domain.User, token string) *ports.AuthResult {
	return &ports.AuthResult{ID: u.ID, Name: u.Name, Email: u.Email, Token: token}
}
