package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-api/internal/core/domain"
	"github.com/99minutos/auth-api/internal/core/ports"
)

func newTestAuthService(t *testing.T, repo *stubUserRepo, hasher *stubHasher) *AuthService {
	t.Helper()
	svc, err := NewAuthService(repo, hasher, stubTokens{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}
	return svc
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo, &stubHasher{})

	res, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "  Ana ", Email: " A@X.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Name != "Ana" || res.Email != "a@x.com" {
		t.Fatalf("unexpected identity: %+v", res)
	}
	if subjectOf(res.Token) != res.ID {
		t.Fatalf("token subject %q does not match id %q", subjectOf(res.Token), res.ID)
	}

	stored, _ := repo.FindByID(context.Background(), res.ID)
	if stored.PasswordHash != "hashed:secret1" {
		t.Fatalf("expected hashed password, got %q", stored.PasswordHash)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), &stubHasher{})

	tests := []struct {
		name string
		in   ports.RegisterInput
		want string
	}{
		{"missing name", ports.RegisterInput{Email: "a@x.com", Password: "secret1"}, "Name is required"},
		{"blank name", ports.RegisterInput{Name: "   ", Email: "a@x.com", Password: "secret1"}, "Name is required"},
		{"short name", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"}, "Name must be at least 2 characters"},
		{"bad email", ports.RegisterInput{Name: "Ana", Email: "nope", Password: "secret1"}, "Invalid email format"},
		{"short password", ports.RegisterInput{Name: "Ana", Email: "a@x.com", Password: "123"}, "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Message != tt.want {
				t.Fatalf("message = %q, want %q", ve.Message, tt.want)
			}
		})
	}
}

func TestAuthService_Register_PasswordTooLongForHasher(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), &stubHasher{})

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Ana", Email: "a@x.com", Password: strings.Repeat("p", 80),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), &stubHasher{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Name: "Ana", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	_, err := svc.Register(ctx, ports.RegisterInput{Name: "Ana", Email: "A@X.COM", Password: "secret1"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentDuplicate(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), &stubHasher{})
	emails := []string{"race@x.com", "RACE@x.com"}

	var wg sync.WaitGroup
	errs := make([]error, len(emails))
	for i, email := range emails {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), ports.RegisterInput{Name: "Racer", Email: email, Password: "secret1"})
		}(i, email)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrEmailTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("expected one success and one conflict, got %d/%d", ok, conflicts)
	}
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.failErr = errStoreDown
	svc := newTestAuthService(t, repo, &stubHasher{})

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Ana", Email: "a@x.com", Password: "secret1"})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrValidation) {
		t.Fatalf("store failure must not look like a client error: %v", err)
	}
}

func TestAuthService_Register_TokenFailure(t *testing.T) {
	errSign := errors.New("sign failed")
	svc, err := NewAuthService(newStubUserRepo(), &stubHasher{}, stubTokens{err: errSign}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}

	_, err = svc.Register(context.Background(), ports.RegisterInput{Name: "Ana", Email: "a@x.com", Password: "secret1"})
	if !errors.Is(err, errSign) {
		t.Fatalf("expected sign error, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), &stubHasher{})
	ctx := context.Background()

	reg, err := svc.Register(ctx, ports.RegisterInput{Name: "Ana", Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	res, err := svc.Login(ctx, ports.LoginInput{Email: " A@x.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.ID != reg.ID || res.Name != "Ana" || res.Token == "" {
		t.Fatalf("unexpected login result: %+v", res)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	hasher := &stubHasher{}
	svc := newTestAuthService(t, newStubUserRepo(), hasher)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Name: "Ana", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, ports.LoginInput{Email: "a@x.com", Password: "wrong1"})
	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassword)
	}

	before := hasher.verifies.Load()
	_, unknown := svc.Login(ctx, ports.LoginInput{Email: "ghost@x.com", Password: "secret1"})
	if !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknown)
	}
	if wrongPassword.Error() != unknown.Error() {
		t.Fatalf("errors differ: %q vs %q", wrongPassword, unknown)
	}
	if hasher.verifies.Load() != before+1 {
		t.Fatalf("expected a dummy verification for unknown email")
	}
}

func TestAuthService_Login_Validation(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), &stubHasher{})

	_, err := svc.Login(context.Background(), ports.LoginInput{Email: "not-an-email", Password: "secret1"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Message != "Invalid email format" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestAuthService_Login_ShortPasswordReachesCredentialCheck(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), &stubHasher{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Name: "Ana", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := svc.Login(ctx, ports.LoginInput{Email: "a@x.com", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err := svc.Login(ctx, ports.LoginInput{Email: "a@x.com"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Message != "Password is required" {
		t.Fatalf("expected password required error, got %v", err)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errStoreDown
	svc := newTestAuthService(t, repo, &stubHasher{})

	_, err := svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "secret1"})
	if !errors.Is(err, errStoreDown) || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), &stubHasher{})
	ctx := context.Background()

	reg, err := svc.Register(ctx, ports.RegisterInput{Name: "Ana", Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	user, err := svc.CurrentUser(ctx, reg.ID)
	if err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatalf("expected hash to be stripped")
	}
	if user.Email != "a@x.com" {
		t.Fatalf("unexpected email: %s", user.Email)
	}

	if _, err := svc.CurrentUser(ctx, "user-404"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
