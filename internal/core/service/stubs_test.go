package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/99minutos/auth-api/internal/core/domain"
)

// stubUserRepo is an in-memory store that enforces email uniqueness the way
// the unique index does.
type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	nextID  int
	findErr error
	failErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("user-%d", r.nextID)
	copy.CreatedAt = time.Now().UTC()
	copy.UpdatedAt = copy.CreatedAt
	r.users[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]*domain.User, 0, len(r.users))
	for i := 1; i <= r.nextID; i++ {
		if u, ok := r.users[fmt.Sprintf("user-%d", i)]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

// stubHasher marks hashes with a prefix and counts verifications.
type stubHasher struct {
	verifies atomic.Int32
}

func (h *stubHasher) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", domain.NewValidationError("Password must not exceed 72 bytes")
	}
	return "hashed:" + password, nil
}

func (h *stubHasher) Verify(password, hash string) bool {
	h.verifies.Add(1)
	return hash == "hashed:"+password
}

type stubTokens struct {
	err error
}

func (s stubTokens) Issue(subjectID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + subjectID, nil
}

var errStoreDown = errors.New("store down")

func subjectOf(token string) string {
	return strings.TrimPrefix(token, "token-for-")
}
