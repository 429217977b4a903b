package service

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/ports"
)

type stubUserRepo struct {
	byID    map[int64]*domain.User
	nextID  int64
	findErr error
	// skipEmailCheck makes FindByEmail miss so tests can exercise the
	// store-level uniqueness path of Create.
	skipEmailCheck bool
	updates        int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) emailOwner(email string) *domain.User {
	for _, u := range r.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.emailOwner(user.Email) != nil {
		return nil, domain.ErrEmailTaken
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.byID[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.skipEmailCheck {
		return nil, domain.ErrUserNotFound
	}
	if u := r.emailOwner(email); u != nil {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context, f ports.UserFilter) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range r.byID {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.byID[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if owner := r.emailOwner(user.Email); owner != nil && owner.ID != user.ID {
		return nil, domain.ErrEmailTaken
	}
	r.updates++
	r.byID[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return u, nil
}

type stubLimiter struct {
	failures map[string]int
	max      int
	err      error
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), max: max}
}

func (l *stubLimiter) Exceeded(_ context.Context, key string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return l.failures[key] >= l.max, nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, key string) error {
	if l.err != nil {
		return l.err
	}
	l.failures[key]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	delete(l.failures, key)
	return nil
}

var errStoreDown = errors.New("store unavailable")

func testHasher() *BcryptHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

func mustTokenService(secret string) *TokenService {
	ts, err := NewTokenService(TokenConfig{Secret: secret})
	if err != nil {
		panic(err)
	}
	return ts
}

// seedUser stores a user with the given attributes and password "secret1".
func seedUser(repo *stubUserRepo, email string, role domain.Role, status domain.Status) *domain.User {
	hash, err := testHasher().Hash("secret1")
	if err != nil {
		panic(err)
	}
	u, err := repo.Create(context.Background(), &domain.User{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	})
	if err != nil {
		panic(err)
	}
	return u
}
