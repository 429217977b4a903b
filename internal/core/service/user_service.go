package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/ports"
)

// ErrInvalidInput is returned when required account fields are missing.
var ErrInvalidInput = errors.New("email, full name and password are required")

// UserService implements ports.UserService.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, log: log, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx, ports.UserFilter{})
}

// Create registers a new account. Status is always pending regardless of the
// input; role defaults to client.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.FullName) == "" || in.Password == "" {
		return nil, ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = domain.RoleClient
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	// Fast path only: the store's unique index is what actually prevents a
	// concurrent duplicate.
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        in.Email,
		FullName:     in.FullName,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrEmailTaken) {
			s.log.Error().Err(err).Str("email", in.Email).Msg("failed to create user")
		}
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies the set fields of in to user. Changing the email to one held
// by a different account fails with domain.ErrEmailTaken.
func (s *UserService) Update(ctx context.Context, user *domain.User, in ports.UpdateUserInput) (*domain.User, error) {
	next := *user

	if in.Email != nil && *in.Email != user.Email {
		if strings.TrimSpace(*in.Email) == "" {
			return nil, ErrInvalidInput
		}
		existing, err := s.repo.FindByEmail(ctx, *in.Email)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, domain.ErrEmailTaken
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return nil, fmt.Errorf("check email: %w", err)
		}
		next.Email = *in.Email
	}
	if in.FullName != nil {
		if strings.TrimSpace(*in.FullName) == "" {
			return nil, ErrInvalidInput
		}
		next.FullName = *in.FullName
	}
	if in.Phone != nil {
		next.Phone = *in.Phone
	}

	next.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, &next)
}

// Delete removes the account and its dependent work requests.
func (s *UserService) Delete(ctx context.Context, id int64) (*domain.User, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted")
	return deleted, nil
}

// ChangePassword replaces the stored hash only when current matches. A wrong
// current password returns false and leaves the account untouched.
func (s *UserService) ChangePassword(ctx context.Context, user *domain.User, current, next string) (bool, error) {
	if !s.hasher.Verify(current, user.PasswordHash) {
		return false, nil
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return false, err
	}

	updated := *user
	updated.PasswordHash = hash
	updated.UpdatedAt = s.now().UTC()
	if _, err := s.repo.Update(ctx, &updated); err != nil {
		return false, fmt.Errorf("change password: %w", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = updated.UpdatedAt
	return true, nil
}

func (s *UserService) ListActiveCollaborators(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx, ports.UserFilter{
		Role:   domain.RoleCollaborator,
		Status: domain.StatusActive,
	})
}

// SetStatus is the administrative status transition.
func (s *UserService) SetStatus(ctx context.Context, id int64, status domain.Status) (*domain.User, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.mutate(ctx, id, func(u *domain.User) { u.Status = status })
}

// SetRole is the administrative role change.
func (s *UserService) SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	return s.mutate(ctx, id, func(u *domain.User) { u.Role = role })
}

func (s *UserService) mutate(ctx context.Context, id int64, fn func(*domain.User)) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(user)
	user.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("user_id", id).
		Str("role", string(updated.Role)).
		Str("status", string(updated.Status)).
		Msg("user updated by admin")
	return updated, nil
}

// EnsureAdmin makes sure an active administrator with email exists. An
// existing account is promoted and activated; its password is left alone.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == domain.RoleAdmin && existing.IsActive() {
			return existing, nil
		}
		return s.mutate(ctx, existing.ID, func(u *domain.User) {
			u.Role = domain.RoleAdmin
			u.Status = domain.StatusActive
		})
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	if fullName == "" {
		fullName = "Administrator"
	}
	created, err := s.Create(ctx, ports.CreateUserInput{
		Email:    email,
		FullName: fullName,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	return s.SetStatus(ctx, created.ID, domain.StatusActive)
}
