package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/ports"
)

// stubUserService implements ports.UserService. Unset funcs panic, which
// flags any call a test did not expect.
type stubUserService struct {
	listFn          func(ctx context.Context) ([]*domain.User, error)
	createFn        func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	updateFn        func(ctx context.Context, user *domain.User, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn        func(ctx context.Context, id int64) (*domain.User, error)
	changePassFn    func(ctx context.Context, user *domain.User, current, next string) (bool, error)
	collaboratorsFn func(ctx context.Context) ([]*domain.User, error)
	setStatusFn     func(ctx context.Context, id int64, status domain.Status) (*domain.User, error)
	setRoleFn       func(ctx context.Context, id int64, role domain.Role) (*domain.User, error)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	panic("unexpected GetByEmail")
}

func (s *stubUserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	panic("unexpected GetByID")
}

func (s *stubUserService) Update(ctx context.Context, user *domain.User, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, user, in)
}

func (s *stubUserService) Delete(ctx context.Context, id int64) (*domain.User, error) {
	return s.deleteFn(ctx, id)
}

func (s *stubUserService) ChangePassword(ctx context.Context, user *domain.User, current, next string) (bool, error) {
	return s.changePassFn(ctx, user, current, next)
}

func (s *stubUserService) ListActiveCollaborators(ctx context.Context) ([]*domain.User, error) {
	return s.collaboratorsFn(ctx)
}

func (s *stubUserService) SetStatus(ctx context.Context, id int64, status domain.Status) (*domain.User, error) {
	return s.setStatusFn(ctx, id, status)
}

func (s *stubUserService) SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	return s.setRoleFn(ctx, id, role)
}

// withUser mimics the Authorize middleware.
func withUser(c echo.Context, u *domain.User) echo.Context {
	c.Set("user", u)
	return c
}

func activeUser(role domain.Role) *domain.User {
	return &domain.User{ID: 7, Email: "carol@example.com", FullName: "Carol", Role: role, Status: domain.StatusActive}
}
