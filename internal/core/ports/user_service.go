package ports

import (
	"context"

	"github.com/workdesk/accounts-api/internal/core/domain"
)

// CreateUserInput carries the data needed to register an account.
// An empty Role defaults to client.
type CreateUserInput struct {
	Email    string
	FullName string
	Phone    string
	Password string
	Role     domain.Role
}

// UpdateUserInput holds self-service profile changes. Nil fields are left
// untouched.
type UpdateUserInput struct {
	Email    *string
	FullName *string
	Phone    *string
}

// UserService defines the user directory use cases.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, user *domain.User, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) (*domain.User, error)
	ChangePassword(ctx context.Context, user *domain.User, current, next string) (bool, error)
	ListActiveCollaborators(ctx context.Context) ([]*domain.User, error)
	SetStatus(ctx context.Context, id int64, status domain.Status) (*domain.User, error)
	SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error)
}
