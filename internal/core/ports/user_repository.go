package ports

import (
	"context"

	"github.com/workdesk/accounts-api/internal/core/domain"
)

// UserFilter narrows List. Zero values match everything.
type UserFilter struct {
	Role   domain.Role
	Status domain.Status
}

// UserRepository defines the persistence operations for user accounts.
// Implementations must enforce email uniqueness themselves and report a
// violation as domain.ErrEmailTaken; lookups that miss return
// domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	// Update persists every mutable field of user, matched by ID.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	// Delete removes the user together with the work requests it sent or
	// received and returns the removed record.
	Delete(ctx context.Context, id int64) (*domain.User, error)
}
