package service

import (
	"context"

	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/ports"
)

// Policy inspects a resolved user and returns nil to allow or an
// *domain.AccessDeniedError to deny.
type Policy func(user *domain.User) error

const (
	PolicyActive       = "active"
	PolicyAdmin        = "admin"
	PolicyCollaborator = "collaborator"
)

func deny(policy, reason string) error {
	return &domain.AccessDeniedError{Policy: policy, Reason: reason}
}

// RequireActive allows only validated accounts, whatever their role.
func RequireActive(user *domain.User) error {
	if user.Status != domain.StatusActive {
		return deny(PolicyActive, "account not yet validated")
	}
	return nil
}

// RequireAdmin allows only administrators. Status is not checked.
func RequireAdmin(user *domain.User) error {
	if user.Role != domain.RoleAdmin {
		return deny(PolicyAdmin, "admin only")
	}
	return nil
}

// RequireCollaborator allows active collaborators. The role is checked first
// so a pending client is told about the role, not the status.
func RequireCollaborator(user *domain.User) error {
	if user.Role != domain.RoleCollaborator {
		return deny(PolicyCollaborator, "collaborator only")
	}
	if user.Status != domain.StatusActive {
		return deny(PolicyCollaborator, "collaborator account not active")
	}
	return nil
}

// Check runs policies in order and returns the first denial.
func Check(user *domain.User, policies ...Policy) error {
	for _, p := range policies {
		if err := p(user); err != nil {
			return err
		}
	}
	return nil
}

// Guard resolves the caller once and then applies an ordered policy chain.
type Guard struct {
	resolver ports.IdentityResolver
	policies []Policy
}

func NewGuard(resolver ports.IdentityResolver, policies ...Policy) *Guard {
	return &Guard{resolver: resolver, policies: policies}
}

// Then returns a new Guard with extra policies appended to the chain.
func (g *Guard) Then(policies ...Policy) *Guard {
	chain := make([]Policy, 0, len(g.policies)+len(policies))
	chain = append(chain, g.policies...)
	chain = append(chain, policies...)
	return &Guard{resolver: g.resolver, policies: chain}
}

// Authorize resolves token and enforces the chain. Resolution errors are
// returned untouched.
func (g *Guard) Authorize(ctx context.Context, token string) (*domain.User, error) {
	user, err := g.resolver.ResolveCurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := Check(user, g.policies...); err != nil {
		return nil, err
	}
	return user, nil
}
