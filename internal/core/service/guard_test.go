package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/workdesk/accounts-api/internal/core/domain"
)

func deniedBy(t *testing.T, err error, policy string) *domain.AccessDeniedError {
	t.Helper()
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	var denied *domain.AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected *AccessDeniedError, got %T", err)
	}
	if denied.Policy != policy {
		t.Fatalf("expected policy %q, got %q", policy, denied.Policy)
	}
	return denied
}

func TestPolicies(t *testing.T) {
	tests := []struct {
		name   string
		user   domain.User
		policy Policy
		deny   string // empty = allowed
	}{
		{"active allows active client", domain.User{Role: domain.RoleClient, Status: domain.StatusActive}, RequireActive, ""},
		{"active denies pending admin", domain.User{Role: domain.RoleAdmin, Status: domain.StatusPending}, RequireActive, PolicyActive},
		{"active denies pending collaborator", domain.User{Role: domain.RoleCollaborator, Status: domain.StatusPending}, RequireActive, PolicyActive},
		{"active denies rejected", domain.User{Role: domain.RoleClient, Status: domain.StatusRejected}, RequireActive, PolicyActive},
		{"admin allows admin", domain.User{Role: domain.RoleAdmin, Status: domain.StatusActive}, RequireAdmin, ""},
		{"admin ignores status", domain.User{Role: domain.RoleAdmin, Status: domain.StatusInactive}, RequireAdmin, ""},
		{"admin denies active collaborator", domain.User{Role: domain.RoleCollaborator, Status: domain.StatusActive}, RequireAdmin, PolicyAdmin},
		{"collaborator allows active collaborator", domain.User{Role: domain.RoleCollaborator, Status: domain.StatusActive}, RequireCollaborator, ""},
		{"collaborator denies admin", domain.User{Role: domain.RoleAdmin, Status: domain.StatusActive}, RequireCollaborator, PolicyCollaborator},
		{"collaborator denies pending collaborator", domain.User{Role: domain.RoleCollaborator, Status: domain.StatusPending}, RequireCollaborator, PolicyCollaborator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			err := tt.policy(&user)
			if tt.deny == "" {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				return
			}
			deniedBy(t, err, tt.deny)
		})
	}
}

func TestRequireCollaborator_DistinctReasons(t *testing.T) {
	wrongRole := RequireCollaborator(&domain.User{Role: domain.RoleClient, Status: domain.StatusActive})
	inactive := RequireCollaborator(&domain.User{Role: domain.RoleCollaborator, Status: domain.StatusInactive})

	a := deniedBy(t, wrongRole, PolicyCollaborator)
	b := deniedBy(t, inactive, PolicyCollaborator)
	if a.Reason == b.Reason {
		t.Fatalf("expected distinct reasons, both were %q", a.Reason)
	}
}

func TestCheck_FirstDenialWins(t *testing.T) {
	user := &domain.User{Role: domain.RoleClient, Status: domain.StatusPending}
	deniedBy(t, Check(user, RequireActive, RequireAdmin), PolicyActive)
	deniedBy(t, Check(user, RequireAdmin, RequireActive), PolicyAdmin)
	if err := Check(user); err != nil {
		t.Fatalf("empty chain must allow, got %v", err)
	}
}

func TestGuard_Authorize(t *testing.T) {
	repo := newStubUserRepo()
	ts := mustTokenService("secret")
	resolver := NewIdentityResolver(ts, repo, zerolog.Nop())

	admin := seedUser(repo, "admin@x.com", domain.RoleAdmin, domain.StatusActive)
	collab := seedUser(repo, "collab@x.com", domain.RoleCollaborator, domain.StatusActive)

	adminToken, _ := ts.IssueFor(admin)
	collabToken, _ := ts.IssueFor(collab)

	adminGuard := NewGuard(resolver, RequireAdmin)

	got, err := adminGuard.Authorize(context.Background(), adminToken)
	if err != nil {
		t.Fatalf("admin denied: %v", err)
	}
	if got.ID != admin.ID {
		t.Fatalf("unexpected user %+v", got)
	}

	_, err = adminGuard.Authorize(context.Background(), collabToken)
	deniedBy(t, err, PolicyAdmin)

	if _, err := adminGuard.Authorize(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected resolution error to propagate, got %v", err)
	}

	chained := NewGuard(resolver, RequireActive).Then(RequireCollaborator)
	if _, err := chained.Authorize(context.Background(), collabToken); err != nil {
		t.Fatalf("chained guard denied active collaborator: %v", err)
	}
	_, err = chained.Authorize(context.Background(), adminToken)
	deniedBy(t, err, PolicyCollaborator)
}

func TestGuard_ThenDoesNotMutateParent(t *testing.T) {
	base := NewGuard(nil, RequireActive)
	_ = base.Then(RequireAdmin)
	if len(base.policies) != 1 {
		t.Fatalf("Then mutated the parent chain: %d policies", len(base.policies))
	}
}
