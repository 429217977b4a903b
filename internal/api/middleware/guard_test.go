package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/service"
)

func policyResolver() *stubResolver {
	return &stubResolver{users: map[string]*domain.User{
		"admin":          {ID: 1, Role: domain.RoleAdmin, Status: domain.StatusActive},
		"collaborator":   {ID: 2, Role: domain.RoleCollaborator, Status: domain.StatusActive},
		"pending-collab": {ID: 3, Role: domain.RoleCollaborator, Status: domain.StatusPending},
	}}
}

func TestAuthorize_PolicyChain(t *testing.T) {
	signedIn := service.NewGuard(policyResolver())

	tests := []struct {
		name   string
		guard  *service.Guard
		token  string
		policy string // empty = allowed
	}{
		{"admin passes admin", signedIn.Then(service.RequireAdmin), "admin", ""},
		{"active collaborator denied admin", signedIn.Then(service.RequireAdmin), "collaborator", service.PolicyAdmin},
		{"active collaborator passes collaborator", signedIn.Then(service.RequireCollaborator), "collaborator", ""},
		{"pending collaborator denied", signedIn.Then(service.RequireCollaborator), "pending-collab", service.PolicyCollaborator},
		{"pending collaborator denied active", signedIn.Then(service.RequireActive, service.RequireCollaborator), "pending-collab", service.PolicyActive},
		{"no policy only authenticates", signedIn, "pending-collab", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newCtx("Bearer " + tt.token)
			called := false
			handler := Authorize(tt.guard)(func(c echo.Context) error {
				called = true
				if CurrentUser(c) == nil {
					t.Fatalf("user not stored in context")
				}
				return c.NoContent(http.StatusOK)
			})

			err := handler(c)
			if tt.policy == "" {
				if err != nil || !called || rec.Code != http.StatusOK {
					t.Fatalf("expected pass, got err=%v called=%v code=%d", err, called, rec.Code)
				}
				return
			}
			var denied *domain.AccessDeniedError
			if !errors.As(err, &denied) || denied.Policy != tt.policy {
				t.Fatalf("expected %s denial, got %v", tt.policy, err)
			}
			if called {
				t.Fatalf("next handler must not run on denial")
			}
		})
	}
}

func TestAuthorize_ResolutionFailsBeforePolicies(t *testing.T) {
	c, _ := newCtx("Bearer unknown")
	handler := Authorize(service.NewGuard(policyResolver(), service.RequireAdmin))(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	if err := handler(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
