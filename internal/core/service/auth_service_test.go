package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/workdesk/accounts-api/internal/core/domain"
)

func newAuthSvc(repo *stubUserRepo, limiter *stubLimiter) (*AuthService, *TokenService) {
	ts := mustTokenService("secret")
	if limiter == nil {
		return NewAuthService(repo, testHasher(), ts, nil, zerolog.Nop()), ts
	}
	return NewAuthService(repo, testHasher(), ts, limiter, zerolog.Nop()), ts
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "carol@x.com", domain.RoleAdmin, domain.StatusActive)
	svc, ts := newAuthSvc(repo, nil)

	token, user, err := svc.Login(context.Background(), "carol@x.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user == nil || user.Email != "carol@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != "carol@x.com" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestAuthService_Login_PendingUserCanLogIn(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "p@x.com", domain.RoleClient, domain.StatusPending)
	svc, _ := newAuthSvc(repo, nil)

	if _, _, err := svc.Login(context.Background(), "p@x.com", "secret1"); err != nil {
		t.Fatalf("pending users authenticate; policies gate them later: %v", err)
	}
}

func TestAuthService_Login_NoEnumeration(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "dave@x.com", domain.RoleClient, domain.StatusActive)
	svc, _ := newAuthSvc(repo, nil)

	_, _, wrongPwd := svc.Login(context.Background(), "dave@x.com", "badpass")
	_, _, unknown := svc.Login(context.Background(), "ghost@x.com", "badpass")
	if !errors.Is(wrongPwd, domain.ErrInvalidCredentials) || !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPwd, unknown)
	}
	if _, _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}

func TestAuthService_Login_StoreError(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errStoreDown
	svc, _ := newAuthSvc(repo, nil)

	if _, _, err := svc.Login(context.Background(), "a@x.com", "pw"); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "a@x.com", domain.RoleClient, domain.StatusActive)
	limiter := newStubLimiter(2)
	svc, _ := newAuthSvc(repo, limiter)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, _, err := svc.Login(ctx, "a@x.com", "bad"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, _, err := svc.Login(ctx, "a@x.com", "secret1"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	limiter.failures["a@x.com"] = 1
	if _, _, err := svc.Login(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("expected success under the limit, got %v", err)
	}
	if limiter.failures["a@x.com"] != 0 {
		t.Fatalf("successful login must reset the counter")
	}
}

func TestAuthService_Login_LimiterFailureIsSoft(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "a@x.com", domain.RoleClient, domain.StatusActive)
	limiter := newStubLimiter(1)
	limiter.err = errStoreDown
	svc, _ := newAuthSvc(repo, limiter)

	if _, _, err := svc.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("limiter outage must not block login: %v", err)
	}
}
