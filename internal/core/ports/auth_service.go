package ports

import (
	"context"
	"time"

	"github.com/workdesk/accounts-api/internal/core/domain"
)

// PasswordHasher hashes and verifies plaintext passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify never errors: a malformed hash simply does not match.
	Verify(plain, hash string) bool
}

// Claims is the identity extracted from a verified token.
type Claims struct {
	Subject   string
	Role      domain.Role
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(claims map[string]any) (string, error)
	IssueWithTTL(claims map[string]any, ttl time.Duration) (string, error)
	IssueFor(user *domain.User) (string, error)
}

type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// LoginLimiter tracks failed login attempts per key (normally the email).
type LoginLimiter interface {
	Exceeded(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// IdentityResolver turns a presented bearer token into a stored user.
type IdentityResolver interface {
	ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error)
	ResolveOptionalUser(ctx context.Context, token string) (*domain.User, error)
}
