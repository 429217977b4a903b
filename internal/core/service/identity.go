package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/ports"
)

// IdentityResolver maps a verified token subject onto a stored account.
type IdentityResolver struct {
	tokens ports.TokenVerifier
	users  ports.UserRepository
	log    zerolog.Logger
}

func NewIdentityResolver(tokens ports.TokenVerifier, users ports.UserRepository, log zerolog.Logger) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, users: users, log: log}
}

// ResolveCurrentUser verifies token and loads its subject. An unknown subject
// yields the same error as a bad token so callers cannot probe for accounts.
func (r *IdentityResolver) ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidCredentials
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := r.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			r.log.Debug().Str("subject", claims.Subject).Msg("token subject has no account")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

// ResolveOptionalUser returns (nil, nil) when no token was presented. A
// presented token is resolved strictly: an invalid one is an error, never
// anonymous access.
func (r *IdentityResolver) ResolveOptionalUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.ResolveCurrentUser(ctx, token)
}
