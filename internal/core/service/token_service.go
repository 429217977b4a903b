package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/ports"
)

const DefaultTokenTTL = 15 * time.Minute

// TokenConfig is the process-held signing configuration shared by issuing
// and verification.
type TokenConfig struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

// TokenService issues and verifies HMAC-signed access tokens.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService validates cfg and returns a ready TokenService. Only HMAC
// algorithms are accepted; Algorithm defaults to HS256 and TTL to
// DefaultTokenTTL.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token service: secret is required")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token service: unsupported algorithm %q", alg)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs claims with the configured TTL.
func (s *TokenService) Issue(claims map[string]any) (string, error) {
	return s.IssueWithTTL(claims, s.ttl)
}

// IssueWithTTL copies claims, sets exp to now+ttl (replacing any exp the
// caller supplied) and signs the result.
func (s *TokenService) IssueWithTTL(claims map[string]any, ttl time.Duration) (string, error) {
	mc := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		mc[k] = v
	}
	mc["exp"] = jwt.NewNumericDate(s.now().UTC().Add(ttl))

	signed, err := jwt.NewWithClaims(s.method, mc).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueFor mints a token identifying user by email and role.
func (s *TokenService) IssueFor(user *domain.User) (string, error) {
	return s.Issue(map[string]any{
		"sub":  user.Email,
		"role": string(user.Role),
	})
}

// Verify checks signature, algorithm and expiry in one pass. Every failure,
// including a missing subject, is reported as domain.ErrInvalidCredentials.
func (s *TokenService) Verify(token string) (*ports.Claims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidCredentials
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrInvalidCredentials
	}

	out := &ports.Claims{Subject: sub}
	if role, ok := claims["role"].(string); ok {
		out.Role = domain.Role(role)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
