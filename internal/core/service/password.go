package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/workdesk/accounts-api/internal/core/domain"
)

// maxPasswordBytes is the longest input bcrypt digests. Longer passwords are
// cut to this length on both Hash and Verify, so only the first 72 bytes
// count.
const maxPasswordBytes = 72

// BcryptHasher implements ports.PasswordHasher on top of bcrypt. The encoded
// hash carries the algorithm version, cost and salt, so Verify needs nothing
// but the stored string.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, falling back to
// bcrypt.DefaultCost when cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", domain.ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword(truncate(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares in constant time and fails closed on malformed hashes.
func (h *BcryptHasher) Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(plain)) == nil
}

func truncate(plain string) []byte {
	b := []byte(plain)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
