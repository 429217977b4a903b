package service

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/workdesk/accounts-api/internal/core/domain"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := testHasher()

	for _, pwd := range []string{"secret1", "correct horse battery staple", "ünïcødé-pässwörd"} {
		hash, err := h.Hash(pwd)
		if err != nil {
			t.Fatalf("hash %q: %v", pwd, err)
		}
		if hash == pwd {
			t.Fatalf("hash must not equal plaintext")
		}
		if !strings.HasPrefix(hash, "$2a$") {
			t.Fatalf("expected self-describing bcrypt hash, got %q", hash)
		}
		if !h.Verify(pwd, hash) {
			t.Fatalf("verify(%q, hash(%q)) = false", pwd, pwd)
		}
		if h.Verify(pwd+"x", hash) {
			t.Fatalf("verify accepted a different password")
		}
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := testHasher()
	a, _ := h.Hash("secret1")
	b, _ := h.Hash("secret1")
	if a == b {
		t.Fatalf("expected different hashes for the same password")
	}
}

func TestBcryptHasher_EmptyPassword(t *testing.T) {
	if _, err := testHasher().Hash(""); !errors.Is(err, domain.ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestBcryptHasher_MalformedHashFailsClosed(t *testing.T) {
	h := testHasher()
	for _, bad := range []string{"", "plaintext", "$2a$10$short", "$9z$10$abcdefghijklmnopqrstuv"} {
		if h.Verify("secret1", bad) {
			t.Fatalf("verify accepted malformed hash %q", bad)
		}
	}
}

func TestNewBcryptHasher_CostBounds(t *testing.T) {
	if got := NewBcryptHasher(0).cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
	if got := NewBcryptHasher(bcrypt.MaxCost + 1).cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
	if got := NewBcryptHasher(bcrypt.MinCost).cost; got != bcrypt.MinCost {
		t.Fatalf("expected min cost, got %d", got)
	}
}

func TestBcryptHasher_LongPassword(t *testing.T) {
	h := testHasher()
	long := strings.Repeat("a", 100)

	hash, err := h.Hash(long)
	if err != nil {
		t.Fatalf("hash of a 100 byte password: %v", err)
	}
	if !h.Verify(long, hash) {
		t.Fatalf("long password does not verify against its own hash")
	}
	if h.Verify(strings.Repeat("b", 100), hash) {
		t.Fatalf("verify accepted a different long password")
	}
	// Only the first 72 bytes are significant.
	if !h.Verify(strings.Repeat("a", 72)+"tail", hash) {
		t.Fatalf("expected bytes past 72 to be ignored")
	}
}
