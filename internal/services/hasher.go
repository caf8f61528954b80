package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the one-way secret hasher used for passwords, OTPs and reset
// tokens alike. bcrypt keeps comparison cost bounded and salted.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether secret matches the stored hash. Mismatch and
// malformed-hash both read as false; bcrypt itself is constant-time over
// the digest comparison.
func (h *Hasher) Verify(secret, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret)) == nil
}
