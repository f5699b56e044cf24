package service

import (
	"crypto/subtle"

	"github.com/iliyamo/room-booking/internal/utils"
)

// Authorizer decides whether a supplied secret may mutate a booking.  All
// secret comparisons go through it so the scheme can change without touching
// call sites.
type Authorizer interface {
	// Authorize reports whether supplied matches the booking's stored secret
	// or is the admin override token.
	Authorize(stored, supplied string) bool
	// IsAdmin reports whether supplied is the admin override token.
	IsAdmin(supplied string) bool
}

// SecretGate compares plaintext booking secrets and a fixed admin override
// token.  When a bcrypt hash of the admin token is configured it is used
// instead of the plaintext token.
type SecretGate struct {
	adminToken string
	adminHash  string
}

// NewSecretGate returns a gate for the given admin token or bcrypt hash.
// With both empty no admin override exists.
func NewSecretGate(adminToken, adminHash string) *SecretGate {
	return &SecretGate{adminToken: adminToken, adminHash: adminHash}
}

func (g *SecretGate) Authorize(stored, supplied string) bool {
	if supplied == "" {
		return false
	}
	if stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1 {
		return true
	}
	return g.IsAdmin(supplied)
}

func (g *SecretGate) IsAdmin(supplied string) bool {
	if supplied == "" {
		return false
	}
	if g.adminHash != "" {
		return utils.VerifyToken(g.adminHash, supplied)
	}
	if g.adminToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.adminToken), []byte(supplied)) == 1
}
