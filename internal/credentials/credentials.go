// Package credentials owns password hashing and verification. Flows
// never touch the stored secret directly; they hand both values here
// and get a yes/no back.
package credentials

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hash returns the bcrypt hash of password. A cost of 0 selects
// bcrypt.DefaultCost.
func Hash(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether supplied matches stored. Hashed values are
// compared with bcrypt. Legacy adhesion rows predate hashing and still
// hold the plaintext secret; those fall back to a constant-time
// comparison until the migration tool rewrites them.
func Verify(stored, supplied string) bool {
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// IsHashed reports whether s already is a bcrypt hash. The migration
// tool uses this to avoid double-hashing.
func IsHashed(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
