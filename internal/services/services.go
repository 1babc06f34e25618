package services

import (
	"context"
	"errors"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/models"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/validation"
)

var (
	// ErrUsernameTaken means the chosen identite already belongs to a
	// member. Recoverable by picking another.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials covers both unknown-user and wrong-password
	// login failures; callers must not distinguish them.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMemberNotFound is returned by profile lookups outside the
	// login flow.
	ErrMemberNotFound = errors.New("member not found")
	// ErrInternal hides store and infrastructure failures; the detail
	// only goes to logs.
	ErrInternal = errors.New("internal error")
)

// ValidationError carries a user-facing message that is surfaced
// verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// MemberService exposes the signup and login flows plus the profile
// lookup the session layer uses.
type MemberService interface {
	// Signup registers a new member and returns the created profile
	// with the password stripped. Success is provisional: the store
	// write is dispatched asynchronously.
	Signup(ctx context.Context, in validation.SignupInput) (*models.Member, error)
	// Login verifies credentials and returns the sanitized profile.
	Login(ctx context.Context, username, password string) (*models.Member, error)
	// Lookup returns the sanitized profile for a known identity.
	Lookup(ctx context.Context, username string) (*models.Member, error)
}
