package repository

import (
	"context"
	"errors"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/models"
)

var (
	// ErrNotFound is returned when no document matches a username lookup.
	ErrNotFound = errors.New("member not found")
	// ErrDuplicateUsername is returned when an insert hits the unique
	// index on identite.
	ErrDuplicateUsername = errors.New("username already exists")
)

// MemberRepository is the gateway to the canonical "users" collection.
type MemberRepository interface {
	// FindByUsername returns the first document whose identite field
	// equals username, or ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*models.Member, error)
	// Insert persists a new profile. The member's ID must be set by the
	// caller; timestamps are assigned here.
	Insert(ctx context.Context, m *models.Member) error
}

// AdhesionRepository is the read-only gateway to the legacy "adhesion"
// collection. It is pre-populated externally and never written here.
type AdhesionRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Member, error)
	// Each streams every legacy document to fn, stopping on the first
	// error. Used by the migration tool.
	Each(ctx context.Context, fn func(*models.Member) error) error
}
