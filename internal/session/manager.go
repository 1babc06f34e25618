// Package session holds the logged-in state for members. Login opens a
// session: a durable opaque token in Redis plus a short-lived JWT
// access token. Clients restore their session from the durable token at
// startup, which is the initialization step the old in-browser session
// holder never had.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// ErrNoSession is returned when a durable token is unknown, revoked, or
// expired.
var ErrNoSession = errors.New("no active session")

// Session is what a successful login or restore hands back.
type Session struct {
	// Token is the durable opaque token the client stores.
	Token string `json:"session_token"`
	// AccessToken is the short-lived bearer token for API calls.
	AccessToken string `json:"access_token"`
	// ExpiresAt is the access token expiry, unix seconds.
	ExpiresAt int64 `json:"expires_at"`
}

// Manager issues, restores, and revokes sessions.
type Manager struct {
	rdb        *redis.Client
	jwtSecret  string
	accessTTL  time.Duration
	sessionTTL time.Duration
}

func NewManager(rdb *redis.Client, jwtSecret string, accessTTLMinutes, sessionTTLDays int) *Manager {
	return &Manager{
		rdb:        rdb,
		jwtSecret:  jwtSecret,
		accessTTL:  time.Duration(accessTTLMinutes) * time.Minute,
		sessionTTL: time.Duration(sessionTTLDays) * 24 * time.Hour,
	}
}

// Open creates a new session for the given member identity. Only the
// login success path calls this.
func (m *Manager) Open(ctx context.Context, identity string) (*Session, error) {
	token := uuid.NewString()
	if err := m.rdb.Set(ctx, sessionPrefix+token, identity, m.sessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	access, exp, err := generateAccessToken(identity, m.jwtSecret, m.accessTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, AccessToken: access, ExpiresAt: exp.Unix()}, nil
}

// Restore rebuilds a session from a durable token, sliding its expiry
// forward and issuing a fresh access token. Returns the identity the
// session belongs to.
func (m *Manager) Restore(ctx context.Context, token string) (string, *Session, error) {
	identity, err := m.rdb.Get(ctx, sessionPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil, ErrNoSession
		}
		return "", nil, fmt.Errorf("failed to read session: %w", err)
	}

	if err := m.rdb.Expire(ctx, sessionPrefix+token, m.sessionTTL).Err(); err != nil {
		return "", nil, fmt.Errorf("failed to extend session: %w", err)
	}

	access, exp, err := generateAccessToken(identity, m.jwtSecret, m.accessTTL)
	if err != nil {
		return "", nil, err
	}
	return identity, &Session{Token: token, AccessToken: access, ExpiresAt: exp.Unix()}, nil
}

// Revoke deletes a durable token. Revoking an unknown token is not an
// error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	return m.rdb.Del(ctx, sessionPrefix+token).Err()
}

// IdentityFromAccessToken validates a bearer token and returns the
// identity it was issued to.
func (m *Manager) IdentityFromAccessToken(tokenString string) (string, error) {
	claims, err := parseAccessToken(tokenString, m.jwtSecret)
	if err != nil {
		return "", err
	}
	return claims.Identity, nil
}
