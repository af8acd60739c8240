// Package auth mints the bearer tokens the sync API expects. Tokens are
// HS256-signed with a shared secret and carry the user identity and sync
// scope.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeSync authorises push/pull/share calls.
const ScopeSync = "sync:write"

// tokenLifetime leaves plenty of headroom over the longest expected round
// trip while keeping replayed tokens short-lived.
const tokenLifetime = 15 * time.Minute

// ErrMissingSecret is returned when the minter is constructed without a
// signing secret.
var ErrMissingSecret = errors.New("auth secret is required")

// Config holds signing parameters shared with the server.
type Config struct {
	Secret string
	Issuer string
	UserID string
}

// Minter produces short-lived bearer tokens, caching the current one until
// it nears expiry.
type Minter struct {
	cfg Config

	mu      sync.Mutex
	current string
	expires time.Time
}

// NewMinter validates the config and returns a Minter.
func NewMinter(cfg Config) (*Minter, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	return &Minter{cfg: cfg}, nil
}

// Token returns a valid bearer token, minting a fresh one when the cached
// token is within a minute of expiry.
func (m *Minter) Token(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if m.current != "" && now.Before(m.expires.Add(-time.Minute)) {
		return m.current, nil
	}

	expires := now.Add(tokenLifetime)
	claims := jwt.MapClaims{
		"sub":    m.cfg.UserID,
		"iss":    m.cfg.Issuer,
		"scopes": []string{ScopeSync},
		"iat":    now.Unix(),
		"exp":    expires.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", err
	}

	m.current = token
	m.expires = expires
	return token, nil
}
