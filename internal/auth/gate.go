// Package auth implements the credential gate: a plain comparison against
// two optionally configured secrets with a timed lockout after repeated
// failures. This is a display gate for a single-user app, not a security
// boundary.
package auth

import (
	"errors"
	"sync"
	"time"
)

const (
	// MaxAttempts consecutive failures trigger a lockout.
	MaxAttempts = 5
	// LockoutDuration is how long submissions are rejected after lockout.
	LockoutDuration = 30 * time.Second
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = errors.New("too many failed attempts, locked out")
)

// Gate holds the gate state machine. The attempt counter is volatile; only
// the lockout deadline outlives a failure burst.
type Gate struct {
	mu sync.Mutex

	username string
	password string

	authenticated bool
	failures      int
	lockedUntil   time.Time

	now func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock injects a time source, used by tests to drive lockout expiry.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate builds a gate for the configured secrets. An empty expected value
// always matches, so username-only, password-only and no-auth setups all
// work. With neither configured the gate starts authenticated and is never
// shown.
func NewGate(username, password string, opts ...Option) *Gate {
	g := &Gate{
		username: username,
		password: password,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if !g.Enabled() {
		g.authenticated = true
	}
	return g
}

// Enabled reports whether any credential is configured.
func (g *Gate) Enabled() bool {
	return g.username != "" || g.password != ""
}

// Authenticated reports whether the gate is currently open.
func (g *Gate) Authenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

// LockedUntil returns the lockout deadline, zero when not locked.
func (g *Gate) LockedUntil() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lockedUntil
}

// Submit runs one authentication attempt. While locked out it rejects
// without counting the attempt. On a match it authenticates and resets the
// counter; on a mismatch it counts the failure and locks the gate for
// LockoutDuration once MaxAttempts consecutive failures accumulate.
func (g *Gate) Submit(username, password string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Before(g.lockedUntil) {
		return ErrLockedOut
	}

	if g.matches(username, password) {
		g.authenticated = true
		g.failures = 0
		g.lockedUntil = time.Time{}
		return nil
	}

	g.failures++
	if g.failures >= MaxAttempts {
		g.lockedUntil = now.Add(LockoutDuration)
		g.failures = 0
		return ErrLockedOut
	}
	return ErrInvalidCredentials
}

// Logout closes the gate again. A no-op when no credentials are configured.
func (g *Gate) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.Enabled() {
		return
	}
	g.authenticated = false
}

func (g *Gate) matches(username, password string) bool {
	if g.username != "" && username != g.username {
		return false
	}
	if g.password != "" && password != g.password {
		return false
	}
	return true
}
