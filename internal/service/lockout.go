package service

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// LockoutPolicy controls how many consecutive failed logins lock a username
// and for how long.
type LockoutPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

// DefaultLockoutPolicy locks a username for a minute after five failures.
var DefaultLockoutPolicy = LockoutPolicy{MaxAttempts: 5, Duration: time.Minute}

// LoginAttempts is the failed-login state of a single username.
type LoginAttempts struct {
	Failures    int
	LockedUntil time.Time
}

// Locked reports whether the username is locked out at now.
func (a LoginAttempts) Locked(now time.Time) bool {
	return now.Before(a.LockedUntil)
}

// Fail records a failed attempt at now. Reaching max failures locks the
// username until now+lockout. A lock that has already expired is cleared
// first, so counting starts over.
func (a LoginAttempts) Fail(now time.Time, max int, lockout time.Duration) LoginAttempts {
	if !a.LockedUntil.IsZero() && !a.Locked(now) {
		a = LoginAttempts{}
	}
	a.Failures++
	if a.Failures >= max {
		a.LockedUntil = now.Add(lockout)
	}
	return a
}

// LoginGuard tracks LoginAttempts per username. It is safe for concurrent use.
type LoginGuard struct {
	mu       sync.Mutex
	attempts map[string]LoginAttempts
	max      int
	lockout  time.Duration
	clock    clock.Clock
}

// NewLoginGuard creates a LoginGuard enforcing policy with time read from clk.
func NewLoginGuard(policy LockoutPolicy, clk clock.Clock) *LoginGuard {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultLockoutPolicy.MaxAttempts
	}
	if policy.Duration <= 0 {
		policy.Duration = DefaultLockoutPolicy.Duration
	}
	return &LoginGuard{
		attempts: make(map[string]LoginAttempts),
		max:      policy.MaxAttempts,
		lockout:  policy.Duration,
		clock:    clk,
	}
}

// Check returns the time the username unlocks and whether it is locked now.
func (g *LoginGuard) Check(username string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a := g.attempts[username]
	if a.Locked(g.clock.Now()) {
		return a.LockedUntil, true
	}
	return time.Time{}, false
}

// Fail records a failed login and returns the updated state.
func (g *LoginGuard) Fail(username string) LoginAttempts {
	g.mu.Lock()
	defer g.mu.Unlock()

	a := g.attempts[username].Fail(g.clock.Now(), g.max, g.lockout)
	g.attempts[username] = a
	return a
}

// Reset forgets a username's failures after a successful login.
func (g *LoginGuard) Reset(username string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attempts, username)
}

// Attempts returns the stored state for username.
func (g *LoginGuard) Attempts(username string) LoginAttempts {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts[username]
}
