// Package throttle locks out clients that fail to log in too often.
package throttle

import (
	"sync"
	"time"
)

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// LoginLimiter counts failed logins per key (the client IP). maxAttempts
// failures inside window lock the key for lockout.
type LoginLimiter struct {
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	now         func() time.Time

	lock     sync.Mutex
	attempts map[string]*attemptState
}

func NewLoginLimiter(maxAttempts int, window, lockout time.Duration, now func() time.Time) *LoginLimiter {
	if now == nil {
		now = time.Now
	}
	return &LoginLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		lockout:     lockout,
		now:         now,
		attempts:    make(map[string]*attemptState),
	}
}

// Check returns how long key stays locked, or 0 if it may try again.
func (l *LoginLimiter) Check(key string) time.Duration {
	l.lock.Lock()
	defer l.lock.Unlock()

	state, ok := l.attempts[key]
	if !ok {
		return 0
	}
	now := l.now()
	if !now.Before(state.lockedUntil) {
		return 0
	}
	return state.lockedUntil.Sub(now)
}

// Failure records a failed attempt and returns the attempts left before
// the key gets locked.
func (l *LoginLimiter) Failure(key string) int {
	l.lock.Lock()
	defer l.lock.Unlock()

	now := l.now()
	state, ok := l.attempts[key]
	if !ok || now.Sub(state.firstAttempt) > l.window || (!state.lockedUntil.IsZero() && !now.Before(state.lockedUntil)) {
		state = &attemptState{firstAttempt: now}
		l.attempts[key] = state
	}

	state.count++
	if state.count >= l.maxAttempts {
		state.lockedUntil = now.Add(l.lockout)
		state.count = l.maxAttempts
	}

	return l.maxAttempts - state.count
}

// Reset forgets key, typically after a successful login.
func (l *LoginLimiter) Reset(key string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	delete(l.attempts, key)
}

// Prune drops entries whose window and lock have both passed.
func (l *LoginLimiter) Prune() {
	l.lock.Lock()
	defer l.lock.Unlock()

	now := l.now()
	for key, state := range l.attempts {
		if now.Sub(state.firstAttempt) > l.window && !now.Before(state.lockedUntil) {
			delete(l.attempts, key)
		}
	}
}
