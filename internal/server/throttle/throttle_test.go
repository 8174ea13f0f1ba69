package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestLoginLimiter_LocksAfterMaxAttempts(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLoginLimiter(5, 15*time.Minute, 10*time.Minute, clock.Now)

	for i := 4; i >= 1; i-- {
		assert.Equal(t, i, l.Failure("10.0.0.1"))
		assert.Zero(t, l.Check("10.0.0.1"))
	}

	assert.Equal(t, 0, l.Failure("10.0.0.1"))
	assert.Equal(t, 10*time.Minute, l.Check("10.0.0.1"))

	// other clients are unaffected
	assert.Zero(t, l.Check("10.0.0.2"))

	clock.t = clock.t.Add(4 * time.Minute)
	assert.Equal(t, 6*time.Minute, l.Check("10.0.0.1"))

	clock.t = clock.t.Add(6 * time.Minute)
	assert.Zero(t, l.Check("10.0.0.1"))

	// a fresh window starts after the lock expires
	assert.Equal(t, 4, l.Failure("10.0.0.1"))
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLoginLimiter(3, time.Minute, time.Hour, clock.Now)

	l.Failure("ip")
	l.Failure("ip")

	clock.t = clock.t.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Failure("ip"))
	assert.Zero(t, l.Check("ip"))
}

func TestLoginLimiter_ResetAndPrune(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLoginLimiter(2, time.Minute, time.Minute, clock.Now)

	l.Failure("a")
	l.Failure("a")
	assert.NotZero(t, l.Check("a"))

	l.Reset("a")
	assert.Zero(t, l.Check("a"))

	l.Failure("b")
	clock.t = clock.t.Add(2 * time.Minute)
	l.Prune()

	l.lock.Lock()
	assert.Empty(t, l.attempts)
	l.lock.Unlock()
}
