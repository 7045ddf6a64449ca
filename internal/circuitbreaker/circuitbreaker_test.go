package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errUpstream = errors.New("upstream failure")

// fakeClock lets tests advance open-state timeouts without sleeping
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	return New(Config{
		MaxFailures:         3,
		Timeout:             time.Minute,
		MaxHalfOpenRequests: 1,
		Clock:               clock.Now,
	})
}

func TestStartsClosed(t *testing.T) {
	cb := New(DefaultConfig())
	assert.Equal(t, StateClosed, cb.State())
}

func TestOpensAfterMaxFailures(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errUpstream })
		assert.ErrorIs(t, err, errUpstream)
	}

	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpenState)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)

	cb.Execute(func() error { return errUpstream })
	cb.Execute(func() error { return errUpstream })
	cb.Execute(func() error { return nil })

	assert.Equal(t, uint(0), cb.Failures())
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenAfterTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errUpstream })
	}
	assert.Equal(t, StateOpen, cb.State())

	clock.Advance(2 * time.Minute)

	err := cb.Execute(func() error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errUpstream })
	}
	clock.Advance(2 * time.Minute)

	err := cb.Execute(func() error { return errUpstream })
	assert.ErrorIs(t, err, errUpstream)
	assert.Equal(t, StateOpen, cb.State())
}

func TestHalfOpenLimitsRequests(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errUpstream })
	}
	clock.Advance(2 * time.Minute)

	// Move into half-open without completing the request
	assert.NoError(t, cb.beforeRequest())
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.ErrorIs(t, cb.beforeRequest(), ErrTooManyRequests)
}

func TestReset(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errUpstream })
	}
	assert.Equal(t, StateOpen, cb.State())

	cb.Reset()

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint(0), cb.Failures())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}
