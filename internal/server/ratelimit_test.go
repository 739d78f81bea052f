package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("user-a")
	assert.True(t, ok)
	ok, _ = rl.Allow("user-a")
	assert.True(t, ok)

	ok, retry := rl.Allow("user-a")
	assert.False(t, ok)
	assert.InDelta(t, time.Second, retry, float64(10*time.Millisecond))

	// Other users have their own budget.
	ok, _ = rl.Allow("user-b")
	assert.True(t, ok)

	now = now.Add(time.Second)
	ok, _ = rl.Allow("user-a")
	assert.True(t, ok)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		ok, _ := rl.Allow("user")
		assert.True(t, ok)
	}

	var nilLimiter *RateLimiter
	ok, _ := nilLimiter.Allow("user")
	assert.True(t, ok)
	assert.Zero(t, nilLimiter.Cleanup())
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, 5)
	rl.now = func() time.Time { return now }

	rl.Allow("idle")
	now = now.Add(limiterIdleTTL / 2)
	rl.Allow("active")

	now = now.Add(limiterIdleTTL/2 + time.Second)
	assert.Equal(t, 1, rl.Cleanup())
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "active")
}
