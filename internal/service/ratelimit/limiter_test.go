package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterBurstAndRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.SetClock(func() time.Time { return now })

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	now = now.Add(time.Hour)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "refill is capped at capacity")
	assert.Equal(t, 2, l.Len())
}

func TestLimiterDisabled(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("a"))
	}
	var nilLimiter *Limiter
	assert.True(t, nilLimiter.Allow("a"))
}

func TestLimiterDropsRefilledBucketsAtCapacity(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 1)
	l.SetClock(func() time.Time { return now })
	l.SetMaxKeys(3)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	now = now.Add(2 * time.Second)
	assert.True(t, l.Allow("c"))
	assert.False(t, l.Allow("c"))

	// a and b are full again and can go; c is drained and must stay
	assert.True(t, l.Allow("d"))
	assert.Equal(t, 2, l.Len())
	assert.False(t, l.Allow("c"), "drained bucket survives eviction")
}

func TestLimiterBoundsKeysWhenAllDrained(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 0)
	l.SetClock(func() time.Time { return now })
	l.SetMaxKeys(20)

	for i := 0; i < 500; i++ {
		now = now.Add(time.Millisecond)
		assert.True(t, l.Allow(fmt.Sprintf("ip-%d", i)))
		assert.LessOrEqual(t, l.Len(), 20)
	}
	assert.False(t, l.Allow("ip-499"), "most recent key is kept")
}
