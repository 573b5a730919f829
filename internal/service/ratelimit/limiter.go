package ratelimit

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxKeys bounds how many client buckets a Limiter tracks.
const DefaultMaxKeys = 10000

type entry struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter keeps one token bucket per key: each holds up to capacity tokens
// refilled at refillPerSec. At most maxKeys buckets are tracked; when the
// map is full, buckets that have refilled completely are dropped first, then
// the least recently used ones.
type Limiter struct {
	mu           sync.Mutex
	m            map[string]*entry
	capacity     int
	refillPerSec float64
	maxKeys      int
	now          func() time.Time
}

// New creates a limiter. A non-positive capacity disables limiting.
func New(capacity int, refillPerSec float64) *Limiter {
	return &Limiter{
		m:            make(map[string]*entry),
		capacity:     capacity,
		refillPerSec: refillPerSec,
		maxKeys:      DefaultMaxKeys,
		now:          time.Now,
	}
}

// SetClock overrides the time source; used by tests.
func (l *Limiter) SetClock(now func() time.Time) { l.now = now }

// SetMaxKeys changes the bucket bound; values below 1 are ignored.
func (l *Limiter) SetMaxKeys(n int) {
	if n < 1 {
		return
	}
	l.mu.Lock()
	l.maxKeys = n
	l.mu.Unlock()
}

// Enabled reports whether the limiter restricts anything.
func (l *Limiter) Enabled() bool { return l != nil && l.capacity > 0 }

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}
	now := l.now()
	return l.bucket(key, now).AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

func (l *Limiter) bucket(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.m[key]; ok {
		e.seen = now
		return e.lim
	}
	if len(l.m) >= l.maxKeys {
		l.evict(now)
	}
	e := &entry{lim: rate.NewLimiter(rate.Limit(l.refillPerSec), l.capacity), seen: now}
	l.m[key] = e
	return e.lim
}

// evict makes room for one more key. A full bucket carries no state a new
// bucket would not, so those go first.
func (l *Limiter) evict(now time.Time) {
	for k, e := range l.m {
		if e.lim.TokensAt(now) >= float64(l.capacity) {
			delete(l.m, k)
		}
	}
	if len(l.m) < l.maxKeys {
		return
	}
	keys := make([]string, 0, len(l.m))
	for k := range l.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return l.m[keys[i]].seen.Before(l.m[keys[j]].seen) })
	drop := len(l.m) - l.maxKeys + 1 + l.maxKeys/10
	for _, k := range keys[:min(drop, len(keys))] {
		delete(l.m, k)
	}
}
