package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleBucketTTL is how long an untouched in-memory bucket is kept.
const idleBucketTTL = 10 * time.Minute

type memoryBucket struct {
	limiter  *rate.Limiter
	limit    Limit
	lastSeen time.Time
}

// MemoryLimiter is a process-local Limiter for single-instance deployments
// without Redis.
type MemoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*memoryBucket
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryLimiter creates an empty MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]*memoryBucket),
		now:     time.Now,
	}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(ctx context.Context, key string, limit Limit) (*RateLimitResult, error) {
	now := m.now()
	if limit.Unlimited() {
		return &RateLimitResult{Allowed: true, Remaining: -1, ResetAt: now}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)

	b, ok := m.buckets[key]
	if !ok || b.limit != limit {
		b = &memoryBucket{
			limiter: rate.NewLimiter(rate.Limit(limit.Rate), limit.Burst),
			limit:   limit,
		}
		m.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return &RateLimitResult{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    now.Add(refillTime(limit, 0)),
			RetryAfter: delay,
		}, nil
	}

	remaining := int64(b.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   true,
		Remaining: remaining,
		ResetAt:   now.Add(refillTime(limit, remaining)),
	}, nil
}

// Len returns the number of live buckets.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// sweep drops idle buckets at most once per idleBucketTTL.
func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < idleBucketTTL {
		return
	}
	m.lastSweep = now
	for k, b := range m.buckets {
		if now.Sub(b.lastSeen) >= idleBucketTTL {
			delete(m.buckets, k)
		}
	}
}
