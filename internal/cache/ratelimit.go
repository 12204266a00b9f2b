package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limit describes a token bucket: Rate tokens per second refill, Burst capacity.
type Limit struct {
	Rate  float64
	Burst int
}

// PerMinute builds a Limit from a requests-per-minute budget.
func PerMinute(rpm, burst int) Limit {
	return Limit{Rate: float64(rpm) / 60, Burst: burst}
}

// PerSecond builds a Limit from a requests-per-second budget.
func PerSecond(rps, burst int) Limit {
	return Limit{Rate: float64(rps), Burst: burst}
}

// Unlimited reports whether the limit disables throttling.
func (l Limit) Unlimited() bool {
	return l.Rate <= 0 || l.Burst <= 0
}

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter takes one token from the bucket named key.
type Limiter interface {
	Allow(ctx context.Context, key string, limit Limit) (*RateLimitResult, error)
}

// UserBucket names the bucket for a signed-in user.
func UserBucket(userID string) string {
	return "user:" + userID
}

// IPBucket names the bucket for a client address. Addresses are hashed
// so raw IPs never reach the backend.
func IPBucket(ip string) string {
	return "ip:" + hashIP(ip)
}

// tokenBucketScript refills and consumes atomically.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in milliseconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = math.max(0, now - last_update) / 1000
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil(((1 - tokens) / rate) * 1000)
	end

	redis.call('HSET', key, 'tokens', tostring(tokens), 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// Allow implements Limiter on top of Redis so buckets are shared
// between API instances.
func (c *Cache) Allow(ctx context.Context, key string, limit Limit) (*RateLimitResult, error) {
	now := time.Now()
	if limit.Unlimited() {
		return &RateLimitResult{Allowed: true, Remaining: -1, ResetAt: now}, nil
	}

	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{c.key("ratelimit", key)},
		limit.Rate, limit.Burst, now.UnixMilli(), bucketTTL(limit),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("run token bucket: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("token bucket returned %d values", len(result))
	}

	retryAfter := time.Duration(result[1]) * time.Millisecond
	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Remaining:  result[2],
		ResetAt:    now.Add(refillTime(limit, result[2])),
		RetryAfter: retryAfter,
	}, nil
}

// bucketTTL is how long an idle bucket lives: long enough to refill fully.
func bucketTTL(limit Limit) int {
	ttl := int(math.Ceil(float64(limit.Burst)/limit.Rate)) + 1
	if ttl < 10 {
		ttl = 10
	}
	return ttl
}

// refillTime is how long until a bucket holding remaining tokens is full again.
func refillTime(limit Limit, remaining int64) time.Duration {
	missing := float64(int64(limit.Burst) - remaining)
	if missing <= 0 || limit.Rate <= 0 {
		return 0
	}
	return time.Duration(missing / limit.Rate * float64(time.Second))
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
