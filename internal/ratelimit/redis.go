package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/clock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Lua script for an atomic fixed-window admission check. INCR and EXPIRE
// must happen together or a crashed client could leave an immortal counter.
// Returns the post-increment count.
const luaFixedWindow = `
local key = KEYS[1]
local ttl = tonumber(ARGV[1])

local count = redis.call('INCR', key)
if count == 1 then
    redis.call('EXPIRE', key, ttl)
end
return count
`

// RedisLimiter implements the same fixed hour window as MemoryLimiter but
// shares counters across gateway instances. On Redis errors it fails open:
// availability of the data plane wins over strict ceiling enforcement.
type RedisLimiter struct {
	client *redis.Client
	clock  clock.Clock
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter.
func NewRedisLimiter(client *redis.Client, clk clock.Clock) *RedisLimiter {
	return &RedisLimiter{client: client, clock: clk}
}

// Allow increments the (key, bucket) counter atomically and admits the
// request if the pre-increment count was below the ceiling.
func (l *RedisLimiter) Allow(ctx context.Context, keyID string, ceiling int) (*Result, error) {
	now := l.clock.Now()
	bucket := bucketStart(now)
	resetAt := bucket.Add(time.Hour)

	redisKey := fmt.Sprintf("ratelimit:%s:%d", keyID, bucket.Unix())
	// Keep the counter a little past the bucket so late readers still see it.
	ttl := int(resetAt.Sub(now).Seconds()) + 60
	if ttl < 60 {
		ttl = 60
	}

	count, err := l.client.Eval(ctx, luaFixedWindow, []string{redisKey}, ttl).Int()
	if err != nil {
		log.Error().Err(err).Str("api_key_id", keyID).Msg("Failed to check rate limit")
		return &Result{Allowed: true, Remaining: ceiling, Limit: ceiling, ResetAt: resetAt}, nil
	}

	remaining := ceiling - count
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= ceiling,
		Remaining: remaining,
		Limit:     ceiling,
		ResetAt:   resetAt,
	}, nil
}
