package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// KEYS[1] bucket; ARGV rate per second, burst, ttl ms.
// Returns allowed (0/1), whole tokens left, milliseconds until the next token.
var takeTokenScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])

local t = redis.call("TIME")
local now = t[1] * 1000 + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local last = tonumber(state[2]) or now
if now > last then
  tokens = math.min(burst, tokens + (now - last) / 1000 * rate)
end

local allowed = 0
local wait = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.ceil((1 - tokens) / rate * 1000)
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", now)
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return {allowed, math.floor(tokens), wait}
`)

// TokenBucket is a Redis-backed bucket shared by every API replica.
type TokenBucket struct {
	client *redis.Client
}

// Decision is the outcome of taking one token.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client}
}

// Take removes one token from key. rate is tokens per second.
func (b *TokenBucket) Take(ctx context.Context, key string, rate float64, burst int) (Decision, error) {
	switch {
	case b == nil || b.client == nil:
		return Decision{}, errors.New("token bucket is not configured")
	case key == "":
		return Decision{}, errors.New("token bucket key is empty")
	case rate <= 0 || burst <= 0:
		return Decision{}, fmt.Errorf("token bucket needs a positive rate and burst, got %v/%d", rate, burst)
	}

	ttl := bucketTTL(rate, burst)
	out, err := takeTokenScript.Run(ctx, b.client, []string{key}, rate, burst, ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(out) != 3 {
		return Decision{}, fmt.Errorf("token bucket script returned %d values", len(out))
	}
	return Decision{
		Allowed:    out[0] == 1,
		Remaining:  int(out[1]),
		RetryAfter: time.Duration(out[2]) * time.Millisecond,
	}, nil
}

// bucketTTL keeps an idle bucket for twice the time it takes to refill.
func bucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	return time.Duration(math.Max(1, math.Ceil(2*float64(burst)/rate))) * time.Second
}
