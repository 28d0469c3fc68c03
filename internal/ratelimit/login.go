package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/vitrine/internal/config"
	"go.uber.org/zap"
)

const keyLogin = "vitrine:login:%s:%s"

// LoginLimiter throttles admin login attempts per username and client IP.
// A nil or disabled limiter allows everything.
type LoginLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
	log    *zap.Logger
}

func NewLoginLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) *LoginLimiter {
	if client == nil || cfg.LoginRatePerMinute <= 0 || cfg.LoginBurst <= 0 {
		return nil
	}
	return &LoginLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.LoginRatePerMinute / 60,
		burst:  cfg.LoginBurst,
		log:    log.Named("ratelimit.login"),
	}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow consumes one attempt. Redis failures fail open so an outage never
// locks staff out; the error is logged.
func (l *LoginLimiter) Allow(ctx context.Context, username, ip string) Decision {
	if !l.Enabled() {
		return Decision{Allowed: true}
	}
	d, err := l.bucket.Take(ctx, LoginKey(username, ip), l.rate, l.burst)
	if err != nil {
		l.log.Warn("login rate limit unavailable", zap.Error(err))
		return Decision{Allowed: true}
	}
	return d
}

func LoginKey(username, ip string) string {
	return fmt.Sprintf(keyLogin, strings.ToLower(strings.TrimSpace(username)), strings.TrimSpace(ip))
}
