// Package limiter implements a Redis-backed fixed-window throttle for
// security-sensitive auth endpoints. Counters use INCR plus a TTL set
// on the first hit of each window.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is returned when an identifier has exhausted its
	// attempt budget for the current window.
	ErrRateLimited = errors.New("too many attempts, try again later")
	// ErrRedisUnavailable wraps transport failures talking to Redis.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Scopes for throttled operations.
const (
	ScopeLogin  = "login"
	ScopeForgot = "forgot"
)

// Config holds throttle tuning parameters.
type Config struct {
	MaxAttempts int
	Cooldown    time.Duration
}

// DefaultConfig is the throttle applied when nothing else is configured.
var DefaultConfig = Config{MaxAttempts: 10, Cooldown: 15 * time.Minute}

// Limiter enforces per-identifier attempt budgets using Redis counters.
// A nil *Limiter is valid and never limits.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig.MaxAttempts
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultConfig.Cooldown
	}
	return &Limiter{redis: redisClient, config: cfg}
}

// Check reports whether identifier is still within its attempt budget
// for the scope.
func (l *Limiter) Check(ctx context.Context, scope, identifier string) error {
	if l == nil {
		return nil
	}

	count, err := l.redis.Get(ctx, key(scope, identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// Increment records a failed attempt. Returns ErrRateLimited when the
// attempt pushed the identifier over budget.
func (l *Limiter) Increment(ctx context.Context, scope, identifier string) error {
	if l == nil {
		return nil
	}

	k := key(scope, identifier)
	count, err := l.redis.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, k, l.config.Cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	if count > int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the counter for an identifier, called after a
// successful login.
func (l *Limiter) Reset(ctx context.Context, scope, identifier string) error {
	if l == nil {
		return nil
	}

	if err := l.redis.Del(ctx, key(scope, identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func key(scope, identifier string) string {
	return "rl:" + scope + ":" + identifier
}
