package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	errLoginRateLimited   = errors.New("sign-in rate limited")
	errLimiterUnavailable = errors.New("sign-in limiter unavailable")
)

// LoginLimiter throttles repeated sign-in attempts per username using a Redis
// counter with an expiry window. Redis being unreachable fails closed.
type LoginLimiter struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{redis: client, maxAttempts: maxAttempts, window: window}
}

// Enforce counts one attempt for username and fails once the window budget is
// spent.
func (l *LoginLimiter) Enforce(ctx context.Context, username string) error {
	key := loginAttemptKey(username)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errLimiterUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", errLimiterUnavailable, err)
		}
	}
	if count > int64(l.maxAttempts) {
		return errLoginRateLimited
	}
	return nil
}

// Reset clears the attempt counter after a successful sign-in.
func (l *LoginLimiter) Reset(ctx context.Context, username string) error {
	return l.redis.Del(ctx, loginAttemptKey(username)).Err()
}

func loginAttemptKey(username string) string {
	return "signin:attempts:" + username
}

// NewRedisClient returns a configured go-redis client from URL (e.g., redis://localhost:6379/0).
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
