// internal/pkg/session/rate_limiter.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginAttemptLimit  = 10
	loginAttemptWindow = 15 * time.Minute
)

// RateLimiter throttles beta token redemption attempts per client IP.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLoginAttempt counts an attempt and reports whether it is allowed plus
// how many attempts remain in the window.
func (r *RateLimiter) CheckLoginAttempt(ctx context.Context, ip string) (bool, int64, error) {
	key := fmt.Sprintf("ratelimit:beta-login:%s", ip)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to count login attempt: %w", err)
	}

	// Window starts on the first attempt.
	if count == 1 {
		r.client.Expire(ctx, key, loginAttemptWindow)
	}

	remaining := loginAttemptLimit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= loginAttemptLimit, remaining, nil
}

// ResetLoginAttempts clears the counter, used after a successful redemption.
func (r *RateLimiter) ResetLoginAttempts(ctx context.Context, ip string) error {
	key := fmt.Sprintf("ratelimit:beta-login:%s", ip)
	return r.client.Del(ctx, key).Err()
}
