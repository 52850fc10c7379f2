// internal/pkg/session/rate_limiter.go
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	client      redis.UniversalClient
	maxAttempts int64
	window      time.Duration
}

func NewRateLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// CheckLoginAttempt checks if login attempt is allowed
func (r *RateLimiter) CheckLoginAttempt(ctx context.Context, ip, username string) (bool, int64, error) {
	key := loginKey(ip, username)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment login attempt: %w", err)
	}

	// Set expiration on first attempt. A counter without a TTL would lock
	// the pair out for good, so it is dropped when EXPIRE fails.
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			_ = r.client.Del(ctx, key).Err()
			return false, 0, fmt.Errorf("failed to set login attempt window: %w", err)
		}
	}

	remaining := r.maxAttempts - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= r.maxAttempts, remaining, nil
}

// ResetLoginAttempts resets the login attempt counter
func (r *RateLimiter) ResetLoginAttempts(ctx context.Context, ip, username string) error {
	return r.client.Del(ctx, loginKey(ip, username)).Err()
}

func loginKey(ip, username string) string {
	return fmt.Sprintf("ratelimit:login:%s:%s", ip, username)
}

// memoryLimiterEntries bounds how many ip and username pairs are tracked at once.
const memoryLimiterEntries = 10000

type attemptWindow struct {
	count   int64
	resetAt time.Time
}

// MemoryRateLimiter is a fixed-window counter kept in process memory.
// Windows expire on their own and the least recently used pair is dropped
// once memoryLimiterEntries pairs are tracked.
type MemoryRateLimiter struct {
	mu          sync.Mutex
	attempts    *expirable.LRU[string, *attemptWindow]
	maxAttempts int64
	window      time.Duration
	now         func() time.Time
}

func NewMemoryRateLimiter(maxAttempts int, window time.Duration) *MemoryRateLimiter {
	return newMemoryRateLimiter(memoryLimiterEntries, maxAttempts, window)
}

func newMemoryRateLimiter(size, maxAttempts int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		attempts:    expirable.NewLRU[string, *attemptWindow](size, nil, window),
		maxAttempts: int64(maxAttempts),
		window:      window,
		now:         time.Now,
	}
}

func (r *MemoryRateLimiter) CheckLoginAttempt(_ context.Context, ip, username string) (bool, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	key := loginKey(ip, username)
	w, ok := r.attempts.Get(key)
	if !ok || !now.Before(w.resetAt) {
		w = &attemptWindow{resetAt: now.Add(r.window)}
		r.attempts.Add(key, w)
	}
	w.count++

	remaining := r.maxAttempts - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= r.maxAttempts, remaining, nil
}

func (r *MemoryRateLimiter) ResetLoginAttempts(_ context.Context, ip, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts.Remove(loginKey(ip, username))
	return nil
}

// Tracked returns the number of pairs currently counted.
func (r *MemoryRateLimiter) Tracked() int {
	return r.attempts.Len()
}
