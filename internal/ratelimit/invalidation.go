package ratelimit

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// InvalidateIP removes all rate limit keys for a specific IP address
// Used for manual IP ban/unban or limit resets
func (rl *RateLimiter) InvalidateIP(ctx context.Context, ip string) error {
	if !rl.redisClient.IsEnabled() {
		// For in-memory fallback, remove the specific limiters
		rl.fallbackMutex.Lock()
		defer rl.fallbackMutex.Unlock()

		delete(rl.fallbackLimiters, fmt.Sprintf("ratelimit:ip:%s", ip))
		delete(rl.fallbackLimiters, fmt.Sprintf("ratelimit:admin:%s", ip))

		slog.Info("Invalidated IP rate limits (in-memory)", "ip", ip)
		return nil
	}

	// Delete all keys matching the IP pattern, admin keys included
	if err := rl.deleteByPattern(ctx, fmt.Sprintf("ratelimit:ip:%s*", ip)); err != nil {
		return err
	}
	return rl.deleteByPattern(ctx, fmt.Sprintf("ratelimit:admin:%s*", ip))
}

// deleteByPattern deletes all Redis keys matching a pattern
func (rl *RateLimiter) deleteByPattern(ctx context.Context, pattern string) error {
	client := rl.redisClient.GetClient()

	// Use SCAN to find matching keys (more efficient than KEYS)
	var cursor uint64
	var deletedCount int

	for {
		keys, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
			deletedCount += int(deleted)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	slog.Info("Deleted rate limit keys by pattern", "pattern", pattern, "count", deletedCount)
	return nil
}

// InvalidateAll removes all rate limit keys (emergency use only)
func (rl *RateLimiter) InvalidateAll(ctx context.Context) error {
	if !rl.redisClient.IsEnabled() {
		rl.fallbackMutex.Lock()
		defer rl.fallbackMutex.Unlock()

		count := len(rl.fallbackLimiters)
		rl.fallbackLimiters = make(map[string]*rate.Limiter)

		slog.Warn("Invalidated all rate limits (in-memory)", "count", count)
		return nil
	}

	pattern := "ratelimit:*"
	slog.Warn("Invalidating ALL rate limits", "pattern", pattern)
	return rl.deleteByPattern(ctx, pattern)
}

// CleanupExpired removes expired keys (Redis handles this automatically via TTL)
// This is a no-op for Redis but provides consistency with the interface
func (rl *RateLimiter) CleanupExpired(ctx context.Context) error {
	if !rl.redisClient.IsEnabled() {
		// For in-memory, we rely on the periodic cleanup goroutine
		slog.Debug("Cleanup triggered (handled by periodic goroutine)")
		return nil
	}

	slog.Debug("Cleanup triggered (Redis handles TTL automatically)")
	return nil
}
