package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFallbackLimiter(config Config) *RateLimiter {
	return NewRateLimiter(&RedisClient{enabled: false}, config, nil)
}

func TestAllowIPFallback(t *testing.T) {
	rl := newFallbackLimiter(Config{
		IPLimitPerMin:    2,
		AdminLimitPerMin: 1,
		BurstMultiplier:  1,
	})

	ctx := context.Background()

	// Burst floor is 5, so the first five requests pass
	for i := 0; i < 5; i++ {
		result, err := rl.AllowIP(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}

	result, err := rl.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter.Seconds(), 0.0)
}

func TestAllowIPIndependentPerIP(t *testing.T) {
	rl := newFallbackLimiter(Config{IPLimitPerMin: 2, AdminLimitPerMin: 2, BurstMultiplier: 1})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := rl.AllowIP(ctx, "10.0.0.1")
		require.NoError(t, err)
	}

	blocked, err := rl.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	other, err := rl.AllowIP(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestAllowAdminSeparateBudget(t *testing.T) {
	rl := newFallbackLimiter(Config{IPLimitPerMin: 2, AdminLimitPerMin: 2, BurstMultiplier: 1})
	ctx := context.Background()

	// Exhaust the IP budget
	for i := 0; i < 6; i++ {
		_, err := rl.AllowIP(ctx, "10.0.0.1")
		require.NoError(t, err)
	}

	// Admin budget for the same IP is untouched
	result, err := rl.AllowAdmin(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestInvalidateIPRestoresAllowance(t *testing.T) {
	rl := newFallbackLimiter(Config{IPLimitPerMin: 2, AdminLimitPerMin: 2, BurstMultiplier: 1})
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := rl.AllowIP(ctx, "10.0.0.3")
		require.NoError(t, err)
	}

	blocked, err := rl.AllowIP(ctx, "10.0.0.3")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	require.NoError(t, rl.InvalidateIP(ctx, "10.0.0.3"))

	result, err := rl.AllowIP(ctx, "10.0.0.3")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestInvalidateAllFallback(t *testing.T) {
	rl := newFallbackLimiter(DefaultConfig())
	ctx := context.Background()

	_, err := rl.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	_, err = rl.AllowAdmin(ctx, "10.0.0.2")
	require.NoError(t, err)

	count, err := rl.GetKeyCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, rl.InvalidateAll(ctx))

	count, err = rl.GetKeyCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGetStatsFallback(t *testing.T) {
	rl := newFallbackLimiter(DefaultConfig())

	stats := rl.GetStats()
	assert.Equal(t, false, stats["redis_enabled"])
	assert.Equal(t, 60, stats["ip_limit_per_min"])
	assert.Equal(t, 20, stats["admin_limit_per_min"])
	assert.NotContains(t, stats, "redis_pool")
}

func TestResultHeadersFields(t *testing.T) {
	rl := newFallbackLimiter(Config{IPLimitPerMin: 10, AdminLimitPerMin: 5, BurstMultiplier: 2})
	ctx := context.Background()

	result, err := rl.AllowIP(ctx, "10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, 10, result.Limit)
	assert.GreaterOrEqual(t, result.Remaining, 0)
	assert.False(t, result.ResetAt.IsZero())
}
