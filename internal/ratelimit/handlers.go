package ratelimit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleRateLimitStatus returns the current rate limit status for the requesting IP
func (rl *RateLimiter) HandleRateLimitStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		status := gin.H{
			"ip": ip,
			"limits": gin.H{
				"ip_per_minute": gin.H{
					"limit":  rl.config.IPLimitPerMin,
					"period": "1 minute",
				},
				"admin_per_minute": gin.H{
					"limit":  rl.config.AdminLimitPerMin,
					"period": "1 minute",
				},
			},
			"timestamp": time.Now().Format(time.RFC3339),
		}

		c.JSON(http.StatusOK, status)
	}
}

// HandleAdminRateLimits returns comprehensive rate limit information (admin only)
func (rl *RateLimiter) HandleAdminRateLimits() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Get key count
		keyCount, err := rl.GetKeyCount(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to get key count",
			})
			return
		}

		stats := rl.GetStats()

		var rateLimitMetrics map[string]interface{}
		if rl.metrics != nil {
			rateLimitMetrics = rl.metrics.GetRateLimitStats()
		}

		response := gin.H{
			"total_keys":    keyCount,
			"limiter_stats": stats,
			"metrics":       rateLimitMetrics,
			"timestamp":     time.Now().Format(time.RFC3339),
		}

		c.JSON(http.StatusOK, response)
	}
}

// HandleAdminInvalidateIP invalidates all rate limits for an IP (admin only)
func (rl *RateLimiter) HandleAdminInvalidateIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.Param("ip")

		if ip == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "IP address is required",
			})
			return
		}

		err := rl.InvalidateIP(ctx, ip)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to invalidate IP rate limits",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "IP rate limits invalidated successfully",
			"ip":        ip,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
