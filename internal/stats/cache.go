package stats

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/abdelrhman06/session-audit-api/internal/cache"
	"github.com/abdelrhman06/session-audit-api/internal/database"
)

const overviewKey = "statistics:overview"

// StatsCache provides caching for dashboard statistics
type StatsCache struct {
	cache *cache.Cache
}

// NewStatsCache creates a new statistics cache
func NewStatsCache(ttl time.Duration) *StatsCache {
	return &StatsCache{
		cache: cache.NewCache(ttl),
	}
}

// GetOverview retrieves cached statistics
func (sc *StatsCache) GetOverview() (*database.Statistics, bool) {
	data, found := sc.cache.Get(overviewKey)
	if !found {
		return nil, false
	}

	var stats database.Statistics
	if err := json.Unmarshal(data, &stats); err != nil {
		slog.Error("Failed to unmarshal cached statistics", "error", err)
		return nil, false
	}

	slog.Debug("Statistics cache hit")
	return &stats, true
}

// SetOverview caches statistics
func (sc *StatsCache) SetOverview(stats *database.Statistics) {
	data, err := json.Marshal(stats)
	if err != nil {
		slog.Error("Failed to marshal statistics for cache", "error", err)
		return
	}

	sc.cache.Set(overviewKey, data)
	slog.Debug("Statistics cached", "total_records", stats.TotalRecords)
}

// Invalidate drops the cached statistics so the next read recomputes them
func (sc *StatsCache) Invalidate() {
	sc.cache.Delete(overviewKey)
	slog.Debug("Statistics cache invalidated")
}

// GetStats returns cache statistics
func (sc *StatsCache) GetStats() map[string]interface{} {
	return sc.cache.Stats()
}
