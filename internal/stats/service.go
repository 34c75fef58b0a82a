// Package stats serves dashboard aggregates over the audit table. Reads go
// through a two-level cache: an in-memory TTL cache in front of a SQLite
// cache table that survives restarts. Audit writes invalidate both levels.
package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abdelrhman06/session-audit-api/internal/database"
)

// Service handles statistics queries
type Service struct {
	db    *database.DB
	repo  *database.Repository
	cache *StatsCache
	ttl   time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewService creates a new statistics service
func NewService(db *database.DB) *Service {
	return &Service{
		db:    db,
		repo:  database.NewRepository(db),
		cache: NewStatsCache(15 * time.Minute), // 15 minute cache TTL
		ttl:   15 * time.Minute,
	}
}

// NewServiceWithCache creates a new statistics service with custom cache
func NewServiceWithCache(db *database.DB, cache *StatsCache, ttl time.Duration) *Service {
	return &Service{
		db:    db,
		repo:  database.NewRepository(db),
		cache: cache,
		ttl:   ttl,
	}
}

// GetStatistics returns the dashboard aggregates, serving from cache when
// possible.
func (s *Service) GetStatistics(ctx context.Context) (*database.Statistics, error) {
	if stats, found := s.cache.GetOverview(); found {
		return stats, nil
	}

	if stats := s.loadPersistedCache(ctx); stats != nil {
		s.cache.SetOverview(stats)
		return stats, nil
	}

	stats, err := s.repo.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetOverview(stats)
	s.persistCache(ctx, stats)
	return stats, nil
}

// Invalidate drops both cache levels. Called after every audit write.
func (s *Service) Invalidate() {
	s.cache.Invalidate()
	if _, err := s.db.Exec(`DELETE FROM statistics_cache WHERE cache_key = ?`, overviewKey); err != nil {
		slog.Warn("Failed to clear persisted statistics cache", "error", err)
	}
}

// WarmCache precomputes the aggregates so the first dashboard request after
// startup is served from cache.
func (s *Service) WarmCache() {
	slog.Info("Starting statistics cache warming")

	if _, err := s.GetStatistics(context.Background()); err != nil {
		slog.Error("Failed to warm statistics cache", "error", err)
		return
	}

	slog.Info("Statistics cache warming completed")
}

// StartAutoRefresh starts automatic cache refresh
func (s *Service) StartAutoRefresh(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})

	go func(stop chan struct{}) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				slog.Debug("Auto-refreshing statistics cache")
				s.cache.Invalidate()
				s.WarmCache()
			case <-stop:
				return
			}
		}
	}(s.stop)
}

// StopAutoRefresh stops the refresh goroutine
func (s *Service) StopAutoRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// GetCacheStats returns statistics about the in-memory cache
func (s *Service) GetCacheStats() map[string]interface{} {
	return s.cache.GetStats()
}

// loadPersistedCache reads the SQLite cache table. Returns nil on miss or
// decode failure; callers fall through to a fresh aggregation.
func (s *Service) loadPersistedCache(ctx context.Context) *database.Statistics {
	stmt, err := s.db.GetPreparedStatement("get_statistics_cache")
	if err != nil {
		return nil
	}

	var data string
	if err := stmt.QueryRowContext(ctx, overviewKey, time.Now()).Scan(&data); err != nil {
		return nil
	}

	var stats database.Statistics
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		slog.Warn("Failed to decode persisted statistics cache", "error", err)
		return nil
	}
	return &stats
}

func (s *Service) persistCache(ctx context.Context, stats *database.Statistics) {
	data, err := json.Marshal(stats)
	if err != nil {
		slog.Warn("Failed to encode statistics for persisted cache", "error", err)
		return
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `INSERT INTO statistics_cache (id, cache_key, cache_data, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			cache_data = excluded.cache_data,
			expires_at = excluded.expires_at`,
		uuid.New().String(), overviewKey, string(data), now.Add(s.ttl), now)
	if err != nil {
		slog.Warn("Failed to persist statistics cache", "error", err)
	}
}
