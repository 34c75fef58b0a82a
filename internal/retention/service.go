package retention

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdelrhman06/session-audit-api/internal/database"
)

// DefaultRetentionDays is how long audit records are kept before cleanup.
const DefaultRetentionDays = 365

// Service handles audit record retention and cleanup
type Service struct {
	db            *database.DB
	retentionDays int

	stopCh chan struct{}
}

// NewService creates a new retention service
func NewService(db *database.DB, retentionDays int) *Service {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Service{
		db:            db,
		retentionDays: retentionDays,
		stopCh:        make(chan struct{}),
	}
}

// AnonymizeValue creates an anonymized fingerprint of a field value for exports
func (s *Service) AnonymizeValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:])
}

// CleanupOldAudits removes audit records older than the retention period and
// prunes expired statistics cache rows. Returns the number of audits deleted.
func (s *Service) CleanupOldAudits() (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -s.retentionDays)

	auditResult, err := s.db.Exec("DELETE FROM audits WHERE created_at < ?", cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audits: %w", err)
	}

	auditRows, _ := auditResult.RowsAffected()

	cacheResult, err := s.db.Exec("DELETE FROM statistics_cache WHERE expires_at < ?", time.Now())
	if err != nil {
		slog.Warn("Failed to prune statistics cache", "error", err)
	}

	var cacheRows int64
	if cacheResult != nil {
		cacheRows, _ = cacheResult.RowsAffected()
	}

	slog.Info("Retention cleanup completed",
		"cutoff_date", cutoffDate,
		"audits_deleted", auditRows,
		"cache_entries_pruned", cacheRows,
	)

	return auditRows, nil
}

// DeleteAuditsByGovernorate removes all audit records for a governorate
func (s *Service) DeleteAuditsByGovernorate(governorate string) (int64, error) {
	slog.Info("Initiating governorate data deletion", "governorate", governorate)

	result, err := s.db.Exec("DELETE FROM audits WHERE governorate = ?", governorate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audits for governorate: %w", err)
	}

	rows, _ := result.RowsAffected()
	slog.Info("Governorate data deletion completed", "governorate", governorate, "audits_deleted", rows)

	return rows, nil
}

// GetRetentionInfo provides information about data retention policies
func (s *Service) GetRetentionInfo() map[string]interface{} {
	return map[string]interface{}{
		"audit_retention_days":     s.retentionDays,
		"statistics_cache_minutes": 15,
		"anonymization_method":     "SHA-256",
		"cleanup_interval":         "24h",
	}
}

// GetRetentionStats returns counts of records inside and outside the retention window
func (s *Service) GetRetentionStats() (map[string]interface{}, error) {
	cutoffDate := time.Now().AddDate(0, 0, -s.retentionDays)

	query := `
		SELECT
			COUNT(*) as total_audits,
			COALESCE(SUM(CASE WHEN created_at < ? THEN 1 ELSE 0 END), 0) as expired_audits,
			MIN(created_at) as oldest_audit,
			MAX(created_at) as newest_audit
		FROM audits
	`

	var totalAudits, expiredAudits int
	var oldestAudit, newestAudit *time.Time

	err := s.db.QueryRow(query, cutoffDate).Scan(&totalAudits, &expiredAudits, &oldestAudit, &newestAudit)
	if err != nil {
		return nil, fmt.Errorf("failed to get retention stats: %w", err)
	}

	return map[string]interface{}{
		"total_audits":   totalAudits,
		"expired_audits": expiredAudits,
		"oldest_audit":   oldestAudit,
		"newest_audit":   newestAudit,
		"retention_info": s.GetRetentionInfo(),
	}, nil
}

// StartScheduledCleanup runs cleanup once a day until Stop is called
func (s *Service) StartScheduledCleanup() {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := s.CleanupOldAudits(); err != nil {
					slog.Error("Scheduled retention cleanup failed", "error", err)
				}
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the scheduled cleanup loop
func (s *Service) Stop() {
	close(s.stopCh)
}
