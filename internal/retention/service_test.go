package retention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrhman06/session-audit-api/internal/database"
	"github.com/abdelrhman06/session-audit-api/internal/scoring"
)

func newTestService(t *testing.T, retentionDays int) (*Service, *database.DB) {
	t.Helper()
	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, retentionDays), db
}

func insertAuditAt(t *testing.T, db *database.DB, governorate string, createdAt time.Time) string {
	t.Helper()
	repo := database.NewRepository(db)
	answers := scoring.AnswerSet{
		"Governorate": governorate,
		"Level":       "Level 1",
		"Camera":      "Working",
	}
	record := database.NewAuditRecord(answers, scoring.CalculateSessionScore(answers))
	require.NoError(t, repo.InsertAudit(context.Background(), record))

	_, err := db.Exec("UPDATE audits SET created_at = ? WHERE id = ?", createdAt, record.ID)
	require.NoError(t, err)
	return record.ID
}

func TestCleanupOldAudits(t *testing.T) {
	svc, db := newTestService(t, 30)

	oldID := insertAuditAt(t, db, "Cairo", time.Now().AddDate(0, 0, -45))
	freshID := insertAuditAt(t, db, "Giza", time.Now())

	deleted, err := svc.CleanupOldAudits()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM audits WHERE id = ?", oldID).Scan(&count))
	assert.Equal(t, 0, count)

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM audits WHERE id = ?", freshID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCleanupPrunesExpiredStatisticsCache(t *testing.T) {
	svc, db := newTestService(t, 30)

	_, err := db.Exec(
		"INSERT INTO statistics_cache (id, cache_key, cache_data, expires_at, created_at) VALUES (?, ?, ?, ?, ?)",
		"expired-1", "stats:old", "{}", time.Now().Add(-time.Hour), time.Now().Add(-2*time.Hour),
	)
	require.NoError(t, err)

	_, err = svc.CleanupOldAudits()
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM statistics_cache").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestDeleteAuditsByGovernorate(t *testing.T) {
	svc, db := newTestService(t, 30)

	insertAuditAt(t, db, "Cairo", time.Now())
	insertAuditAt(t, db, "Cairo", time.Now())
	insertAuditAt(t, db, "Giza", time.Now())

	deleted, err := svc.DeleteAuditsByGovernorate("Cairo")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM audits").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestGetRetentionStats(t *testing.T) {
	svc, db := newTestService(t, 30)

	insertAuditAt(t, db, "Cairo", time.Now().AddDate(0, 0, -45))
	insertAuditAt(t, db, "Giza", time.Now())

	stats, err := svc.GetRetentionStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats["total_audits"])
	assert.Equal(t, 1, stats["expired_audits"])
	assert.NotNil(t, stats["oldest_audit"])
}

func TestGetRetentionInfo(t *testing.T) {
	svc, _ := newTestService(t, 0)

	info := svc.GetRetentionInfo()
	assert.Equal(t, DefaultRetentionDays, info["audit_retention_days"])
	assert.Equal(t, "SHA-256", info["anonymization_method"])
}

func TestAnonymizeValue(t *testing.T) {
	svc, _ := newTestService(t, 30)

	a := svc.AnonymizeValue("Ahmed Hassan")
	b := svc.AnonymizeValue("Ahmed Hassan")
	c := svc.AnonymizeValue("Sara Mohamed")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
