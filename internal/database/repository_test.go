package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrhman06/session-audit-api/internal/scoring"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func sampleAnswers(governorate, level string, extra scoring.AnswerSet) scoring.AnswerSet {
	answers := scoring.AnswerSet{
		"Governorate":   governorate,
		"Level":         level,
		"Camera":        "Working",
		"Full Session?": "Yes",
	}
	for k, v := range extra {
		answers[k] = v
	}
	return answers
}

func insertSample(t *testing.T, repo *Repository, governorate, level string, extra scoring.AnswerSet) *AuditRecord {
	t.Helper()
	answers := sampleAnswers(governorate, level, extra)
	record := NewAuditRecord(answers, scoring.CalculateSessionScore(answers))
	require.NoError(t, repo.InsertAudit(context.Background(), record))
	return record
}

func TestInsertAndGetAudit(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	record := insertSample(t, repo, "Cairo", "Level 1", nil)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, 15, record.Score)
	assert.Equal(t, scoring.RatingBad, record.Rating)

	got, err := repo.GetAudit(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, "Cairo", got.Governorate)
	assert.Equal(t, "Level 1", got.Level)
	assert.Equal(t, record.Score, got.Score)
	assert.Equal(t, "Working", got.Answers["Camera"])
	assert.Equal(t, 10, got.Breakdown.Points("Full Session"))
}

func TestGetAuditNotFound(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.GetAudit(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListAuditsFiltering(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	insertSample(t, repo, "Cairo", "Level 1", nil)
	insertSample(t, repo, "Cairo", "Level 2", nil)
	insertSample(t, repo, "Giza", "Level 1", nil)

	tests := []struct {
		name     string
		filter   AuditFilter
		expected int
	}{
		{name: "no filter returns everything", filter: AuditFilter{}, expected: 3},
		{name: "by governorate", filter: AuditFilter{Governorate: "Cairo"}, expected: 2},
		{name: "by level", filter: AuditFilter{Level: "Level 1"}, expected: 2},
		{name: "by governorate and level", filter: AuditFilter{Governorate: "Cairo", Level: "Level 1"}, expected: 1},
		{name: "by rating", filter: AuditFilter{Rating: scoring.RatingBad}, expected: 3},
		{name: "no matches", filter: AuditFilter{Governorate: "Aswan"}, expected: 0},
		{name: "limit caps the listing", filter: AuditFilter{Limit: 2}, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := repo.ListAudits(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, records, tt.expected)
		})
	}
}

func TestListAuditsNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	older := insertSample(t, repo, "Cairo", "Level 1", nil)
	// Force distinct timestamps; sqlite DATETIME comparison is textual.
	newer := NewAuditRecord(sampleAnswers("Giza", "Level 2", nil),
		scoring.CalculateSessionScore(sampleAnswers("Giza", "Level 2", nil)))
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)
	newer.UpdatedAt = newer.CreatedAt
	require.NoError(t, repo.InsertAudit(ctx, newer))

	records, err := repo.ListAudits(ctx, AuditFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, newer.ID, records[0].ID)
	assert.Equal(t, older.ID, records[1].ID)
}

func TestUpdateAuditRescores(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	record := insertSample(t, repo, "Cairo", "Level 1", nil)

	record.Answers["Camera"] = "Not Working"
	record.Answers["Governorate"] = "Luxor"
	record.Rescore()
	require.NoError(t, repo.UpdateAudit(ctx, record))

	got, err := repo.GetAudit(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Score)
	assert.Equal(t, "Luxor", got.Governorate)
	assert.Equal(t, 0, got.Breakdown.Points("Camera"))
}

func TestUpdateAuditNotFound(t *testing.T) {
	repo := newTestRepository(t)

	answers := sampleAnswers("Cairo", "Level 1", nil)
	record := NewAuditRecord(answers, scoring.CalculateSessionScore(answers))
	record.ID = "no-such-id"
	assert.ErrorIs(t, repo.UpdateAudit(context.Background(), record), sql.ErrNoRows)
}

func TestDeleteAudit(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	record := insertSample(t, repo, "Cairo", "Level 1", nil)
	require.NoError(t, repo.DeleteAudit(ctx, record.ID))

	_, err := repo.GetAudit(ctx, record.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.ErrorIs(t, repo.DeleteAudit(ctx, record.ID), sql.ErrNoRows)
}

func TestGetStatistics(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		stats, err := repo.GetStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalRecords)
		assert.Equal(t, 0.0, stats.AverageScore)
		assert.Empty(t, stats.RatingDistribution)
		assert.Nil(t, stats.LatestEntry)
	})

	insertSample(t, repo, "Cairo", "Level 1", nil)                                      // scores 15
	insertSample(t, repo, "Cairo", "Level 2", scoring.AnswerSet{"Activity": "Yes"})     // scores 20
	insertSample(t, repo, "Giza", "Level 1", scoring.AnswerSet{"Sound": "Bad quality"}) // scores 16

	t.Run("populated table", func(t *testing.T) {
		stats, err := repo.GetStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalRecords)
		assert.InDelta(t, 17.0, stats.AverageScore, 0.001)
		assert.Equal(t, map[string]int{scoring.RatingBad: 3}, stats.RatingDistribution)
		assert.Equal(t, map[string]int{"Cairo": 2, "Giza": 1}, stats.GovernorateDistribution)
		require.NotNil(t, stats.LatestEntry)
		assert.WithinDuration(t, time.Now(), *stats.LatestEntry, time.Minute)
	})
}
