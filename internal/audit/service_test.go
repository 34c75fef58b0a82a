package audit

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrhman06/session-audit-api/internal/database"
	"github.com/abdelrhman06/session-audit-api/internal/fieldconfig"
	"github.com/abdelrhman06/session-audit-api/internal/scoring"
)

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate() { c.calls++ }

func newTestService(t *testing.T) (*Service, *countingInvalidator) {
	t.Helper()
	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fields, err := fieldconfig.NewStore(db.DB)
	require.NoError(t, err)

	inv := &countingInvalidator{}
	return NewService(database.NewRepository(db), fields, inv), inv
}

// completeAnswers fills every required default field.
func completeAnswers() scoring.AnswerSet {
	return scoring.AnswerSet{
		"Level":                 "Level 1",
		"Session type":          "Online",
		"Day/Number":            "Day 3",
		"Group Code":            "G-101",
		"Month":                 "March",
		"Session Date":          "2025-03-12",
		"Governorate":           "Cairo",
		"Area":                  "Nasr City",
		"Center Name":           "Center A",
		"Instructor Code":       "INS-9",
		"Instructor Name":       "Sara",
		"Camera":                "Working",
		"Camera quality":        "Clear",
		"Camera Coverage":       "Full coverage",
		"Sound":                 "Working excellent",
		"Internet connection":   "Excellent",
		"Full Session?":         "Yes",
		"Session duration ( hours)": 2.0,
		"Students seated":           "Yes",
		"Coordinator appearance":    "Yes",
		"Room adequacy":             "Room adequate",
		"Instructor appearance":     "Yes",
		"Instructor Attitude":       "Good",
		"English language of instructor":                  "Excellent",
		"Language of instructor (slang language is used)": "No",
		"Activity":                        "Yes",
		"Break":                           "Yes",
		"Break Time ( Minutes)":           20.0,
		"Students feedback average score": 96.0,
		"Coordinator feedback score":      95.0,
		"Auditor":                         "Mona",
		"Project Coordinator":             "Khaled",
		"Validity":                        "Valid",
	}
}

func TestSubmit(t *testing.T) {
	svc, inv := newTestService(t)
	ctx := context.Background()

	record, err := svc.Submit(ctx, completeAnswers())
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, 100, record.Score)
	assert.Equal(t, scoring.RatingExcellent, record.Rating)
	assert.Equal(t, "Cairo", record.Governorate)
	assert.Equal(t, 1, inv.calls)

	got, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
}

func TestSubmitRejectsIncompleteSubmission(t *testing.T) {
	svc, inv := newTestService(t)

	answers := completeAnswers()
	delete(answers, "Auditor")
	delete(answers, "Group Code")

	_, err := svc.Submit(context.Background(), answers)
	require.Error(t, err)

	verr, ok := err.(*fieldconfig.ValidationError)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"Auditor", "Group Code"}, verr.Missing)
	assert.Zero(t, inv.calls)

	records, err := svc.List(context.Background(), database.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubmitRejectsInvalidOption(t *testing.T) {
	svc, _ := newTestService(t)

	answers := completeAnswers()
	answers["Camera"] = "Sort of working"

	_, err := svc.Submit(context.Background(), answers)
	require.Error(t, err)
	verr, ok := err.(*fieldconfig.ValidationError)
	require.True(t, ok)
	assert.NotEmpty(t, verr.Problems)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	svc, inv := newTestService(t)

	result := svc.Preview(scoring.AnswerSet{"Camera": "Working"})
	assert.Equal(t, 5, result.TotalScore)
	assert.Equal(t, scoring.RatingBad, result.SessionRating)
	assert.Zero(t, inv.calls)

	records, err := svc.List(context.Background(), database.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUpdateAnswers(t *testing.T) {
	svc, inv := newTestService(t)
	ctx := context.Background()

	record, err := svc.Submit(ctx, completeAnswers())
	require.NoError(t, err)

	t.Run("edit rescans score and filter columns", func(t *testing.T) {
		updated, err := svc.UpdateAnswers(ctx, record.ID, map[string]any{
			"Camera":      "Not Working",
			"Governorate": "Giza",
		})
		require.NoError(t, err)
		assert.Equal(t, 95, updated.Score)
		assert.Equal(t, scoring.RatingExcellent, updated.Rating)
		assert.Equal(t, "Giza", updated.Governorate)
		assert.Equal(t, 2, inv.calls) // submit + update
	})

	t.Run("invalid edit is rejected", func(t *testing.T) {
		_, err := svc.UpdateAnswers(ctx, record.ID, map[string]any{
			"Break Time ( Minutes)": 500.0,
		})
		require.Error(t, err)
		_, ok := err.(*fieldconfig.ValidationError)
		assert.True(t, ok)
	})

	t.Run("unknown record", func(t *testing.T) {
		_, err := svc.UpdateAnswers(ctx, "no-such-id", map[string]any{"Camera": "Working"})
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestDelete(t *testing.T) {
	svc, inv := newTestService(t)
	ctx := context.Background()

	record, err := svc.Submit(ctx, completeAnswers())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, record.ID))
	assert.Equal(t, 2, inv.calls)

	_, err = svc.Get(ctx, record.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.ErrorIs(t, svc.Delete(ctx, record.ID), sql.ErrNoRows)
}
