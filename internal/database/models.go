package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/abdelrhman06/session-audit-api/internal/scoring"
)

// AuditRecord is one scored session audit. Governorate and Level are copied
// out of the answer set at write time so listings can filter without
// decoding JSON.
type AuditRecord struct {
	ID          string            `json:"id" db:"id"`
	Governorate string            `json:"governorate,omitempty" db:"governorate"`
	Level       string            `json:"level,omitempty" db:"level"`
	Score       int               `json:"score" db:"score"`
	Rating      string            `json:"rating" db:"rating"`
	Answers     scoring.AnswerSet `json:"answers" db:"answers"`
	Breakdown   scoring.Breakdown `json:"breakdown" db:"breakdown"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// NewAuditRecord builds a record with a generated ID from a scored answer
// set. The filter columns are derived from the answers.
func NewAuditRecord(answers scoring.AnswerSet, result scoring.ScoreResult) *AuditRecord {
	now := time.Now()
	return &AuditRecord{
		ID:          uuid.New().String(),
		Governorate: stringAnswer(answers, "Governorate"),
		Level:       stringAnswer(answers, "Level"),
		Score:       result.TotalScore,
		Rating:      result.SessionRating,
		Answers:     answers,
		Breakdown:   result.ScoreBreakdown,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Rescore refreshes the stored score, rating, breakdown, and filter columns
// after the answer set has been edited.
func (r *AuditRecord) Rescore() {
	result := scoring.CalculateSessionScore(r.Answers)
	r.Score = result.TotalScore
	r.Rating = result.SessionRating
	r.Breakdown = result.ScoreBreakdown
	r.Governorate = stringAnswer(r.Answers, "Governorate")
	r.Level = stringAnswer(r.Answers, "Level")
	r.UpdatedAt = time.Now()
}

// AuditFilter narrows a listing. Zero values mean "no constraint".
type AuditFilter struct {
	Governorate string
	Level       string
	Rating      string
	Limit       int
}

// Statistics summarizes the audit table for the dashboard.
type Statistics struct {
	TotalRecords            int            `json:"total_records"`
	AverageScore            float64        `json:"average_score"`
	RatingDistribution      map[string]int `json:"rating_distribution"`
	GovernorateDistribution map[string]int `json:"governorate_distribution"`
	LatestEntry             *time.Time     `json:"latest_entry,omitempty"`
}

func stringAnswer(answers scoring.AnswerSet, field string) string {
	s, _ := answers[field].(string)
	return s
}
