// Package audit orchestrates the audit lifecycle: validating submissions
// against the field catalog, scoring them, persisting the result, and
// serving listings and exports.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdelrhman06/session-audit-api/internal/database"
	"github.com/abdelrhman06/session-audit-api/internal/fieldconfig"
	"github.com/abdelrhman06/session-audit-api/internal/scoring"
)

// Invalidator is notified after every write so cached aggregates can be
// recomputed. The stats service implements it.
type Invalidator interface {
	Invalidate()
}

// Service wires the field catalog, scoring engine, and repository together.
type Service struct {
	repo        *database.Repository
	fields      *fieldconfig.Store
	invalidator Invalidator
}

// NewService creates a new audit service. invalidator may be nil.
func NewService(repo *database.Repository, fields *fieldconfig.Store, invalidator Invalidator) *Service {
	return &Service{
		repo:        repo,
		fields:      fields,
		invalidator: invalidator,
	}
}

// Preview scores an answer set without validating or persisting anything.
// Useful for live score display while the form is being filled in.
func (s *Service) Preview(answers scoring.AnswerSet) scoring.ScoreResult {
	return scoring.CalculateSessionScore(answers)
}

// Submit validates a submission against the current field catalog, scores
// it, and persists the record. Validation failures are returned as
// *fieldconfig.ValidationError.
func (s *Service) Submit(ctx context.Context, answers scoring.AnswerSet) (*database.AuditRecord, error) {
	fields, err := s.fields.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load field catalog: %w", err)
	}
	if err := fieldconfig.Validate(fields, answers); err != nil {
		return nil, err
	}

	record := database.NewAuditRecord(answers, scoring.CalculateSessionScore(answers))
	if err := s.repo.InsertAudit(ctx, record); err != nil {
		return nil, err
	}

	s.invalidate()
	slog.Info("Audit submitted",
		"id", record.ID,
		"governorate", record.Governorate,
		"score", record.Score,
		"rating", record.Rating)
	return record, nil
}

// List returns audits matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter database.AuditFilter) ([]*database.AuditRecord, error) {
	return s.repo.ListAudits(ctx, filter)
}

// Get returns one audit by ID.
func (s *Service) Get(ctx context.Context, id string) (*database.AuditRecord, error) {
	return s.repo.GetAudit(ctx, id)
}

// UpdateAnswers applies partial edits to a stored audit, rescores it, and
// persists the result. Setting a field to nil removes it from the answer
// set.
func (s *Service) UpdateAnswers(ctx context.Context, id string, edits map[string]any) (*database.AuditRecord, error) {
	record, err := s.repo.GetAudit(ctx, id)
	if err != nil {
		return nil, err
	}

	for field, value := range edits {
		if value == nil {
			delete(record.Answers, field)
			continue
		}
		record.Answers[field] = value
	}

	// Only the edited fields are re-validated. Older records are not held
	// to catalog changes made after they were submitted.
	fields, err := s.fields.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load field catalog: %w", err)
	}
	edited := make([]fieldconfig.Field, 0, len(edits))
	for _, f := range fields {
		if _, ok := edits[f.Name]; ok {
			edited = append(edited, f)
		}
	}
	if err := fieldconfig.Validate(edited, record.Answers); err != nil {
		return nil, err
	}

	record.Rescore()
	if err := s.repo.UpdateAudit(ctx, record); err != nil {
		return nil, err
	}

	s.invalidate()
	slog.Info("Audit updated", "id", record.ID, "score", record.Score, "rating", record.Rating)
	return record, nil
}

// Delete removes a stored audit.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteAudit(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	slog.Info("Audit deleted", "id", id)
	return nil
}

func (s *Service) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}
