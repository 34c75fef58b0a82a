package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/abdelrhman06/session-audit-api/internal/encoding"
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// InsertAudit stores a new audit record.
func (r *Repository) InsertAudit(ctx context.Context, record *AuditRecord) error {
	answers, err := encoding.MarshalJSON(record.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	breakdown, err := encoding.MarshalJSON(record.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	stmt, err := r.db.GetPreparedStatement("insert_audit")
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx,
		record.ID, record.Governorate, record.Level, record.Score, record.Rating,
		string(answers), string(breakdown), record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit: %w", err)
	}
	return nil
}

// GetAudit fetches one audit by ID. Missing records surface as
// sql.ErrNoRows.
func (r *Repository) GetAudit(ctx context.Context, id string) (*AuditRecord, error) {
	stmt, err := r.db.GetPreparedStatement("get_audit")
	if err != nil {
		return nil, err
	}
	return scanAudit(stmt.QueryRowContext(ctx, id))
}

// ListAudits returns audits newest first, optionally filtered by
// governorate, level, and rating.
func (r *Repository) ListAudits(ctx context.Context, filter AuditFilter) ([]*AuditRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.Governorate != "" {
		conditions = append(conditions, "governorate = ?")
		args = append(args, filter.Governorate)
	}
	if filter.Level != "" {
		conditions = append(conditions, "level = ?")
		args = append(args, filter.Level)
	}
	if filter.Rating != "" {
		conditions = append(conditions, "rating = ?")
		args = append(args, filter.Rating)
	}

	query := `SELECT id, governorate, level, score, rating, answers, breakdown, created_at, updated_at FROM audits`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audits: %w", err)
	}
	defer rows.Close()

	var records []*AuditRecord
	for rows.Next() {
		record, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// UpdateAudit persists an edited record. The caller is expected to have
// rescored it first. Missing records surface as sql.ErrNoRows.
func (r *Repository) UpdateAudit(ctx context.Context, record *AuditRecord) error {
	answers, err := encoding.MarshalJSON(record.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	breakdown, err := encoding.MarshalJSON(record.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	stmt, err := r.db.GetPreparedStatement("update_audit")
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(ctx,
		record.Governorate, record.Level, record.Score, record.Rating,
		string(answers), string(breakdown), record.UpdatedAt, record.ID)
	if err != nil {
		return fmt.Errorf("failed to update audit: %w", err)
	}
	return requireRow(res)
}

// DeleteAudit removes a record. Missing records surface as sql.ErrNoRows.
func (r *Repository) DeleteAudit(ctx context.Context, id string) error {
	stmt, err := r.db.GetPreparedStatement("delete_audit")
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete audit: %w", err)
	}
	return requireRow(res)
}

// GetStatistics aggregates the audit table in a single pass per dimension.
func (r *Repository) GetStatistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		RatingDistribution:      make(map[string]int),
		GovernorateDistribution: make(map[string]int),
	}

	var avg sql.NullFloat64
	var latest sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(score), MAX(created_at) FROM audits`).
		Scan(&stats.TotalRecords, &avg, &latest)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate audits: %w", err)
	}
	if avg.Valid {
		stats.AverageScore = avg.Float64
	}
	if latest.Valid {
		if t, err := parseSQLiteTime(latest.String); err == nil {
			stats.LatestEntry = &t
		}
	}

	if err := r.countByColumn(ctx, "rating", stats.RatingDistribution); err != nil {
		return nil, err
	}
	if err := r.countByColumn(ctx, "governorate", stats.GovernorateDistribution); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *Repository) countByColumn(ctx context.Context, column string, out map[string]int) error {
	// column is one of our own identifiers, never user input.
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM audits WHERE %s != '' GROUP BY %s`, column, column, column)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		out[key] = count
	}
	return rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAudit(row rowScanner) (*AuditRecord, error) {
	var record AuditRecord
	var answers, breakdown string
	err := row.Scan(&record.ID, &record.Governorate, &record.Level, &record.Score,
		&record.Rating, &answers, &breakdown, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan audit: %w", err)
	}
	if err := encoding.UnmarshalJSON([]byte(answers), &record.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	if err := encoding.UnmarshalJSON([]byte(breakdown), &record.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to decode breakdown: %w", err)
	}
	return &record, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// parseSQLiteTime handles the formats the sqlite driver emits for MAX()
// over a DATETIME column.
func parseSQLiteTime(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
