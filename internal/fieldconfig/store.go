package fieldconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Store persists the field catalog in SQLite so admin edits survive
// restarts. Rows keep an explicit position so the form order is stable.
type Store struct {
	db *sql.DB
}

// NewStore creates the backing table and seeds the default catalog when the
// table is empty.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate field catalog: %w", err)
	}
	seeded, err := s.seedDefaults()
	if err != nil {
		return nil, fmt.Errorf("failed to seed field catalog: %w", err)
	}
	if seeded {
		slog.Info("Field catalog seeded with defaults", "fields", len(Defaults()))
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS field_configs (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		config TEXT NOT NULL
	)`)
	return err
}

func (s *Store) seedDefaults() (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM field_configs`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	return true, s.replaceAll(context.Background(), Defaults())
}

// List returns the catalog in form order.
func (s *Store) List(ctx context.Context) ([]Field, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT config FROM field_configs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query field catalog: %w", err)
	}
	defer rows.Close()

	var fields []Field
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan field config: %w", err)
		}
		var f Field
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, fmt.Errorf("failed to decode field config: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// Get returns one field by name. Missing fields surface as sql.ErrNoRows.
func (s *Store) Get(ctx context.Context, name string) (Field, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT config FROM field_configs WHERE name = ?`, name).Scan(&raw)
	if err != nil {
		return Field{}, err
	}
	var f Field
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return Field{}, fmt.Errorf("failed to decode field config: %w", err)
	}
	return f, nil
}

// Upsert inserts a new field at the end of the form or replaces an existing
// one in place.
func (s *Store) Upsert(ctx context.Context, field Field) error {
	if field.Name == "" {
		return fmt.Errorf("field name is required")
	}
	if !ValidType(field.Type) {
		return fmt.Errorf("unknown field type %q", field.Type)
	}

	raw, err := json.Marshal(field)
	if err != nil {
		return fmt.Errorf("failed to encode field config: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO field_configs (name, position, config)
		VALUES (?, COALESCE((SELECT position FROM field_configs WHERE name = ?),
			(SELECT COALESCE(MAX(position), -1) + 1 FROM field_configs)), ?)
		ON CONFLICT(name) DO UPDATE SET config = excluded.config`,
		field.Name, field.Name, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save field config: %w", err)
	}
	return nil
}

// Delete removes a field from the catalog. Deleting an unknown field
// surfaces as sql.ErrNoRows.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM field_configs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete field config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Reset discards all edits and restores the default catalog.
func (s *Store) Reset(ctx context.Context) error {
	return s.replaceAll(ctx, Defaults())
}

// ExportJSON serializes the catalog for download. The array form preserves
// field order across export and import.
func (s *Store) ExportJSON(ctx context.Context) ([]byte, error) {
	fields, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(fields, "", "  ")
}

// ImportJSON replaces the whole catalog with an uploaded configuration. The
// payload is validated before anything is written.
func (s *Store) ImportJSON(ctx context.Context, data []byte) error {
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}
	if len(fields) == 0 {
		return fmt.Errorf("configuration contains no fields")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("configuration contains a field with no name")
		}
		if !ValidType(f.Type) {
			return fmt.Errorf("field %q has unknown type %q", f.Name, f.Type)
		}
		if seen[f.Name] {
			return fmt.Errorf("configuration contains field %q twice", f.Name)
		}
		seen[f.Name] = true
	}
	return s.replaceAll(ctx, fields)
}

func (s *Store) replaceAll(ctx context.Context, fields []Field) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM field_configs`); err != nil {
		return fmt.Errorf("failed to clear field catalog: %w", err)
	}
	for i, f := range fields {
		raw, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("failed to encode field config: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO field_configs (name, position, config) VALUES (?, ?, ?)`,
			f.Name, i, string(raw)); err != nil {
			return fmt.Errorf("failed to insert field config: %w", err)
		}
	}
	return tx.Commit()
}
