package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

// NewDB creates a new database connection with optimized pooling
func NewDB(dataDir string) (*DB, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "session_audits.db")

	// Configure connection string for better performance
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pooling for better performance
	pool := NewConnectionPool(db, 25, 5, 5*time.Minute) // 25 max open, 5 idle, 5min lifetime

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	// Run migrations
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize prepared statements
	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized with connection pooling",
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns,
		"max_lifetime", pool.maxLifetime)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		// Audit records table. Governorate, level, and rating are promoted
		// to columns for filtering; the full answer set lives in the
		// answers JSON.
		`CREATE TABLE IF NOT EXISTS audits (
			id TEXT PRIMARY KEY,
			governorate TEXT,
			level TEXT,
			score INTEGER NOT NULL,
			rating TEXT NOT NULL,
			answers TEXT NOT NULL, -- JSON answer set
			breakdown TEXT NOT NULL, -- JSON per-category breakdown
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		// Statistics cache table
		`CREATE TABLE IF NOT EXISTS statistics_cache (
			id TEXT PRIMARY KEY,
			cache_key TEXT NOT NULL UNIQUE,
			cache_data TEXT NOT NULL, -- JSON data
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		// Indexes for performance
		`CREATE INDEX IF NOT EXISTS idx_audits_governorate ON audits(governorate)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_level ON audits(level)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_rating ON audits(rating)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_created ON audits(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_statistics_cache_key ON statistics_cache(cache_key)`,
		`CREATE INDEX IF NOT EXISTS idx_statistics_cache_expires ON statistics_cache(expires_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// initPreparedStatements initializes frequently used prepared statements
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_audit": `INSERT INTO audits (id, governorate, level, score, rating, answers, breakdown, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,

		"get_audit": `SELECT id, governorate, level, score, rating, answers, breakdown, created_at, updated_at
			FROM audits WHERE id = ?`,

		"update_audit": `UPDATE audits SET governorate = ?, level = ?, score = ?, rating = ?,
			answers = ?, breakdown = ?, updated_at = ? WHERE id = ?`,

		"delete_audit": `DELETE FROM audits WHERE id = ?`,

		"get_statistics_cache": `SELECT cache_data FROM statistics_cache
			WHERE cache_key = ? AND expires_at > ?`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	// Close all prepared statements
	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}

	// Clear the map
	db.prepared = make(map[string]*sql.Stmt)

	// Close the database connection
	return db.DB.Close()
}
