// Package sqlite provides SQLite-based storage implementations for lexicon services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string

	// Now returns the current time. Overridable in tests.
	Now func() time.Time
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path, Now: time.Now}
}

// now returns the current time truncated to the stored precision.
func (db *DB) now() time.Time {
	return db.Now().UTC().Truncate(time.Second)
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// WAL is ~7x faster for writes and allows concurrent reads during writes.
	// Trade-off: creates additional -wal and -shm files alongside the database.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS terminology_map (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			user_term TEXT NOT NULL COLLATE NOCASE,
			canonical_term TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 1.0,
			provenance TEXT NOT NULL DEFAULT 'manual',
			usage_count INTEGER NOT NULL DEFAULT 0,
			last_used_at TEXT,
			is_active INTEGER NOT NULL DEFAULT 0,
			is_verified INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			UNIQUE (category, user_term)
		);

		CREATE INDEX IF NOT EXISTS idx_terminology_map_active ON terminology_map(is_active, category);

		CREATE TABLE IF NOT EXISTS search_query_logs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			detected_regions TEXT NOT NULL DEFAULT '[]',
			query_type TEXT NOT NULL DEFAULT '',
			recommendations_count INTEGER,
			response_time_ms INTEGER,
			complexity TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_search_query_logs_created_at ON search_query_logs(created_at);

		CREATE TABLE IF NOT EXISTS content_items (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			platform TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			auto_tags TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			enhanced_summary TEXT NOT NULL DEFAULT '',
			extracted_text TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			keywords TEXT NOT NULL DEFAULT '[]',
			live_link TEXT NOT NULL DEFAULT '',
			enriched_at TEXT,
			extraction_error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_content_items_enriched_at ON content_items(enriched_at);

		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			report_type TEXT NOT NULL,
			period_start TEXT,
			period_end TEXT,
			total_queries INTEGER NOT NULL DEFAULT 0,
			zero_result_count INTEGER NOT NULL DEFAULT 0,
			low_confidence_count INTEGER NOT NULL DEFAULT 0,
			competitor_query_count INTEGER NOT NULL DEFAULT 0,
			summary TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_reports_type_created_at ON reports(report_type, created_at);
	`

	_, err := db.db.Exec(schema)
	return err
}
