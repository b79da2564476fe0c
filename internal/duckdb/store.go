// Package duckdb provides persistence for region datasets and signal data.
// Signal intervals are cached as gob files (fast, pure Go).
// Region tables and their annotations are archived in DuckDB (queryable).
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for archiving annotated region tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			dataset VARCHAR PRIMARY KEY,
			schema_name VARCHAR,
			row_count BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS regions (
			dataset VARCHAR,
			row_idx BIGINT,
			chrom VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT,
			strand VARCHAR,
			name VARCHAR,
			record VARCHAR,
			PRIMARY KEY (dataset, row_idx)
		)`,
		`CREATE TABLE IF NOT EXISTS annotations (
			dataset VARCHAR,
			annotation VARCHAR,
			kind VARCHAR,
			PRIMARY KEY (dataset, annotation)
		)`,
		`CREATE TABLE IF NOT EXISTS stat_values (
			dataset VARCHAR,
			annotation VARCHAR,
			row_idx BIGINT,
			value DOUBLE,
			PRIMARY KEY (dataset, annotation, row_idx)
		)`,
		`CREATE TABLE IF NOT EXISTS track_values (
			dataset VARCHAR,
			annotation VARCHAR,
			row_idx BIGINT,
			pos BIGINT,
			value DOUBLE,
			PRIMARY KEY (dataset, annotation, row_idx, pos)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
