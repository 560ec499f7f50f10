// Package duckdbstore implements storage.Store against an embedded
// DuckDB database, for single-process deployments that want a queryable,
// on-disk backend without running a separate database server. It is
// grounded on the teacher's internal/duckdb package: database/sql over
// the go-duckdb driver, schema created with CREATE TABLE IF NOT EXISTS,
// and bulk writes through the Appender API rather than per-row INSERT.
package duckdbstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// Store manages a DuckDB connection backing storage.Store.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates a DuckDB database at path. An empty path opens
// an in-memory database, used by tests and by ephemeral deployments.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, logger: zap.NewNop()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// SetLogger sets the logger used for background write diagnostics.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for administrative access.
func (s *Store) DB() *sql.DB {
	return s.db
}
