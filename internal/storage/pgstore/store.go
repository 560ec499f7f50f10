// Package pgstore implements storage.Store against Postgres, for
// deployments that already run a relational database and want the
// object/mapping/annotation tables alongside their other schemas. It is
// grounded on colonystack-colonycore's postgres store: database/sql
// opened against the pgx/v5 stdlib driver, schema applied with
// CREATE TABLE IF NOT EXISTS on Open, no ORM.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Store manages a Postgres connection pool backing storage.Store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to dsn (a postgres:// URL) and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{db: db, logger: zap.NewNop()}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// SetLogger sets the logger used for background write diagnostics.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// DB exposes the underlying *sql.DB for integration-test hooks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }
