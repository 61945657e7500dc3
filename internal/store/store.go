package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/datamartlab/logmart/internal/sqldb"
)

//go:embed schema.sql
var schemaSQL string

// Store is the append-only change-log store.
type Store struct {
	db     *sql.DB
	driver string
}

// Open creates or opens the change-log database at the given DSN and
// applies the schema. Safe to call repeatedly.
func Open(dsn string) (*Store, error) {
	db, driver, err := sqldb.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open change log: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply change log schema: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying handle. Prefer Store methods; this exists for
// callers that own transaction boundaries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// MaxLogID returns the highest log_id present, or 0 for an empty log.
// The normalizer resumes its ID sequence from here.
func (s *Store) MaxLogID(ctx context.Context) (int64, error) {
	var max int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(log_id), 0) FROM log_entries
	`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max log id: %w", err)
	}
	return max, nil
}

func (s *Store) rebind(query string) string {
	return sqldb.Rebind(s.driver, query)
}
