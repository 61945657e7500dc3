// Package sqldb opens database handles for the change-log store and the
// warehouse adapter. SQLite is the default engine; postgres:// DSNs select
// PostgreSQL so the analytical tables can live in an external warehouse.
package sqldb

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Driver names returned by Open.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open opens a database for the given DSN and verifies the connection.
// A postgres:// or postgresql:// DSN selects lib/pq; anything else is
// treated as a SQLite path (created if absent) and configured with WAL
// mode, a busy timeout, and foreign key enforcement.
func Open(dsn string) (*sql.DB, string, error) {
	driver := DriverSQLite
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = DriverPostgres
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite supports one writer at a time; a single connection
		// avoids SQLITE_BUSY under concurrent appends.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, "", fmt.Errorf("apply pragmas: %w", err)
		}
	}

	return db, driver, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Rebind rewrites ?-style placeholders to $n for PostgreSQL. Statements
// in this module are written with ? and rebound per driver.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
