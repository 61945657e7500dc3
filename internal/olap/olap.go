// Package olap is the store adapter for the analytical warehouse: the
// dimension tables (date, client, employee, product) and the sales fact
// table. It exposes existence checks, insert-if-absent, and single-field
// updates; both the replay engine and the external bootstrap loader write
// through it, and neither ever owns the warehouse schema beyond what the
// embedded bootstrap DDL creates for local databases.
//
// Inserts are idempotent at the primary key: INSERT ... ON CONFLICT DO
// NOTHING inside the writing transaction, never a separate existence
// check followed by an insert, so concurrent passes cannot race a
// duplicate row into existence.
package olap

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/datamartlab/logmart/internal/sqldb"
)

//go:embed schema.sql
var schemaSQL string

// Adapter wraps a warehouse database handle.
type Adapter struct {
	db     *sql.DB
	driver string
}

// Open creates or opens the warehouse at the given DSN and applies the
// bootstrap schema. Safe to call repeatedly.
func Open(dsn string) (*Adapter, error) {
	db, driver, err := sqldb.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply warehouse schema: %w", err)
	}
	return &Adapter{db: db, driver: driver}, nil
}

// Close closes the underlying database handle.
func (a *Adapter) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Adapter) rebind(query string) string {
	return sqldb.Rebind(a.driver, query)
}

// DateRow is one dim_date row. ID is the YYYYMMDD date key.
type DateRow struct {
	ID        int64
	Day       int
	Month     int
	Year      int
	Weekday   string
	MonthName string
	YearMonth int
	Quarter   string
}

// ClientRow is one dim_client row. SignupDate is a YYYYMMDD key; invalid
// means the signup date is unknown.
type ClientRow struct {
	ID         string
	SignupDate sql.NullInt64
}

// EmployeeRow is one dim_employee row.
type EmployeeRow struct {
	ID           string
	DisplayName  sql.NullString
	FirstName    sql.NullString
	LastName     sql.NullString
	StartDate    sql.NullInt64
	PasswordHash sql.NullString
	Email        sql.NullString
}

// ProductRow is one dim_product row, keyed by EAN code.
type ProductRow struct {
	EAN      int64
	Category sql.NullString
	Aisle    sql.NullString
	Label    sql.NullString
	Price    sql.NullFloat64
}

// SaleRow is one fact_sales row, referencing dimension keys.
type SaleRow struct {
	ID         string
	DateKey    int64
	ClientID   string
	EmployeeID string
	EAN        int64
	TicketID   sql.NullString
}

// DateKey derives the YYYYMMDD dimension key for a time.
func DateKey(t time.Time) int64 {
	return int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())
}

// NewDateRow builds a full dim_date row for a time, deriving the
// descriptive attributes (weekday and month names, YYYYMM year-month,
// Qn quarter).
func NewDateRow(t time.Time) DateRow {
	return DateRow{
		ID:        DateKey(t),
		Day:       t.Day(),
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   t.Weekday().String(),
		MonthName: t.Month().String(),
		YearMonth: t.Year()*100 + int(t.Month()),
		Quarter:   fmt.Sprintf("Q%d", (int(t.Month())-1)/3+1),
	}
}
