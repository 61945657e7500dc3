package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/datamartlab/logmart/internal/logrec"
)

const entryColumns = `log_id, actor_id, event_time, operation, target_table, target_id, field_name, detail_kind, detail`

// Filter selects entries by (target_table, operation, optional field).
// An empty Field matches any field name.
type Filter struct {
	Table string
	Op    logrec.Operation
	Field string
}

// ByTable returns all entries for one target table, ordered by log_id.
func (s *Store) ByTable(ctx context.Context, table string) ([]logrec.Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+entryColumns+`
		FROM log_entries
		WHERE target_table = ?
		ORDER BY log_id ASC
	`), table)
	if err != nil {
		return nil, fmt.Errorf("query by table: %w", err)
	}
	return collectEntries(rows)
}

// ByTimeRange returns entries with from <= event_time < to, ordered by
// log_id.
func (s *Store) ByTimeRange(ctx context.Context, from, to time.Time) ([]logrec.Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+entryColumns+`
		FROM log_entries
		WHERE event_time >= ? AND event_time < ?
		ORDER BY log_id ASC
	`), from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	return collectEntries(rows)
}

// Match returns entries matching any of the given filters, ordered by
// log_id. A replay pass uses one Match call to select everything its
// interest rules cover.
func (s *Store) Match(ctx context.Context, filters []Filter) ([]logrec.Entry, error) {
	if len(filters) == 0 {
		return []logrec.Entry{}, nil
	}

	var clauses []string
	var args []any
	for _, f := range filters {
		if f.Field == "" {
			clauses = append(clauses, `(target_table = ? AND operation = ?)`)
			args = append(args, f.Table, string(f.Op))
			continue
		}
		clauses = append(clauses, `(target_table = ? AND operation = ? AND LOWER(field_name) = LOWER(?))`)
		args = append(args, f.Table, string(f.Op), f.Field)
	}

	query := s.rebind(`
		SELECT ` + entryColumns + `
		FROM log_entries
		WHERE ` + strings.Join(clauses, " OR ") + `
		ORDER BY log_id ASC
	`)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matching entries: %w", err)
	}
	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]logrec.Entry, error) {
	defer rows.Close()

	entries := []logrec.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (logrec.Entry, error) {
	var e logrec.Entry
	var op, kind, detail string

	if err := rows.Scan(
		&e.LogID, &e.ActorID, &e.EventTime, &op,
		&e.TargetTable, &e.TargetID, &e.FieldName, &kind, &detail,
	); err != nil {
		return logrec.Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	parsedOp, err := logrec.ParseOperation(op)
	if err != nil {
		return logrec.Entry{}, fmt.Errorf("scan entry %d: %w", e.LogID, err)
	}
	e.Operation = parsedOp

	d, err := logrec.DecodeDetail(kind, detail)
	if err != nil {
		return logrec.Entry{}, fmt.Errorf("scan entry %d: %w", e.LogID, err)
	}
	e.Detail = d
	e.EventTime = e.EventTime.UTC()

	return e, nil
}
