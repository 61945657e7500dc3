package store

import (
	"context"
	"fmt"

	"github.com/datamartlab/logmart/internal/logrec"
)

// Append inserts entries in order within a single transaction.
//
// ON CONFLICT(log_id) DO NOTHING makes a re-appended batch a no-op
// instead of a constraint error, so retried ingestions are idempotent.
// There is no corresponding update or delete: stored entries are never
// mutated.
func (s *Store) Append(ctx context.Context, entries []logrec.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append entries: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO log_entries
		(log_id, actor_id, event_time, operation, target_table, target_id, field_name, detail_kind, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(log_id) DO NOTHING
	`))
	if err != nil {
		return fmt.Errorf("append entries: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.LogID,
			e.ActorID,
			e.EventTime.UTC(),
			string(e.Operation),
			e.TargetTable,
			e.TargetID,
			e.FieldName,
			string(e.Detail.Kind()),
			e.Detail.String(),
		)
		if err != nil {
			return fmt.Errorf("append entry %d: %w", e.LogID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append entries: commit: %w", err)
	}
	return nil
}
