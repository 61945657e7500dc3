// Package store provides durable, audit-grade storage for normalized log
// entries.
//
// The log_entries table is append-only: the package exposes no UPDATE or
// DELETE statement, and corrections to operational data arrive as new
// entries. Appending a batch is idempotent via ON CONFLICT(log_id) DO
// NOTHING, so a retried ingestion cannot duplicate rows.
//
// Every query orders by log_id ASC so repeated reads, and the replay
// passes built on them, see entries in one deterministic order.
//
// SQLite is the default engine (WAL mode, NORMAL synchronous, 5s busy
// timeout, foreign keys on); postgres:// DSNs run the same statements
// against PostgreSQL.
package store
