// Package logrec defines the canonical typed form of audit-log records.
//
// An Entry is immutable once written: corrections to operational data are
// represented as new entries, never as mutations of old ones. The Detail
// union guarantees that no code downstream of the normalizer ever inspects
// a raw, untyped value.
package logrec

import (
	"fmt"
	"strings"
	"time"
)

// Operation tags the kind of edit recorded by a log entry.
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// ParseOperation maps free-form operation text onto an Operation tag.
// Matching is case-insensitive; unknown operations are rejected so they
// never reach the change-log store as free text.
func ParseOperation(s string) (Operation, error) {
	switch Operation(strings.ToUpper(strings.TrimSpace(s))) {
	case OpInsert:
		return OpInsert, nil
	case OpUpdate:
		return OpUpdate, nil
	case OpDelete:
		return OpDelete, nil
	default:
		return "", fmt.Errorf("unknown operation %q", s)
	}
}

// Entry is one normalized audit-log record.
//
// LogID is assigned at normalization time and is strictly increasing in
// input order within a batch. EventTime is always resolved; records whose
// event time cannot be parsed are dropped before an Entry exists.
type Entry struct {
	LogID       int64
	ActorID     string
	EventTime   time.Time
	Operation   Operation
	TargetTable string
	TargetID    string
	FieldName   string
	Detail      Detail
}

// Snapshot is an ephemeral field-name → value mapping for a single
// (target_table, target_id) pair, assembled during a replay pass and
// discarded after use. Keys are case-folded field names.
type Snapshot map[string]Detail

// FieldKey folds a field name for snapshot lookup.
func FieldKey(field string) string {
	return strings.ToLower(strings.TrimSpace(field))
}

// Put records a field value. Callers feed entries in ascending event-time
// order, so the newest edit of a field wins.
func (s Snapshot) Put(field string, d Detail) {
	s[FieldKey(field)] = d
}

// Get looks up a field value by folded name.
func (s Snapshot) Get(field string) (Detail, bool) {
	d, ok := s[FieldKey(field)]
	return d, ok
}
