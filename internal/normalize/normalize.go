// Package normalize converts raw, heterogeneously-typed audit-log records
// into canonical typed entries and appends them to the change-log store.
//
// The raw side of the boundary is deliberately loose: cell values are any
// of string, integer, float, or time.Time, because spreadsheet tooling may
// have already re-typed cells before they reach us. Everything past this
// package is a logrec.Entry with a tagged Detail.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/datamartlab/logmart/internal/logrec"
	"github.com/datamartlab/logmart/internal/rules"
	"github.com/datamartlab/logmart/internal/store"
)

// RawRecord is one unparsed audit-log row, already mapped onto the seven
// column roles. Date and Detail stay untyped until coercion.
type RawRecord struct {
	ActorID     string
	Date        any
	Operation   string
	TargetTable string
	TargetID    string
	FieldName   string
	Detail      any
}

// Batch is an ordered collection of raw records.
type Batch []RawRecord

// Diagnostic records why a raw record was dropped. Drops never abort the
// batch.
type Diagnostic struct {
	Row     int    `json:"row"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Drop reasons.
const (
	ReasonEventTime = "event_time"
	ReasonOperation = "operation"
	ReasonDetail    = "detail"
)

// Report summarizes a normalization run.
type Report struct {
	Accepted    int          `json:"accepted"`
	Dropped     int          `json:"dropped"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Normalizer turns raw batches into change-log entries.
type Normalizer struct {
	Log   *store.Store
	Rules rules.Set
}

// Run normalizes a batch and appends the accepted entries to the
// change-log store in input order, with strictly increasing log IDs
// continuing from the store's current maximum. The input is never
// mutated. Row numbers in diagnostics are 1-based.
func (n *Normalizer) Run(ctx context.Context, batch Batch) (Report, error) {
	maxID, err := n.Log.MaxLogID(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read max log id: %w", err)
	}

	var report Report
	nextID := maxID + 1
	entries := make([]logrec.Entry, 0, len(batch))

	for i, raw := range batch {
		row := i + 1

		op, err := logrec.ParseOperation(raw.Operation)
		if err != nil {
			report.drop(row, ReasonOperation, err.Error())
			continue
		}

		eventTime, ok := parseEventTime(raw.Date)
		if !ok {
			report.drop(row, ReasonEventTime, fmt.Sprintf("cannot resolve event time from %v", raw.Date))
			continue
		}

		detail, err := coerceDetail(n.Rules.ClassOf(raw.FieldName), raw.Detail)
		if err != nil {
			report.drop(row, ReasonDetail, err.Error())
			continue
		}

		entries = append(entries, logrec.Entry{
			LogID:       nextID,
			ActorID:     raw.ActorID,
			EventTime:   eventTime,
			Operation:   op,
			TargetTable: raw.TargetTable,
			TargetID:    raw.TargetID,
			FieldName:   raw.FieldName,
			Detail:      detail,
		})
		nextID++
		report.Accepted++
	}

	if err := n.Log.Append(ctx, entries); err != nil {
		return Report{}, fmt.Errorf("append entries: %w", err)
	}

	slog.Info("batch normalized",
		"accepted", report.Accepted,
		"dropped", report.Dropped)

	return report, nil
}

func (r *Report) drop(row int, reason, message string) {
	r.Dropped++
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Row: row, Reason: reason, Message: message})
	slog.Debug("record dropped", "row", row, "reason", reason, "detail", message)
}

// normalizeHeader folds a column header for role matching: NFKC (which
// also turns the non-breaking spaces Excel leaves behind into plain
// spaces), trimmed, lowercased, inner spaces to underscores.
func normalizeHeader(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}

// headerRoles maps accepted column names onto the seven record roles.
// The operational exports have drifted over time, so a few aliases per
// role are recognized.
var headerRoles = map[string]int{
	"actor_id": 0, "id_user": 0, "user_id": 0,
	"date": 1, "event_time": 1,
	"operation": 2, "action": 2,
	"target_table": 3, "table_insert": 3,
	"target_id": 4, "id_ligne": 4, "row_id": 4,
	"field_name": 5, "champs": 5, "field": 5,
	"detail": 6,
}

var roleNames = [7]string{
	"actor_id", "date", "operation", "target_table", "target_id", "field_name", "detail",
}

// MapHeader resolves a header row onto column positions for the seven
// roles. Spreadsheet padding columns ("Unnamed: ...") are skipped; any
// other unrecognized column is an error, not silently ignored, as is a
// duplicated or missing role.
func MapHeader(columns []string) ([7]int, error) {
	var positions [7]int
	for i := range positions {
		positions[i] = -1
	}
	for idx, col := range columns {
		name := normalizeHeader(col)
		if name == "" || strings.HasPrefix(name, "unnamed") {
			continue
		}
		role, ok := headerRoles[name]
		if !ok {
			return positions, fmt.Errorf("unexpected column %q", col)
		}
		if positions[role] != -1 {
			return positions, fmt.Errorf("column role %q appears twice", roleNames[role])
		}
		positions[role] = idx
	}
	for role, pos := range positions {
		if pos == -1 {
			return positions, fmt.Errorf("missing column for role %q", roleNames[role])
		}
	}
	return positions, nil
}
