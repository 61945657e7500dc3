package replay

import (
	"slices"
	"strings"

	"github.com/datamartlab/logmart/internal/logrec"
)

// Group is one logical entity-level change: all selected entries sharing
// a (target_table, target_id) pair.
type Group struct {
	Table    string
	TargetID string
	Entries  []logrec.Entry
}

// Snapshot assembles the ephemeral field → value view of the group.
// Entries arrive sorted with event time ascending within each field, so
// the newest edit of a field wins (last-write-wins by timestamp).
func (g Group) Snapshot() logrec.Snapshot {
	snap := make(logrec.Snapshot, len(g.Entries))
	for _, e := range g.Entries {
		snap.Put(e.FieldName, e.Detail)
	}
	return snap
}

// sortEntries orders entries so that all entries of one logical change
// are adjacent regardless of input order or timestamp skew. The sort key
// is (target_table, target_id, field_name, event_time, log_id); event
// time and log_id break ties so repeated edits of one field resolve
// deterministically to the newest.
func sortEntries(entries []logrec.Entry) {
	slices.SortFunc(entries, func(a, b logrec.Entry) int {
		if c := strings.Compare(a.TargetTable, b.TargetTable); c != 0 {
			return c
		}
		if c := strings.Compare(a.TargetID, b.TargetID); c != 0 {
			return c
		}
		if c := strings.Compare(logrec.FieldKey(a.FieldName), logrec.FieldKey(b.FieldName)); c != 0 {
			return c
		}
		if c := a.EventTime.Compare(b.EventTime); c != 0 {
			return c
		}
		if a.LogID != b.LogID {
			if a.LogID < b.LogID {
				return -1
			}
			return 1
		}
		return 0
	})
}

// groupEntries clusters consecutive sorted entries by (table, target_id).
func groupEntries(entries []logrec.Entry) []Group {
	var groups []Group
	for _, e := range entries {
		n := len(groups)
		if n > 0 && groups[n-1].Table == e.TargetTable && groups[n-1].TargetID == e.TargetID {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, Group{
			Table:    e.TargetTable,
			TargetID: e.TargetID,
			Entries:  []logrec.Entry{e},
		})
	}
	return groups
}
