// Package replay implements the reconciliation engine: it selects log
// entries matching a rule set, clusters them into entity-level changes,
// and applies each change to the warehouse idempotently.
//
// Idempotency is structural, not a special mode. The same pass can run
// over a log that was already partially or fully applied: inserts land
// behind ON CONFLICT DO NOTHING primary-key guards inside the adapter's
// transactions, so a re-run reports duplicate-key skips instead of
// creating rows, and an interrupted pass leaves every group either fully
// applied or untouched.
package replay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/datamartlab/logmart/internal/logrec"
	"github.com/datamartlab/logmart/internal/olap"
	"github.com/datamartlab/logmart/internal/rules"
	"github.com/datamartlab/logmart/internal/store"
)

// Engine runs reconciliation passes.
type Engine struct {
	Log       *store.Store
	Warehouse *olap.Adapter
	Rules     rules.Set
}

// Run executes one reconciliation pass and returns its summary.
//
// Skips (missing fields, duplicate keys, missing targets, conversion
// failures) are recorded and the pass continues; only a storage failure
// aborts the remaining work, and the error satisfies IsStoreFailure.
// Cancelling the context stops the pass between groups.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	summary := Summary{PassID: uuid.NewString(), Rules: []RuleSummary{}}

	filters := make([]store.Filter, len(e.Rules.Rules))
	for i, r := range e.Rules.Rules {
		filters[i] = store.Filter{Table: r.Table, Op: r.Op, Field: r.Field}
	}
	entries, err := e.Log.Match(ctx, filters)
	if err != nil {
		if ctx.Err() != nil {
			return summary, fmt.Errorf("pass cancelled: %w", ctx.Err())
		}
		return summary, storeFailure("select entries", err)
	}
	summary.Selected = len(entries)
	sortEntries(entries)

	slog.Info("replay pass starting",
		"pass", summary.PassID,
		"rules", len(e.Rules.Rules),
		"selected", len(entries))

	for _, rule := range e.Rules.Rules {
		rs := RuleSummary{Rule: rule.Name(), Entity: string(rule.Entity)}

		var matched []logrec.Entry
		for _, entry := range entries {
			if rule.Matches(entry) {
				matched = append(matched, entry)
			}
		}

		for _, group := range groupEntries(matched) {
			if err := ctx.Err(); err != nil {
				summary.Rules = append(summary.Rules, rs)
				return summary, fmt.Errorf("pass cancelled: %w", err)
			}
			if err := e.applyGroup(ctx, rule, group, &summary, &rs); err != nil {
				summary.Rules = append(summary.Rules, rs)
				return summary, err
			}
		}

		summary.Rules = append(summary.Rules, rs)
	}

	slog.Info("replay pass complete",
		"pass", summary.PassID,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"skipped", summary.Skipped)

	return summary, nil
}

// applyGroup dispatches one entity-level change to its applier. Non-fatal
// outcomes are recorded on the summary; only store failures return an
// error.
func (e *Engine) applyGroup(ctx context.Context, rule rules.Rule, g Group, summary *Summary, rs *RuleSummary) error {
	switch rule.Entity {
	case rules.EntitySale:
		return e.applySale(ctx, rule, g, summary, rs)
	case rules.EntityClient:
		return e.applyClient(ctx, rule, g, summary, rs)
	case rules.EntityProductPrice:
		return e.applyProductPrice(ctx, rule, g, summary, rs)
	default:
		// Unreachable: rule sets are validated at load time.
		return fmt.Errorf("rule %q: no applier for entity %q", rule.Name(), rule.Entity)
	}
}
