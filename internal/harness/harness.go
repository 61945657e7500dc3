package harness

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/datamartlab/logmart/internal/normalize"
	"github.com/datamartlab/logmart/internal/olap"
	"github.com/datamartlab/logmart/internal/replay"
	"github.com/datamartlab/logmart/internal/rules"
	"github.com/datamartlab/logmart/internal/store"
)

// Result holds everything a scenario produced.
type Result struct {
	Report    normalize.Report
	Summaries []replay.Summary

	// Warehouse stays open until test cleanup so assertions can query
	// final state.
	Warehouse *olap.Adapter
}

// Run executes a scenario against fresh stores under t.TempDir() using
// the default rule set.
func Run(t *testing.T, sc *Scenario) *Result {
	t.Helper()

	dir := t.TempDir()
	log, err := store.Open(filepath.Join(dir, "changelog.db"))
	if err != nil {
		t.Fatalf("open change log: %v", err)
	}
	t.Cleanup(func() { log.Close() })

	warehouse, err := olap.Open(filepath.Join(dir, "warehouse.db"))
	if err != nil {
		t.Fatalf("open warehouse: %v", err)
	}
	t.Cleanup(func() { warehouse.Close() })

	ctx := context.Background()

	for _, p := range sc.Products {
		row := olap.ProductRow{EAN: p.EAN}
		if p.Label != "" {
			row.Label = sql.NullString{String: p.Label, Valid: true}
		}
		if p.Price != 0 {
			row.Price = sql.NullFloat64{Float64: p.Price, Valid: true}
		}
		if _, err := warehouse.InsertProduct(ctx, row); err != nil {
			t.Fatalf("seed product %d: %v", p.EAN, err)
		}
	}

	normalizer := &normalize.Normalizer{Log: log, Rules: rules.Default()}
	report, err := normalizer.Run(ctx, sc.Batch())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	engine := &replay.Engine{Log: log, Warehouse: warehouse, Rules: rules.Default()}
	summaries := make([]replay.Summary, 0, sc.Passes)
	for i := 0; i < sc.Passes; i++ {
		summary, err := engine.Run(ctx)
		if err != nil {
			t.Fatalf("replay pass %d: %v", i+1, err)
		}
		summaries = append(summaries, summary)
	}

	return &Result{Report: report, Summaries: summaries, Warehouse: warehouse}
}
