// Package harness runs end-to-end replay scenarios for tests: a YAML
// file declares raw audit records (and optional warehouse seed rows),
// the harness normalizes them into a fresh change-log store and runs one
// or more reconciliation passes against a fresh warehouse, and tests
// assert on the resulting report and summaries, directly or via golden
// snapshots.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/datamartlab/logmart/internal/normalize"
)

// Scenario declares one end-to-end replay test case.
type Scenario struct {
	// Name uniquely identifies the scenario; golden files use it.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Products are dim_product rows seeded before the first pass, for
	// scenarios exercising price updates against existing rows.
	Products []SeedProduct `yaml:"products,omitempty"`

	// Records are the raw audit rows fed to the normalizer, in order.
	Records []Record `yaml:"records"`

	// Passes is how many reconciliation passes to run (default 1).
	// Scenarios verifying idempotence run two.
	Passes int `yaml:"passes,omitempty"`
}

// Record mirrors the seven raw column roles. Date and Detail stay
// untyped so scenarios can exercise the coercion paths with strings,
// numbers, or YAML-native values.
type Record struct {
	Actor  string `yaml:"actor"`
	Date   any    `yaml:"date"`
	Op     string `yaml:"op"`
	Table  string `yaml:"table"`
	ID     string `yaml:"id"`
	Field  string `yaml:"field"`
	Detail any    `yaml:"detail"`
}

// SeedProduct is a minimal dim_product seed row.
type SeedProduct struct {
	EAN   int64   `yaml:"ean"`
	Label string  `yaml:"label,omitempty"`
	Price float64 `yaml:"price,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", filepath.Base(path), err)
	}

	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", filepath.Base(path))
	}
	if len(sc.Records) == 0 {
		return nil, fmt.Errorf("scenario %q: records are required", sc.Name)
	}
	if sc.Passes == 0 {
		sc.Passes = 1
	}
	return &sc, nil
}

// Batch converts the scenario's records into a normalizer batch.
func (s *Scenario) Batch() normalize.Batch {
	batch := make(normalize.Batch, len(s.Records))
	for i, r := range s.Records {
		batch[i] = normalize.RawRecord{
			ActorID:     r.Actor,
			Date:        r.Date,
			Operation:   r.Op,
			TargetTable: r.Table,
			TargetID:    r.ID,
			FieldName:   r.Field,
			Detail:      r.Detail,
		}
	}
	return batch
}
