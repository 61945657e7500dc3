// Package rules holds the declarative configuration that drives both the
// field normalizer and the replay engine: a field-classification table
// (field name → value class) and a list of interest rules (which log
// entries a reconciliation pass selects and how it applies them).
//
// Classification is keyed by exact, case-folded field name. There is no
// substring sniffing: a field not listed in the table is text.
package rules

import (
	"fmt"

	"github.com/datamartlab/logmart/internal/logrec"
)

// Class is the semantic value class of a field.
type Class string

const (
	ClassNumber    Class = "number"
	ClassTimestamp Class = "timestamp"
	ClassText      Class = "text"
)

// ParseClass validates a class name from a rule file.
func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case ClassNumber, ClassTimestamp, ClassText:
		return Class(s), nil
	default:
		return "", fmt.Errorf("unknown field class %q", s)
	}
}

// Entity names a built-in replay applier. Interest rules may only
// reference entities the engine knows how to apply.
type Entity string

const (
	// EntitySale reconstructs fact_sales rows from insert groups.
	EntitySale Entity = "sale"
	// EntityClient reconstructs dim_client rows from insert groups.
	EntityClient Entity = "client"
	// EntityProductPrice patches dim_product.price from update entries.
	EntityProductPrice Entity = "product_price"
)

// ParseEntity validates an entity name from a rule file.
func ParseEntity(s string) (Entity, error) {
	switch Entity(s) {
	case EntitySale, EntityClient, EntityProductPrice:
		return Entity(s), nil
	default:
		return "", fmt.Errorf("unknown entity %q", s)
	}
}

// Rule is one interest rule: it selects log entries by
// (target_table, operation, optional field_name) and names the entity
// applier the replay engine uses for matching groups.
type Rule struct {
	Table string
	Op    logrec.Operation
	// Field restricts the rule to a single field name (update rules).
	// Empty means any field.
	Field  string
	Entity Entity
	// Required lists the field names an insert group must contain; a
	// group missing any of them is skipped and reported, not applied.
	Required []string
}

// Matches reports whether an entry falls under this rule.
func (r Rule) Matches(e logrec.Entry) bool {
	if e.TargetTable != r.Table || e.Operation != r.Op {
		return false
	}
	return r.Field == "" || logrec.FieldKey(e.FieldName) == logrec.FieldKey(r.Field)
}

// Name is a stable label for per-rule reporting.
func (r Rule) Name() string {
	if r.Field != "" {
		return fmt.Sprintf("%s/%s/%s", r.Table, r.Op, r.Field)
	}
	return fmt.Sprintf("%s/%s", r.Table, r.Op)
}

// Set is a complete rule configuration.
type Set struct {
	Fields map[string]Class
	Rules  []Rule
}

// ClassOf returns the declared class of a field, defaulting to text.
func (s Set) ClassOf(field string) Class {
	if c, ok := s.Fields[logrec.FieldKey(field)]; ok {
		return c
	}
	return ClassText
}

// Validate checks cross-field constraints that CUE cannot express on its
// own: update-style rules need a field, insert rules need an entity whose
// applier inserts, and required lists belong to insert rules only.
func (s Set) Validate() error {
	if len(s.Rules) == 0 {
		return fmt.Errorf("rule set has no interest rules")
	}
	for _, r := range s.Rules {
		if r.Table == "" {
			return fmt.Errorf("rule %q: table is required", r.Name())
		}
		switch r.Entity {
		case EntitySale, EntityClient:
			if r.Op != logrec.OpInsert {
				return fmt.Errorf("rule %q: entity %s requires op INSERT", r.Name(), r.Entity)
			}
		case EntityProductPrice:
			if r.Op != logrec.OpUpdate {
				return fmt.Errorf("rule %q: entity %s requires op UPDATE", r.Name(), r.Entity)
			}
			if r.Field == "" {
				return fmt.Errorf("rule %q: entity %s requires a field", r.Name(), r.Entity)
			}
			if len(r.Required) > 0 {
				return fmt.Errorf("rule %q: required fields only apply to insert rules", r.Name())
			}
		default:
			return fmt.Errorf("rule %q: unknown entity %q", r.Name(), r.Entity)
		}
	}
	return nil
}

// Default returns the rule set mirroring the operational system this tool
// was built against: sale inserts, client inserts, and price corrections.
func Default() Set {
	return Set{
		Fields: map[string]Class{
			"price":       ClassNumber,
			"signup_date": ClassTimestamp,
		},
		Rules: []Rule{
			{
				Table:    "Sales",
				Op:       logrec.OpInsert,
				Entity:   EntitySale,
				Required: []string{"customer_id", "employee_id", "ean", "date"},
			},
			{
				Table:  "Client",
				Op:     logrec.OpInsert,
				Entity: EntityClient,
			},
			{
				Table:  "Products",
				Op:     logrec.OpUpdate,
				Field:  "price",
				Entity: EntityProductPrice,
			},
		},
	}
}
