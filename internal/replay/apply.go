package replay

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/datamartlab/logmart/internal/logrec"
	"github.com/datamartlab/logmart/internal/olap"
	"github.com/datamartlab/logmart/internal/rules"
)

// applySale reconstructs one fact_sales row from an insert group.
func (e *Engine) applySale(ctx context.Context, rule rules.Rule, g Group, summary *Summary, rs *RuleSummary) error {
	snap := g.Snapshot()

	if missing := missingFields(snap, rule.Required); len(missing) > 0 {
		summary.skip(rs, Diagnostic{
			Rule:     rule.Name(),
			Table:    g.Table,
			TargetID: g.TargetID,
			Reason:   SkipMissingField,
			Message:  fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		})
		return nil
	}

	clientID := detailText(snap, "customer_id")
	employeeID := detailText(snap, "employee_id")

	eanDetail, _ := snap.Get("ean")
	ean, err := detailInt(eanDetail)
	if err != nil {
		summary.skip(rs, Diagnostic{
			Rule:     rule.Name(),
			Table:    g.Table,
			TargetID: g.TargetID,
			Reason:   SkipConversion,
			Message:  fmt.Sprintf("ean: %v", err),
		})
		return nil
	}

	dateDetail, _ := snap.Get("date")
	dateKey, err := resolveDateKey(dateDetail)
	if err != nil {
		summary.skip(rs, Diagnostic{
			Rule:     rule.Name(),
			Table:    g.Table,
			TargetID: g.TargetID,
			Reason:   SkipConversion,
			Message:  fmt.Sprintf("date: %v", err),
		})
		return nil
	}

	row := olap.SaleRow{
		ID:         g.TargetID,
		DateKey:    dateKey,
		ClientID:   clientID,
		EmployeeID: employeeID,
		EAN:        ean,
		TicketID:   optionalText(snap, "ticket_id", "id_ticket"),
	}

	inserted, err := e.Warehouse.InsertSale(ctx, row)
	if err != nil {
		return storeFailure("insert sale", err)
	}
	if !inserted {
		summary.skip(rs, Diagnostic{
			Rule:     rule.Name(),
			Table:    g.Table,
			TargetID: g.TargetID,
			Reason:   SkipDuplicateKey,
		})
		return nil
	}
	summary.Inserted++
	rs.Inserted++
	return nil
}

// applyClient reconstructs one dim_client row from an insert group. An
// unparseable or absent signup date inserts the client with a null key
// rather than skipping the group.
func (e *Engine) applyClient(ctx context.Context, rule rules.Rule, g Group, summary *Summary, rs *RuleSummary) error {
	snap := g.Snapshot()

	if missing := missingFields(snap, rule.Required); len(missing) > 0 {
		summary.skip(rs, Diagnostic{
			Rule:     rule.Name(),
			Table:    g.Table,
			TargetID: g.TargetID,
			Reason:   SkipMissingField,
			Message:  fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		})
		return nil
	}

	row := olap.ClientRow{ID: g.TargetID}
	if d, ok := snap.Get("signup_date"); ok {
		if key, err := resolveDateKey(d); err == nil {
			row.SignupDate = sql.NullInt64{Int64: key, Valid: true}
		}
	}

	inserted, err := e.Warehouse.InsertClient(ctx, row)
	if err != nil {
		return storeFailure("insert client", err)
	}
	if !inserted {
		summary.skip(rs, Diagnostic{
			Rule:     rule.Name(),
			Table:    g.Table,
			TargetID: g.TargetID,
			Reason:   SkipDuplicateKey,
		})
		return nil
	}
	summary.Inserted++
	rs.Inserted++
	return nil
}

// applyProductPrice patches dim_product.price for one product. The group
// snapshot already resolved repeated edits to the newest one.
func (e *Engine) applyProductPrice(ctx context.Context, rule rules.Rule, g Group, summary *Summary, rs *RuleSummary) error {
	snap := g.Snapshot()

	ean, err := strconv.ParseInt(strings.TrimSpace(g.TargetID), 10, 64)
	if err != nil {
		summary.skip(rs, Diagnostic{
			Rule:     rule.Name(),
			Table:    g.Table,
			TargetID: g.TargetID,
			Reason:   SkipConversion,
			Message:  fmt.Sprintf("target id is not an EAN: %v", err),
		})
		return nil
	}

	d, ok := snap.Get(rule.Field)
	if !ok {
		summary.skip(rs, Diagnostic{
			Rule:     rule.Name(),
			Table:    g.Table,
			TargetID: g.TargetID,
			Reason:   SkipMissingField,
			Message:  fmt.Sprintf("no %s entry in group", rule.Field),
		})
		return nil
	}
	price, err := detailFloat(d)
	if err != nil {
		summary.skip(rs, Diagnostic{
			Rule:     rule.Name(),
			Table:    g.Table,
			TargetID: g.TargetID,
			Reason:   SkipConversion,
			Message:  err.Error(),
		})
		return nil
	}

	found, err := e.Warehouse.UpdateProductPrice(ctx, ean, price)
	if err != nil {
		return storeFailure("update product price", err)
	}
	if !found {
		summary.skip(rs, Diagnostic{
			Rule:     rule.Name(),
			Table:    g.Table,
			TargetID: g.TargetID,
			Reason:   SkipMissingTarget,
			Message:  fmt.Sprintf("no product with ean %d", ean),
		})
		return nil
	}
	summary.Updated++
	rs.Updated++
	return nil
}

// missingFields returns the required fields absent (or empty) in the
// snapshot.
func missingFields(snap logrec.Snapshot, required []string) []string {
	var missing []string
	for _, f := range required {
		d, ok := snap.Get(f)
		if !ok || d.String() == "" {
			missing = append(missing, logrec.FieldKey(f))
		}
	}
	return missing
}

// detailText returns a field's string form, or "" when absent.
func detailText(snap logrec.Snapshot, field string) string {
	d, ok := snap.Get(field)
	if !ok {
		return ""
	}
	return d.String()
}

// optionalText returns the first present, non-empty field as a nullable
// string.
func optionalText(snap logrec.Snapshot, fields ...string) sql.NullString {
	for _, f := range fields {
		if d, ok := snap.Get(f); ok && d.String() != "" {
			return sql.NullString{String: d.String(), Valid: true}
		}
	}
	return sql.NullString{}
}

// detailInt converts a detail to an integer key (e.g. an EAN code).
func detailInt(d logrec.Detail) (int64, error) {
	if d == nil {
		return 0, fmt.Errorf("absent value")
	}
	switch v := d.(type) {
	case logrec.Number:
		return int64(v), nil
	case logrec.Text:
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", string(v))
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot use %s detail as integer", d.Kind())
	}
}

// detailFloat converts a detail to a float column value.
func detailFloat(d logrec.Detail) (float64, error) {
	switch v := d.(type) {
	case logrec.Number:
		return float64(v), nil
	case logrec.Text:
		s := strings.ReplaceAll(strings.TrimSpace(string(v)), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", string(v))
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot use %s detail as number", d.Kind())
	}
}

// resolveDateKey converts a date-bearing detail into the YYYYMMDD
// dimension key. Text values may be spreadsheet serial day counts or a
// canonical/ISO rendering.
func resolveDateKey(d logrec.Detail) (int64, error) {
	if d == nil {
		return 0, fmt.Errorf("absent value")
	}
	switch v := d.(type) {
	case logrec.Timestamp:
		t, err := v.Time()
		if err != nil {
			return 0, fmt.Errorf("bad timestamp %q: %w", string(v), err)
		}
		return olap.DateKey(t), nil
	case logrec.Text:
		s := strings.TrimSpace(string(v))
		if s == "" {
			return 0, fmt.Errorf("empty date")
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return olap.DateKey(logrec.FromSerialDays(n)), nil
		}
		if t, err := logrec.Timestamp(s).Time(); err == nil {
			return olap.DateKey(t), nil
		}
		for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return olap.DateKey(t), nil
			}
		}
		return 0, fmt.Errorf("cannot resolve date from %q", s)
	default:
		return 0, fmt.Errorf("cannot resolve date from %s detail", d.Kind())
	}
}
