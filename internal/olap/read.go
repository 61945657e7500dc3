package olap

import (
	"context"
	"fmt"
	"time"
)

// dateRowFromKey rebuilds the full dim_date attributes from a YYYYMMDD
// key. time.Date normalizes out-of-range components, so a malformed key
// still yields a consistent row.
func dateRowFromKey(key int64) DateRow {
	t := time.Date(int(key/10000), time.Month(key/100%100), int(key%100), 0, 0, 0, 0, time.UTC)
	row := NewDateRow(t)
	row.ID = key
	return row
}

func (a *Adapter) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var n int
	err := a.db.QueryRowContext(ctx, a.rebind(query), args...).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasDate reports whether a dim_date row exists for the key.
func (a *Adapter) HasDate(ctx context.Context, key int64) (bool, error) {
	ok, err := a.exists(ctx, `SELECT COUNT(*) FROM dim_date WHERE id_date = ?`, key)
	if err != nil {
		return false, fmt.Errorf("check date %d: %w", key, err)
	}
	return ok, nil
}

// HasClient reports whether a dim_client row exists.
func (a *Adapter) HasClient(ctx context.Context, id string) (bool, error) {
	ok, err := a.exists(ctx, `SELECT COUNT(*) FROM dim_client WHERE id_client = ?`, id)
	if err != nil {
		return false, fmt.Errorf("check client %s: %w", id, err)
	}
	return ok, nil
}

// HasEmployee reports whether a dim_employee row exists.
func (a *Adapter) HasEmployee(ctx context.Context, id string) (bool, error) {
	ok, err := a.exists(ctx, `SELECT COUNT(*) FROM dim_employee WHERE id_employee = ?`, id)
	if err != nil {
		return false, fmt.Errorf("check employee %s: %w", id, err)
	}
	return ok, nil
}

// HasProduct reports whether a dim_product row exists.
func (a *Adapter) HasProduct(ctx context.Context, ean int64) (bool, error) {
	ok, err := a.exists(ctx, `SELECT COUNT(*) FROM dim_product WHERE ean = ?`, ean)
	if err != nil {
		return false, fmt.Errorf("check product %d: %w", ean, err)
	}
	return ok, nil
}

// HasSale reports whether a fact_sales row exists.
func (a *Adapter) HasSale(ctx context.Context, id string) (bool, error) {
	ok, err := a.exists(ctx, `SELECT COUNT(*) FROM fact_sales WHERE id_sale = ?`, id)
	if err != nil {
		return false, fmt.Errorf("check sale %s: %w", id, err)
	}
	return ok, nil
}

// CountSales returns the number of fact rows.
func (a *Adapter) CountSales(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fact_sales`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

// GetProduct reads one dim_product row by EAN.
func (a *Adapter) GetProduct(ctx context.Context, ean int64) (ProductRow, error) {
	var row ProductRow
	err := a.db.QueryRowContext(ctx, a.rebind(`
		SELECT ean, category, aisle, label, price FROM dim_product WHERE ean = ?
	`), ean).Scan(&row.EAN, &row.Category, &row.Aisle, &row.Label, &row.Price)
	if err != nil {
		return ProductRow{}, fmt.Errorf("get product %d: %w", ean, err)
	}
	return row, nil
}

// GetClient reads one dim_client row by ID.
func (a *Adapter) GetClient(ctx context.Context, id string) (ClientRow, error) {
	var row ClientRow
	err := a.db.QueryRowContext(ctx, a.rebind(`
		SELECT id_client, signup_date FROM dim_client WHERE id_client = ?
	`), id).Scan(&row.ID, &row.SignupDate)
	if err != nil {
		return ClientRow{}, fmt.Errorf("get client %s: %w", id, err)
	}
	return row, nil
}

// GetSale reads one fact_sales row by ID.
func (a *Adapter) GetSale(ctx context.Context, id string) (SaleRow, error) {
	var row SaleRow
	err := a.db.QueryRowContext(ctx, a.rebind(`
		SELECT id_sale, id_date, id_client, id_employee, ean, id_ticket
		FROM fact_sales WHERE id_sale = ?
	`), id).Scan(&row.ID, &row.DateKey, &row.ClientID, &row.EmployeeID, &row.EAN, &row.TicketID)
	if err != nil {
		return SaleRow{}, fmt.Errorf("get sale %s: %w", id, err)
	}
	return row, nil
}
