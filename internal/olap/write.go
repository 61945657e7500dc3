package olap

import (
	"context"
	"fmt"
)

// InsertSale inserts a fact row if its primary key is absent, ensuring
// the referenced dim_date row exists in the same transaction. Returns
// whether a new row landed; an existing key is a silent no-op.
func (a *Adapter) InsertSale(ctx context.Context, row SaleRow) (bool, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("insert sale: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	date := dateRowFromKey(row.DateKey)
	_, err = tx.ExecContext(ctx, a.rebind(`
		INSERT INTO dim_date
		(id_date, day, month, year, weekday, month_name, year_month, quarter)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id_date) DO NOTHING
	`), date.ID, date.Day, date.Month, date.Year, date.Weekday, date.MonthName, date.YearMonth, date.Quarter)
	if err != nil {
		return false, fmt.Errorf("insert sale: ensure date %d: %w", row.DateKey, err)
	}

	res, err := tx.ExecContext(ctx, a.rebind(`
		INSERT INTO fact_sales
		(id_sale, id_date, id_client, id_employee, ean, id_ticket)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id_sale) DO NOTHING
	`), row.ID, row.DateKey, row.ClientID, row.EmployeeID, row.EAN, row.TicketID)
	if err != nil {
		return false, fmt.Errorf("insert sale %s: %w", row.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert sale %s: rows affected: %w", row.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("insert sale: commit: %w", err)
	}
	return affected > 0, nil
}

// InsertClient inserts a dim_client row if absent.
func (a *Adapter) InsertClient(ctx context.Context, row ClientRow) (bool, error) {
	res, err := a.db.ExecContext(ctx, a.rebind(`
		INSERT INTO dim_client (id_client, signup_date)
		VALUES (?, ?)
		ON CONFLICT(id_client) DO NOTHING
	`), row.ID, row.SignupDate)
	if err != nil {
		return false, fmt.Errorf("insert client %s: %w", row.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert client %s: rows affected: %w", row.ID, err)
	}
	return affected > 0, nil
}

// InsertEmployee inserts a dim_employee row if absent.
func (a *Adapter) InsertEmployee(ctx context.Context, row EmployeeRow) (bool, error) {
	res, err := a.db.ExecContext(ctx, a.rebind(`
		INSERT INTO dim_employee
		(id_employee, display_name, first_name, last_name, start_date, password_hash, email)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id_employee) DO NOTHING
	`), row.ID, row.DisplayName, row.FirstName, row.LastName, row.StartDate, row.PasswordHash, row.Email)
	if err != nil {
		return false, fmt.Errorf("insert employee %s: %w", row.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert employee %s: rows affected: %w", row.ID, err)
	}
	return affected > 0, nil
}

// InsertProduct inserts a dim_product row if absent.
func (a *Adapter) InsertProduct(ctx context.Context, row ProductRow) (bool, error) {
	res, err := a.db.ExecContext(ctx, a.rebind(`
		INSERT INTO dim_product (ean, category, aisle, label, price)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ean) DO NOTHING
	`), row.EAN, row.Category, row.Aisle, row.Label, row.Price)
	if err != nil {
		return false, fmt.Errorf("insert product %d: %w", row.EAN, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert product %d: rows affected: %w", row.EAN, err)
	}
	return affected > 0, nil
}

// InsertDate inserts a dim_date row if absent.
func (a *Adapter) InsertDate(ctx context.Context, row DateRow) (bool, error) {
	res, err := a.db.ExecContext(ctx, a.rebind(`
		INSERT INTO dim_date
		(id_date, day, month, year, weekday, month_name, year_month, quarter)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id_date) DO NOTHING
	`), row.ID, row.Day, row.Month, row.Year, row.Weekday, row.MonthName, row.YearMonth, row.Quarter)
	if err != nil {
		return false, fmt.Errorf("insert date %d: %w", row.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert date %d: rows affected: %w", row.ID, err)
	}
	return affected > 0, nil
}

// UpdateProductPrice overwrites the price of an existing product.
// Returns found=false when no row has that EAN; the caller treats that
// as a skip, not an error.
func (a *Adapter) UpdateProductPrice(ctx context.Context, ean int64, price float64) (bool, error) {
	res, err := a.db.ExecContext(ctx, a.rebind(`
		UPDATE dim_product SET price = ? WHERE ean = ?
	`), price, ean)
	if err != nil {
		return false, fmt.Errorf("update product %d price: %w", ean, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update product %d price: rows affected: %w", ean, err)
	}
	return affected > 0, nil
}
