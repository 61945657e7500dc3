package olap

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "warehouse.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestDateKey(t *testing.T) {
	got := DateKey(time.Date(2024, time.August, 14, 15, 30, 0, 0, time.UTC))
	if got != 20240814 {
		t.Errorf("DateKey = %d, want 20240814", got)
	}
}

func TestNewDateRow(t *testing.T) {
	row := NewDateRow(time.Date(2024, time.August, 14, 0, 0, 0, 0, time.UTC))

	if row.ID != 20240814 {
		t.Errorf("ID = %d, want 20240814", row.ID)
	}
	if row.Day != 14 || row.Month != 8 || row.Year != 2024 {
		t.Errorf("D/M/Y = %d/%d/%d, want 14/8/2024", row.Day, row.Month, row.Year)
	}
	if row.Weekday != "Wednesday" {
		t.Errorf("Weekday = %q, want Wednesday", row.Weekday)
	}
	if row.MonthName != "August" {
		t.Errorf("MonthName = %q, want August", row.MonthName)
	}
	if row.YearMonth != 202408 {
		t.Errorf("YearMonth = %d, want 202408", row.YearMonth)
	}
	if row.Quarter != "Q3" {
		t.Errorf("Quarter = %q, want Q3", row.Quarter)
	}
}

func TestNewDateRow_QuarterBoundaries(t *testing.T) {
	cases := []struct {
		month time.Month
		want  string
	}{
		{time.January, "Q1"},
		{time.March, "Q1"},
		{time.April, "Q2"},
		{time.December, "Q4"},
	}
	for _, tc := range cases {
		row := NewDateRow(time.Date(2024, tc.month, 1, 0, 0, 0, 0, time.UTC))
		if row.Quarter != tc.want {
			t.Errorf("quarter for %v = %q, want %q", tc.month, row.Quarter, tc.want)
		}
	}
}

func TestInsertSale_CreatesDateDimension(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	sale := SaleRow{
		ID: "900", DateKey: 20240814, ClientID: "42",
		EmployeeID: "7", EAN: 3017620422003,
		TicketID: sql.NullString{String: "T-100", Valid: true},
	}
	inserted, err := a.InsertSale(ctx, sale)
	if err != nil {
		t.Fatalf("InsertSale() failed: %v", err)
	}
	if !inserted {
		t.Error("first InsertSale() reported no insert")
	}

	hasDate, err := a.HasDate(ctx, 20240814)
	if err != nil {
		t.Fatalf("HasDate() failed: %v", err)
	}
	if !hasDate {
		t.Error("dim_date row was not created alongside the fact")
	}

	got, err := a.GetSale(ctx, "900")
	if err != nil {
		t.Fatalf("GetSale() failed: %v", err)
	}
	if got != sale {
		t.Errorf("GetSale() = %+v, want %+v", got, sale)
	}
}

func TestInsertSale_Idempotent(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	sale := SaleRow{ID: "900", DateKey: 20240814, ClientID: "42", EmployeeID: "7", EAN: 1}
	if _, err := a.InsertSale(ctx, sale); err != nil {
		t.Fatalf("first InsertSale() failed: %v", err)
	}

	// Same key again, even with different attributes: no new row, no
	// overwrite.
	dup := sale
	dup.ClientID = "99"
	inserted, err := a.InsertSale(ctx, dup)
	if err != nil {
		t.Fatalf("second InsertSale() failed: %v", err)
	}
	if inserted {
		t.Error("duplicate InsertSale() reported an insert")
	}

	count, err := a.CountSales(ctx)
	if err != nil {
		t.Fatalf("CountSales() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d fact rows, want 1", count)
	}
	got, err := a.GetSale(ctx, "900")
	if err != nil {
		t.Fatalf("GetSale() failed: %v", err)
	}
	if got.ClientID != "42" {
		t.Errorf("ClientID = %q after duplicate insert, want original 42", got.ClientID)
	}
}

func TestInsertClient_Idempotent(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	row := ClientRow{ID: "42", SignupDate: sql.NullInt64{Int64: 20240814, Valid: true}}
	inserted, err := a.InsertClient(ctx, row)
	if err != nil {
		t.Fatalf("InsertClient() failed: %v", err)
	}
	if !inserted {
		t.Error("first InsertClient() reported no insert")
	}

	inserted, err = a.InsertClient(ctx, row)
	if err != nil {
		t.Fatalf("second InsertClient() failed: %v", err)
	}
	if inserted {
		t.Error("duplicate InsertClient() reported an insert")
	}

	got, err := a.GetClient(ctx, "42")
	if err != nil {
		t.Fatalf("GetClient() failed: %v", err)
	}
	if got != row {
		t.Errorf("GetClient() = %+v, want %+v", got, row)
	}
}

func TestInsertClient_NullSignupDate(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if _, err := a.InsertClient(ctx, ClientRow{ID: "7"}); err != nil {
		t.Fatalf("InsertClient() failed: %v", err)
	}
	got, err := a.GetClient(ctx, "7")
	if err != nil {
		t.Fatalf("GetClient() failed: %v", err)
	}
	if got.SignupDate.Valid {
		t.Errorf("SignupDate = %+v, want null", got.SignupDate)
	}
}

func TestUpdateProductPrice(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	product := ProductRow{
		EAN:   3017620422003,
		Label: sql.NullString{String: "Nutella 400g", Valid: true},
		Price: sql.NullFloat64{Float64: 2.3, Valid: true},
	}
	if _, err := a.InsertProduct(ctx, product); err != nil {
		t.Fatalf("InsertProduct() failed: %v", err)
	}

	found, err := a.UpdateProductPrice(ctx, 3017620422003, 2.54)
	if err != nil {
		t.Fatalf("UpdateProductPrice() failed: %v", err)
	}
	if !found {
		t.Error("UpdateProductPrice() did not find the product")
	}

	got, err := a.GetProduct(ctx, 3017620422003)
	if err != nil {
		t.Fatalf("GetProduct() failed: %v", err)
	}
	if !got.Price.Valid || got.Price.Float64 != 2.54 {
		t.Errorf("Price = %+v, want 2.54", got.Price)
	}
	if got.Label != product.Label {
		t.Errorf("Label changed: %+v", got.Label)
	}
}

func TestUpdateProductPrice_MissingProduct(t *testing.T) {
	a := newTestAdapter(t)

	found, err := a.UpdateProductPrice(context.Background(), 404, 1.0)
	if err != nil {
		t.Fatalf("UpdateProductPrice() failed: %v", err)
	}
	if found {
		t.Error("UpdateProductPrice() reported a hit on a missing EAN")
	}
}

func TestInsertEmployeeAndDate(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	emp := EmployeeRow{
		ID:          "7",
		DisplayName: sql.NullString{String: "mdupont", Valid: true},
	}
	inserted, err := a.InsertEmployee(ctx, emp)
	if err != nil {
		t.Fatalf("InsertEmployee() failed: %v", err)
	}
	if !inserted {
		t.Error("InsertEmployee() reported no insert")
	}
	has, err := a.HasEmployee(ctx, "7")
	if err != nil {
		t.Fatalf("HasEmployee() failed: %v", err)
	}
	if !has {
		t.Error("employee row not found")
	}

	date := NewDateRow(time.Date(2024, time.August, 14, 0, 0, 0, 0, time.UTC))
	if _, err := a.InsertDate(ctx, date); err != nil {
		t.Fatalf("InsertDate() failed: %v", err)
	}
	inserted, err = a.InsertDate(ctx, date)
	if err != nil {
		t.Fatalf("second InsertDate() failed: %v", err)
	}
	if inserted {
		t.Error("duplicate InsertDate() reported an insert")
	}
}
