package sqldb

import (
	"path/filepath"
	"testing"
)

func TestOpen_SQLiteByDefault(t *testing.T) {
	db, driver, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	if driver != DriverSQLite {
		t.Errorf("driver = %q, want %q", driver, DriverSQLite)
	}

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestRebind(t *testing.T) {
	cases := []struct {
		driver string
		query  string
		want   string
	}{
		{DriverSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{DriverPostgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{DriverPostgres, "INSERT INTO t VALUES (?, ?, ?)", "INSERT INTO t VALUES ($1, $2, $3)"},
		{DriverPostgres, "SELECT 1", "SELECT 1"},
	}
	for _, tc := range cases {
		if got := Rebind(tc.driver, tc.query); got != tc.want {
			t.Errorf("Rebind(%s, %q) = %q, want %q", tc.driver, tc.query, got, tc.want)
		}
	}
}
