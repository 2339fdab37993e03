package migrations

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestApplySQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := Apply(db, "sqlite", "../../migrations"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// A second run is a no-op.
	if err := Apply(db, "sqlite", "../../migrations"); err != nil {
		t.Fatalf("second Apply: %v", err)
	}

	for _, table := range []string{"matches", "hole_results", "shot_records"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestApplyUnknownDriver(t *testing.T) {
	if err := Apply(nil, "mysql", "../../migrations"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestFindLatestMigrationVersion(t *testing.T) {
	if v := findLatestMigrationVersion("../../migrations"); v != 1 {
		t.Errorf("latest = %d, want 1", v)
	}
	if v := findLatestMigrationVersion("does-not-exist"); v != 0 {
		t.Errorf("latest = %d, want 0 for missing dir", v)
	}
}
