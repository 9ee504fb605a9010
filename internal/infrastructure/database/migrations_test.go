package database

import (
	"context"
	"testing"
	"testing/fstest"
)

func withMigrations(t *testing.T, files fstest.MapFS) *DB {
	t.Helper()

	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS, MigrationsDir = origFS, origDir
	})
	MigrationsFS, MigrationsDir = files, "."

	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testFiles() fstest.MapFS {
	return fstest.MapFS{
		"20260101_000000_create_racks.up.sql":   {Data: []byte("CREATE TABLE racks (id TEXT PRIMARY KEY)")},
		"20260101_000000_create_racks.down.sql": {Data: []byte("DROP TABLE racks")},
		"20260102_000000_create_bins.up.sql":    {Data: []byte("CREATE TABLE bins (id TEXT PRIMARY KEY)")},
		"20260102_000000_create_bins.down.sql":  {Data: []byte("DROP TABLE bins")},
		"README.md":                             {Data: []byte("ignored")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	return n == 1
}

func TestMigrate(t *testing.T) {
	db := withMigrations(t, testFiles())
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "racks") || !tableExists(t, db, "bins") {
		t.Fatal("migrations not applied")
	}

	applied, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("applied=%d pending=%d, want 2/0", len(applied), len(pending))
	}
	if applied[0].Version != "20260101_000000" || applied[0].AppliedAt.IsZero() {
		t.Errorf("first record = %+v", applied[0])
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrate_FailureStops(t *testing.T) {
	files := testFiles()
	files["20260101_000000_create_racks.up.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE racks (")}
	db := withMigrations(t, files)

	if err := db.Migrate(context.Background()); err == nil {
		t.Fatal("Migrate() should fail on broken SQL")
	}
	if tableExists(t, db, "bins") {
		t.Error("later migrations should not run after a failure")
	}
}

func TestMigrateDown(t *testing.T) {
	db := withMigrations(t, testFiles())
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "bins") {
		t.Error("bins should be dropped")
	}
	if !tableExists(t, db, "racks") {
		t.Error("racks should remain")
	}

	_, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Name != "create_bins" {
		t.Errorf("pending = %+v", pending)
	}
}

func TestMigrateDown_Empty(t *testing.T) {
	db := withMigrations(t, fstest.MapFS{})
	if err := db.MigrateDown(context.Background()); err != nil {
		t.Errorf("MigrateDown() with nothing applied = %v", err)
	}
}

func TestMigrateNoMigrations(t *testing.T) {
	origFS := MigrationsFS
	t.Cleanup(func() { MigrationsFS = origFS })
	MigrationsFS = nil

	db, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close() //nolint:errcheck // test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Errorf("Migrate() with no filesystem = %v", err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantIsUp    bool
		wantOk      bool
	}{
		{"up", "20260301_090000_location_hierarchy.up.sql", "20260301_090000", true, true},
		{"down", "20260301_090000_location_hierarchy.down.sql", "20260301_090000", false, true},
		{"not sql", "readme.txt", "", false, false},
		{"missing direction", "20260301_090000_location_hierarchy.sql", "", false, false},
		{"no version", "invalid.up.sql", "", false, false},
		{"short clock", "20260301_0900_x.up.sql", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && (version != tt.wantVersion || isUp != tt.wantIsUp) {
				t.Errorf("got (%q, %v), want (%q, %v)", version, isUp, tt.wantVersion, tt.wantIsUp)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20260301_090000_location_hierarchy.up.sql", "location_hierarchy"},
		{"20260301_090000_location_hierarchy.down.sql", "location_hierarchy"},
		{"odd.up.sql", "odd"},
	}
	for _, tt := range tests {
		if got := extractMigrationName(tt.filename); got != tt.want {
			t.Errorf("extractMigrationName(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
