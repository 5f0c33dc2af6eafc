package migration

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func testMigrationFS() fstest.MapFS {
	return fstest.MapFS{
		"001_init.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE habits (id TEXT PRIMARY KEY, name TEXT NOT NULL);"),
		},
		"002_add_color.sql": &fstest.MapFile{
			Data: []byte("ALTER TABLE habits ADD COLUMN color TEXT NOT NULL DEFAULT '';"),
		},
		"README.md": &fstest.MapFile{
			Data: []byte("not a migration"),
		},
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadMigrationFiles(t *testing.T) {
	t.Run("reads and sorts sql files", func(t *testing.T) {
		runner := NewRunner(openTestDB(t), testMigrationFS())

		migrations, err := runner.ReadMigrationFiles()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(migrations) != 2 {
			t.Fatalf("expected 2 migrations, got %d", len(migrations))
		}
		if migrations[0].Version != 1 || migrations[0].Name != "init" {
			t.Errorf("unexpected first migration: %+v", migrations[0])
		}
		if migrations[1].Version != 2 || migrations[1].Name != "add_color" {
			t.Errorf("unexpected second migration: %+v", migrations[1])
		}
		if migrations[0].SQL == "" {
			t.Error("expected migration SQL to be loaded")
		}
	})

	t.Run("rejects malformed filenames", func(t *testing.T) {
		fsys := fstest.MapFS{
			"init.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
		}
		runner := NewRunner(openTestDB(t), fsys)
		if _, err := runner.ReadMigrationFiles(); err == nil {
			t.Error("expected error for filename without version prefix")
		}
	})

	t.Run("rejects version zero", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000_bad.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
		}
		runner := NewRunner(openTestDB(t), fsys)
		if _, err := runner.ReadMigrationFiles(); err == nil {
			t.Error("expected error for version below 1")
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		fsys := fstest.MapFS{
			"001_first.sql":  &fstest.MapFile{Data: []byte("SELECT 1;")},
			"001_second.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
		}
		runner := NewRunner(openTestDB(t), fsys)
		if _, err := runner.ReadMigrationFiles(); err == nil {
			t.Error("expected error for duplicate version")
		}
	})
}

func TestApplyMigrations(t *testing.T) {
	db := openTestDB(t)
	runner := NewRunner(db, testMigrationFS())

	applied, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	if applied != 2 {
		t.Errorf("expected 2 applied migrations, got %d", applied)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	// The migrated schema is usable
	if _, err := db.Exec("INSERT INTO habits (id, name, color) VALUES ('h1', 'Read', '#fff')"); err != nil {
		t.Errorf("migrated schema rejected an insert: %v", err)
	}

	// Re-running is a no-op
	applied, err = runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("failed to re-run migrations: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected 0 applied on re-run, got %d", applied)
	}
}

func TestApplyMigrationsFailureKeepsVersion(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"001_init.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE habits (id TEXT PRIMARY KEY);"),
		},
		"002_broken.sql": &fstest.MapFile{
			Data: []byte("ALTER TABLE nonexistent ADD COLUMN broken TEXT;"),
		},
	}
	runner := NewRunner(db, fsys)

	applied, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("expected the broken migration to fail")
	}
	if applied != 1 {
		t.Errorf("expected 1 applied before the failure, got %d", applied)
	}

	version, verr := runner.GetCurrentVersion()
	if verr != nil {
		t.Fatalf("failed to get version: %v", verr)
	}
	if version != 1 {
		t.Errorf("expected version to stay at 1 after failed migration, got %d", version)
	}
}

func TestValidateVersion(t *testing.T) {
	db := openTestDB(t)
	runner := NewRunner(db, testMigrationFS())

	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("expected up-to-date schema to validate, got %v", err)
	}

	// A database from a newer application version is rejected
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to clear version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (99)"); err != nil {
		t.Fatalf("failed to set version: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Error("expected newer schema version to be rejected")
	}
}
