package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) (string, *Manager) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "seedjournal.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE habits (id TEXT PRIMARY KEY, name TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO habits (id, name) VALUES ('h1', 'Read')"); err != nil {
		t.Fatalf("failed to insert row: %v", err)
	}

	return dbPath, NewManager(dbPath)
}

func TestCreateBackup(t *testing.T) {
	dbPath, mgr := setupTestDB(t)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("backup file is empty")
	}
	if filepath.Dir(backupPath) != filepath.Join(filepath.Dir(dbPath), "backups") {
		t.Errorf("backup not in backups/ next to the database: %s", backupPath)
	}

	// The backup is a readable database carrying the data
	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		t.Fatalf("failed to open backup: %v", err)
	}
	defer db.Close()
	var name string
	if err := db.QueryRow("SELECT name FROM habits WHERE id = 'h1'").Scan(&name); err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if name != "Read" {
		t.Errorf("expected backed-up row, got %q", name)
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "absent.db"))

	if _, err := mgr.Create(); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestBackupUniqueNames(t *testing.T) {
	_, mgr := setupTestDB(t)

	// Backups in quick succession (same minute) must not collide
	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("failed to create first backup: %v", err)
	}
	second, err := mgr.Create()
	if err != nil {
		t.Fatalf("failed to create second backup: %v", err)
	}
	if first == second {
		t.Errorf("expected distinct backup paths, both were %s", first)
	}
}

func TestListBackups(t *testing.T) {
	_, mgr := setupTestDB(t)

	// Empty directory lists cleanly
	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}

	if _, err := mgr.Create(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
	if backups[0].Size == 0 {
		t.Error("expected a non-zero size")
	}
	if backups[0].Timestamp.IsZero() {
		t.Error("expected a parsed timestamp")
	}

	// Unrelated files are ignored
	stray := filepath.Join(mgr.BackupDir(), "notes.txt")
	if err := os.WriteFile(stray, []byte("not a backup"), 0600); err != nil {
		t.Fatalf("failed to write stray file: %v", err)
	}
	backups, _ = mgr.List()
	if len(backups) != 1 {
		t.Errorf("expected stray files to be ignored, got %d entries", len(backups))
	}
}

func TestParseBackupTimestamp(t *testing.T) {
	tests := []struct {
		name string
		file string
		want time.Time
		ok   bool
	}{
		{
			name: "minute precision",
			file: "seedjournal-20260831-0930.db",
			want: time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "second precision",
			file: "seedjournal-20260831-093015.db",
			want: time.Date(2026, 8, 31, 9, 30, 15, 0, time.UTC),
			ok:   true,
		},
		{
			name: "collision counter",
			file: "seedjournal-20260831-093015-2.db",
			want: time.Date(2026, 8, 31, 9, 30, 15, 0, time.UTC),
			ok:   true,
		},
		{
			name: "garbage",
			file: "seedjournal-latest.db",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseBackupTimestamp(tt.file)
			if ok != tt.ok {
				t.Fatalf("parseBackupTimestamp(%q) ok = %v, want %v", tt.file, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("parseBackupTimestamp(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestRestore(t *testing.T) {
	dbPath, mgr := setupTestDB(t)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	// Mutate the live database after the backup
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec("DELETE FROM habits"); err != nil {
		t.Fatalf("failed to mutate database: %v", err)
	}
	db.Close()

	if err := mgr.Restore(backupPath); err != nil {
		t.Fatalf("failed to restore: %v", err)
	}

	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&count); err != nil {
		t.Fatalf("failed to query restored database: %v", err)
	}
	if count != 1 {
		t.Errorf("expected restored row count 1, got %d", count)
	}
}

func TestRestoreRejectsInvalidFile(t *testing.T) {
	_, mgr := setupTestDB(t)

	if err := mgr.Restore(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Error("expected error for missing backup file")
	}

	// sqlite's lazy open may accept garbage until queried; verifyDatabase
	// must catch it either way
	garbage := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(garbage, []byte("this is not a database"), 0600); err != nil {
		t.Fatalf("failed to write garbage file: %v", err)
	}
	if err := mgr.Restore(garbage); err == nil {
		t.Error("expected error for corrupted backup file")
	}
}
