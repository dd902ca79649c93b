package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationFilesSortedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_jobs.sql", "001_attendance.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("-- noop"), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700); err != nil {
		t.Fatalf("mkdir fixture: %v", err)
	}

	files, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(files) != 2 || files[0] != "001_attendance.sql" || files[1] != "002_jobs.sql" {
		t.Fatalf("expected sorted sql files, got %v", files)
	}
}

func TestMigrationsDirectoryIsValid(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "..", "migrations"))
	if err != nil {
		t.Fatalf("expected repository migrations, got %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected at least one migration")
	}
}
