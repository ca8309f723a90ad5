package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
}

func TestDeleteDatabaseRemovesSidecars(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "songs.sqlite3")
	touch(t, db)
	touch(t, db+"-wal")
	touch(t, db+"-shm")
	other := filepath.Join(dir, "keep.txt")
	touch(t, other)

	removed, err := DeleteDatabase(db)
	if err != nil {
		t.Fatalf("DeleteDatabase failed: %v", err)
	}
	if len(removed) != 3 {
		t.Errorf("Expected 3 removed files, got %v", removed)
	}
	for _, p := range []string{db, db + "-wal", db + "-shm"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", p)
		}
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("Expected unrelated file to survive: %v", err)
	}
}

func TestDeleteDatabaseMissing(t *testing.T) {
	removed, err := DeleteDatabase(filepath.Join(t.TempDir(), "absent.sqlite3"))
	if err != nil {
		t.Fatalf("Expected no error for missing database, got %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("Expected nothing removed, got %v", removed)
	}
}

func TestEnsureParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "songs.sqlite3")
	if err := EnsureParentDir(path); err != nil {
		t.Fatalf("EnsureParentDir failed: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Errorf("Expected parent directory to exist")
	}
	if err := EnsureParentDir("songs.sqlite3"); err != nil {
		t.Errorf("Expected no-op for bare file name, got %v", err)
	}
}
