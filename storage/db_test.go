package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func exerciseDatabase(t *testing.T, db Database) {
	t.Helper()
	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := db.Put([]byte("g/b"), []byte("2")); err != nil {
		t.Fatalf("put: %v", err)
	}
	batch := db.NewBatch()
	batch.Put([]byte("g/a"), []byte("1"))
	batch.Put([]byte("m/x"), []byte("3"))
	batch.Delete([]byte("g/b"))
	if batch.Len() != 3 {
		t.Fatalf("unexpected batch length %d", batch.Len())
	}
	if _, err := db.Get([]byte("g/a")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("batch writes must not be visible before Write")
	}
	if err := batch.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	keys, err := db.Keys([]byte("g/"))
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || string(keys[0]) != "g/a" {
		t.Fatalf("unexpected keys %q", keys)
	}
	if err := db.Delete([]byte("m/x")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Get([]byte("m/x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted key to be missing")
	}
}

func TestMemDB(t *testing.T) {
	exerciseDatabase(t, NewMemDB())
}

func TestLevelDB(t *testing.T) {
	db, err := NewLevelDB(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	exerciseDatabase(t, db)
}
