package db

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM generations").Scan(&count); err != nil {
		t.Errorf("table generations: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestOpenDirCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	d, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir() error: %v", err)
	}
	defer d.Close()

	if want := filepath.Join(dir, FileName); d.Path() != want {
		t.Errorf("Path() = %q, want %q", d.Path(), want)
	}
}

func TestSchemaRejectsUnknownOutcome(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	_, err = d.Exec(`INSERT INTO generations (id, diagram_type, status, outcome) VALUES ('x', 'class', 'succeeded', 'bogus')`)
	if err == nil {
		t.Fatal("expected CHECK constraint failure")
	}
}
