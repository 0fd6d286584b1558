package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInit_CreatesDatabase(t *testing.T) {
	tmpDir := t.TempDir()

	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "chronobox.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}

	version, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInit_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	first, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	first.Close()

	second, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	defer second.Close()
}

func TestReadSlot_Missing(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	value, ok, err := ReadSlot(database, "nope")
	if err != nil {
		t.Fatalf("ReadSlot failed: %v", err)
	}
	if ok {
		t.Error("ok = true for missing slot, want false")
	}
	if value != "" {
		t.Errorf("value = %q, want empty", value)
	}
}

func TestWriteSlot_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	now := time.Now().Unix()
	if err := WriteSlot(database, "test_slot", `[{"id":"a"}]`, now); err != nil {
		t.Fatalf("WriteSlot failed: %v", err)
	}

	value, ok, err := ReadSlot(database, "test_slot")
	if err != nil {
		t.Fatalf("ReadSlot failed: %v", err)
	}
	if !ok {
		t.Fatal("ok = false, want true")
	}
	if value != `[{"id":"a"}]` {
		t.Errorf("value = %q", value)
	}
}

func TestWriteSlot_Overwrites(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	now := time.Now().Unix()
	if err := WriteSlot(database, "test_slot", "first", now); err != nil {
		t.Fatalf("WriteSlot failed: %v", err)
	}
	if err := WriteSlot(database, "test_slot", "second", now+1); err != nil {
		t.Fatalf("WriteSlot overwrite failed: %v", err)
	}

	value, ok, err := ReadSlot(database, "test_slot")
	if err != nil {
		t.Fatalf("ReadSlot failed: %v", err)
	}
	if !ok || value != "second" {
		t.Errorf("value = %q, ok = %v; want %q, true", value, ok, "second")
	}
}
