package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"je-feed-v2/internal/logger"
	"je-feed-v2/internal/model"
)

func testInventory() model.Inventory {
	return model.Inventory{
		"JE-42": {
			ExternalID:  "JE-42",
			Status:      model.StatusActive,
			FirstSeen:   "2025-06-01T12:00:00Z",
			LastSeen:    "2025-06-02T12:00:00Z",
			MissingRuns: 0,
			Title:       "1969 Ford Mustang",
			Brand:       "Ford",
			Model:       "Mustang",
			Year:        "1969",
			Images:      []string{"http://x/1.jpg", "http://x/2.jpg"},
			Location:    model.Location{Country: "United States", City: "Portland"},
			Raw: map[string]any{
				"vin":   "9F02R123456",
				"title": "1969 Ford Mustang",
			},
			JEReference: "je-42",
		},
		"JE-7": {
			ExternalID: "JE-7",
			Status:     model.StatusActive,
			FirstSeen:  "2025-05-20T08:00:00Z",
			LastSeen:   "2025-05-20T08:00:00Z",
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	s := NewFileStore(path, logger.Nop())
	ctx := context.Background()

	want := testInventory()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestFileStoreSaveIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.json")
	s := NewFileStore(path, logger.Nop())
	ctx := context.Background()

	if err := s.Save(ctx, testInventory()); err != nil {
		t.Fatalf("save: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	// Save the loaded form again: bytes must not change.
	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.Save(ctx, loaded); err != nil {
		t.Fatalf("second save: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("save(load(x)) produced different bytes")
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope.json"), logger.Nop())
	inv, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(inv) != 0 {
		t.Fatalf("expected empty inventory, got %d records", len(inv))
	}
}

func TestFileStoreCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewFileStore(path, logger.Nop())
	inv, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(inv) != 0 {
		t.Fatalf("expected empty inventory from corrupt file, got %d records", len(inv))
	}
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "inventory.json")
	s := NewFileStore(path, logger.Nop())
	if err := s.Save(context.Background(), testInventory()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("inventory file not created: %v", err)
	}
}

func TestDecodeDropsNullEntries(t *testing.T) {
	inv, ok := Decode([]byte(`{"JE-1": null, "JE-2": {"external_id": "JE-2"}}`))
	if !ok {
		t.Fatalf("expected parseable document")
	}
	if _, exists := inv["JE-1"]; exists {
		t.Fatalf("null entry survived decode")
	}
	if inv["JE-2"] == nil {
		t.Fatalf("valid entry lost")
	}
}
