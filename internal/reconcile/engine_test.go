package reconcile

import (
	"context"
	"testing"
	"time"

	"je-feed-v2/internal/logger"
	"je-feed-v2/internal/model"
)

// memStore keeps the inventory in memory for engine tests.
type memStore struct {
	inv model.Inventory
}

func (m *memStore) Load(ctx context.Context) (model.Inventory, error) {
	if m.inv == nil {
		return model.Inventory{}, nil
	}
	return m.inv, nil
}

func (m *memStore) Save(ctx context.Context, inv model.Inventory) error {
	m.inv = inv
	return nil
}

func (m *memStore) Stats(ctx context.Context) (map[string]any, error) {
	return map[string]any{"total_records": len(m.inv)}, nil
}

func (m *memStore) Close() error { return nil }

func testEngine(st *memStore) *Engine {
	return New(st, logger.Nop()).WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})
}

func TestThreeRunScenario(t *testing.T) {
	st := &memStore{}
	eng := testEngine(st)
	ctx := context.Background()

	// Run 1: one listing appears.
	inv, err := eng.Run(ctx, []model.Scraped{{
		"id":       "42",
		"title":    "1969 Ford Mustang",
		"images":   []string{"http://x/1.jpg"},
		"location": map[string]any{"country": "US"},
	}})
	if err != nil {
		t.Fatalf("run 1: %v", err)
	}
	rec, ok := inv["JE-42"]
	if !ok {
		t.Fatalf("expected record keyed JE-42, have %v", inv)
	}
	if rec.Status != model.StatusActive || rec.MissingRuns != 0 {
		t.Fatalf("unexpected state after run 1: %+v", rec)
	}
	if rec.FirstSeen == "" || rec.FirstSeen != rec.LastSeen {
		t.Fatalf("timestamps not set on creation: %+v", rec)
	}

	// Run 2: empty scrape. Record persists, missing_runs ticks.
	inv, err = eng.Run(ctx, nil)
	if err != nil {
		t.Fatalf("run 2: %v", err)
	}
	rec = inv["JE-42"]
	if rec == nil {
		t.Fatalf("record deleted by empty scrape")
	}
	if rec.MissingRuns != 1 || rec.Status != model.StatusActive {
		t.Fatalf("unexpected state after run 2: %+v", rec)
	}

	// Run 3: same id, no images this time. Gallery must survive.
	inv, err = eng.Run(ctx, []model.Scraped{{
		"id":     "42",
		"title":  "1969 Ford Mustang",
		"images": []string{},
	}})
	if err != nil {
		t.Fatalf("run 3: %v", err)
	}
	rec = inv["JE-42"]
	if rec.MissingRuns != 0 {
		t.Fatalf("missing_runs not reset: %+v", rec)
	}
	if len(rec.Images) != 1 || rec.Images[0] != "http://x/1.jpg" {
		t.Fatalf("gallery lost on empty scrape: %v", rec.Images)
	}
	if rec.Location.Country != "US" {
		t.Fatalf("location lost: %+v", rec.Location)
	}
}

func TestEmptyScrapeNeverShrinksStore(t *testing.T) {
	st := &memStore{inv: model.Inventory{
		"JE-1": {ExternalID: "JE-1", Status: model.StatusActive},
		"JE-2": {ExternalID: "JE-2", Status: model.StatusActive},
		"JE-3": {ExternalID: "JE-3", Status: model.StatusActive},
	}}
	eng := testEngine(st)

	inv, err := eng.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(inv) != 3 {
		t.Fatalf("store shrank: %d records", len(inv))
	}
	for id, rec := range inv {
		if rec.MissingRuns != 1 {
			t.Fatalf("%s: missing_runs = %d, want 1", id, rec.MissingRuns)
		}
		if rec.Status != model.StatusActive {
			t.Fatalf("%s: status changed to %q", id, rec.Status)
		}
	}
}

func TestJEReferenceWriteOnce(t *testing.T) {
	st := &memStore{inv: model.Inventory{
		"JE-42": {ExternalID: "JE-42", Status: model.StatusActive, JEReference: "legacy-ref-42"},
	}}
	eng := testEngine(st)

	inv, err := eng.Run(context.Background(), []model.Scraped{{"id": "42", "title": "New Title"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := inv["JE-42"].JEReference; got != "legacy-ref-42" {
		t.Fatalf("je_reference regenerated: %q", got)
	}
}

func TestJEReferenceAssignedOnCreate(t *testing.T) {
	st := &memStore{}
	eng := testEngine(st)

	inv, err := eng.Run(context.Background(), []model.Scraped{{"id": "42"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := inv["JE-42"].JEReference; got != "je-42" {
		t.Fatalf("expected je-42, got %q", got)
	}
}

func TestFirstSeenImmutable(t *testing.T) {
	st := &memStore{inv: model.Inventory{
		"JE-42": {ExternalID: "JE-42", Status: model.StatusActive, FirstSeen: "2020-01-01T00:00:00Z"},
	}}
	eng := testEngine(st)

	inv, err := eng.Run(context.Background(), []model.Scraped{{"id": "42"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	rec := inv["JE-42"]
	if rec.FirstSeen != "2020-01-01T00:00:00Z" {
		t.Fatalf("first_seen changed: %q", rec.FirstSeen)
	}
	if rec.LastSeen != "2025-06-01T12:00:00Z" {
		t.Fatalf("last_seen not updated: %q", rec.LastSeen)
	}
}

func TestFieldMergeKeepsKnownValues(t *testing.T) {
	st := &memStore{inv: model.Inventory{
		"JE-42": {
			ExternalID: "JE-42",
			Status:     model.StatusActive,
			Brand:      "Ford",
			Year:       "1969",
			Raw:        map[string]any{"vin": "9F02R123456"},
		},
	}}
	eng := testEngine(st)

	inv, err := eng.Run(context.Background(), []model.Scraped{{
		"id":    "42",
		"brand": "",
		"model": "Mustang Boss 302",
	}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	rec := inv["JE-42"]
	if rec.Brand != "Ford" {
		t.Fatalf("empty brand erased old value: %+v", rec)
	}
	if rec.Model != "Mustang Boss 302" {
		t.Fatalf("new model not taken: %+v", rec)
	}
	if rec.Raw["vin"] != "9F02R123456" {
		t.Fatalf("raw-only key lost: %v", rec.Raw)
	}
}

func TestRawShadowTracksNormalizedFields(t *testing.T) {
	st := &memStore{}
	eng := testEngine(st)

	inv, err := eng.Run(context.Background(), []model.Scraped{{
		"id":     "42",
		"brand":  "Ford",
		"model":  "Mustang",
		"year":   "1969",
		"images": []string{"http://x/1.jpg"},
	}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	rec := inv["JE-42"]
	if rec.Raw["brand"] != "Ford" || rec.Raw["model"] != "Mustang" || rec.Raw["year"] != "1969" {
		t.Fatalf("raw shadow diverged from normalized fields: %v", rec.Raw)
	}
}

func TestMalformedListingsSkipped(t *testing.T) {
	st := &memStore{}
	eng := testEngine(st)

	inv, err := eng.Run(context.Background(), []model.Scraped{
		nil,
		{},
		{"id": "42", "title": "1969 Ford Mustang"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(inv) != 1 {
		t.Fatalf("expected only the well-formed listing stored, got %d", len(inv))
	}
}
