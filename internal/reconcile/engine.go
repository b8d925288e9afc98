// Package reconcile merges freshly scraped listings into the durable
// inventory. The rules are strict: identifiers never change, nothing is ever
// deleted, and a new observation only wins a field when it actually carries a
// value.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"je-feed-v2/internal/identity"
	"je-feed-v2/internal/logger"
	"je-feed-v2/internal/merge"
	"je-feed-v2/internal/model"
	"je-feed-v2/internal/store"
)

// Engine runs one reconciliation pass per invocation: load the inventory
// once, upsert today's listings, bump missing_runs for everything unseen,
// save once. The single save bounds I/O and gives the run all-or-nothing
// semantics — a crash before Save leaves the prior state authoritative.
type Engine struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

// New creates an engine bound to a store.
func New(st store.Store, log *logger.Logger) *Engine {
	return &Engine{store: st, log: log, now: time.Now}
}

// WithClock overrides the engine's clock. Tests use this for deterministic
// timestamps.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Run executes one pass and returns the reconciled inventory.
func (e *Engine) Run(ctx context.Context, scraped []model.Scraped) (model.Inventory, error) {
	inv, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	e.Apply(inv, scraped)
	if err := e.store.Save(ctx, inv); err != nil {
		return nil, fmt.Errorf("save inventory: %w", err)
	}
	return inv, nil
}

// Apply mutates inv in place: upserts every keyable scraped listing, then
// increments missing_runs on records not observed today. Malformed listings
// are skipped individually; they never abort the pass.
func (e *Engine) Apply(inv model.Inventory, scraped []model.Scraped) {
	now := e.now().UTC().Format(time.RFC3339)
	seenToday := make(map[string]struct{}, len(scraped))

	for _, l := range scraped {
		if len(l) == 0 {
			continue
		}
		extID := identity.Resolve(l)
		if extID == "" {
			e.log.Warn("skipping unkeyable listing", "title", l.Str("title"))
			continue
		}
		seenToday[extID] = struct{}{}
		e.upsert(inv, extID, l, now)
	}

	// Unseen records are counted, never deactivated. Pruning is an operator
	// decision, not this engine's.
	for extID, rec := range inv {
		if _, ok := seenToday[extID]; ok {
			continue
		}
		rec.MissingRuns++
	}
}

func (e *Engine) upsert(inv model.Inventory, extID string, l model.Scraped, now string) {
	rec, ok := inv[extID]
	if !ok {
		rec = &model.Record{
			ExternalID: extID,
			FirstSeen:  now,
		}
		inv[extID] = rec
	}

	rec.Status = model.StatusActive
	rec.LastSeen = now
	rec.MissingRuns = 0

	rec.Title = merge.String(rec.Title, l.Str("title"))
	rec.URL = merge.String(rec.URL, l.Str("url"))
	rec.Price = merge.String(rec.Price, l.Str("price"))
	rec.Brand = merge.String(rec.Brand, l.Str("brand"))
	rec.Model = merge.String(rec.Model, l.Str("model"))
	rec.Year = merge.String(rec.Year, l.Str("year"))
	rec.Description = merge.String(rec.Description, l.Str("description"))
	rec.Location = merge.Location(rec.Location, model.LocationFromScraped(l.Child("location")))
	rec.Images = merge.Images(rec.Images, l.Strings("images"), merge.MaxImages)

	// Raw shadow: union merge, then write the normalized fields back so the
	// two views cannot diverge.
	raw := merge.Raw(rec.Raw, l)
	raw["brand"] = rec.Brand
	raw["model"] = rec.Model
	raw["year"] = rec.Year
	raw["images"] = rec.Images
	raw["location"] = rec.Location.Map()
	if rec.Title != "" {
		raw["title"] = rec.Title
	}
	if rec.URL != "" {
		raw["url"] = rec.URL
	}
	rec.Raw = raw

	// Write-once: the downstream consumer keys adverts on this value.
	if rec.JEReference == "" {
		rec.JEReference = identity.ExportReference(extID)
	}
}
