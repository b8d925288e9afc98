package store

import (
	"context"

	"je-feed-v2/internal/model"
)

// Store persists the inventory as a whole. One Load and one Save bracket a
// reconciliation run; there is no record-level access because the run model
// is a coarse load-mutate-save with a single writer.
type Store interface {
	// Load returns the persisted inventory. An absent or unparseable
	// resource yields an empty inventory, never an error — first-run
	// bootstrap and corruption recovery are the same code path. Errors are
	// reserved for I/O-level failures (unreachable database, permission).
	Load(ctx context.Context) (model.Inventory, error)

	// Save replaces the persisted inventory in full. Callers may assume the
	// write is atomic: a concurrent-in-time Load never observes a partial
	// inventory.
	Save(ctx context.Context, inv model.Inventory) error

	// Stats returns backend statistics for the status endpoints.
	Stats(ctx context.Context) (map[string]any, error)

	// Close releases the backing resource.
	Close() error
}
