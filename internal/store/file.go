package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"je-feed-v2/internal/logger"
	"je-feed-v2/internal/model"
)

// FileStore is the canonical backend: a single JSON object mapping external
// id to record. Save writes the whole document through a temp file + rename
// so a crashed run leaves the previous state authoritative.
type FileStore struct {
	path string
	log  *logger.Logger
}

// NewFileStore creates a file-backed store at path (e.g. "./data/inventory.json").
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Load reads the inventory file. A missing or corrupt file is an empty
// inventory, by contract.
func (s *FileStore) Load(ctx context.Context) (model.Inventory, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("inventory file unreadable, starting empty", "path", s.path, "err", err)
		}
		return model.Inventory{}, nil
	}
	inv, ok := Decode(data)
	if !ok && len(data) > 0 {
		s.log.Warn("inventory file corrupt, starting empty", "path", s.path)
	}
	return inv, nil
}

// Save atomically replaces the inventory file.
func (s *FileStore) Save(ctx context.Context, inv model.Inventory) error {
	buf, err := Encode(inv)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create inventory dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".inventory-*.json")
	if err != nil {
		return fmt.Errorf("create temp inventory file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write inventory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close inventory file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace inventory file: %w", err)
	}
	return nil
}

// Stats reports record counts and the file size.
func (s *FileStore) Stats(ctx context.Context) (map[string]any, error) {
	stats := map[string]any{"backend": "file", "path": s.path}
	inv, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	stats["total_records"] = len(inv)
	if fi, err := os.Stat(s.path); err == nil {
		stats["file_bytes"] = fi.Size()
	}
	return stats, nil
}

// Close is a no-op; the file is not held open between round-trips.
func (s *FileStore) Close() error { return nil }
