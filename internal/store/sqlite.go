package store

import (
	"context"
	"database/sql"
	"fmt"

	"je-feed-v2/internal/logger"
	"je-feed-v2/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore implements Store on a single SQLite table, one row per record.
// Each row carries the same deterministic JSON document the file backend
// writes, so switching backends never changes record semantics.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLiteStore opens (and if needed initializes) the database at dbPath.
func NewSQLiteStore(dbPath string, log *logger.Logger) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite supports a single writer; the run model is single-writer anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS inventory_records (
		external_id TEXT PRIMARY KEY,
		record_json TEXT NOT NULL,
		updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create inventory table: %w", err)
	}

	log.Info("sqlite store initialized", "path", dbPath)
	return &SQLiteStore{db: db, log: log}, nil
}

// Load reads every row. Rows whose JSON no longer parses are skipped with a
// warning instead of failing the run.
func (s *SQLiteStore) Load(ctx context.Context) (model.Inventory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT external_id, record_json FROM inventory_records`)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	defer rows.Close()

	inv := model.Inventory{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		rec, err := DecodeRecord([]byte(doc))
		if err != nil {
			s.log.Warn("skipping corrupt inventory row", "external_id", id, "err", err)
			continue
		}
		inv[id] = rec
	}
	return inv, rows.Err()
}

// Save replaces the table contents in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, inv model.Inventory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_records`); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO inventory_records (external_id, record_json) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for id, rec := range inv {
		doc, err := EncodeRecord(rec)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, string(doc)); err != nil {
			return fmt.Errorf("insert record %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Stats reports row counts.
func (s *SQLiteStore) Stats(ctx context.Context) (map[string]any, error) {
	stats := map[string]any{"backend": "sqlite"}
	var count int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_records`).Scan(&count); err != nil {
		return nil, err
	}
	stats["total_records"] = count
	var lastUpdate sql.NullString
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(updated_at) FROM inventory_records`).Scan(&lastUpdate); err == nil && lastUpdate.Valid {
		stats["last_update"] = lastUpdate.String
	}
	return stats, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
