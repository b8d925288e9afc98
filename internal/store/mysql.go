package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"je-feed-v2/internal/logger"
	"je-feed-v2/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLStore implements Store on a single MySQL table.
type MySQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewMySQLStore connects and initializes the table.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLStore(dsn string, log *logger.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS inventory_records (
		external_id VARCHAR(255) PRIMARY KEY,
		record_json MEDIUMTEXT NOT NULL,
		updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create inventory table: %w", err)
	}
	log.Info("mysql store initialized")
	return &MySQLStore{db: db, log: log}, nil
}

// Load reads every row, skipping any whose document no longer parses.
func (s *MySQLStore) Load(ctx context.Context) (model.Inventory, error) {
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
func (s *MySQLStore) Save(ctx context.Context, inv model.Inventory) error {
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
func (s *MySQLStore) Stats(ctx context.Context) (map[string]any, error) {
	stats := map[string]any{"backend": "mysql"}
	var count int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_records`).Scan(&count); err != nil {
		return nil, err
	}
	stats["total_records"] = count
	return stats, nil
}

// Close closes the database.
func (s *MySQLStore) Close() error { return s.db.Close() }
