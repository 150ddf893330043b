package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"expirytrack-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteItemRepository implements ItemRepository using SQLite. This is
// the default, embedded backend: one local file, no external engine.
// Thread-safe with WAL mode for concurrent reads.
type SQLiteItemRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteItemRepository creates a new SQLite item repository.
// dbPath is the path to the database file (e.g. "./data/inventory.db");
// ":memory:" opens a throwaway in-memory database.
func NewSQLiteItemRepository(dbPath string) (*SQLiteItemRepository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createItemsTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteItemRepository] Initialized with database: %s", dbPath)
	return &SQLiteItemRepository{db: db}, nil
}

// createItemsTable creates the items table and its name index. Both
// statements are conditional, so schema setup is a no-op after the
// first run.
func createItemsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS items (
		barcode TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		expiry TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);
	`
	_, err := db.Exec(query)
	return err
}

// Upsert inserts or replaces the record for item.Barcode.
func (r *SQLiteItemRepository) Upsert(ctx context.Context, item model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO items (barcode, name, description, expiry, quantity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(barcode) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expiry = excluded.expiry,
			quantity = excluded.quantity`

	_, err := r.db.ExecContext(ctx, query, item.Barcode, item.Name, item.Description, item.Expiry, item.Quantity)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

// Get retrieves an item by exact barcode.
func (r *SQLiteItemRepository) Get(ctx context.Context, barcode string) (*model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return scanItemRow(r.db.QueryRowContext(ctx,
		`SELECT barcode, name, description, expiry, quantity FROM items WHERE barcode = ?`, barcode))
}

// GetByName retrieves the first item with an exact name match.
func (r *SQLiteItemRepository) GetByName(ctx context.Context, name string) (*model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return scanItemRow(r.db.QueryRowContext(ctx,
		`SELECT barcode, name, description, expiry, quantity FROM items WHERE name = ? LIMIT 1`, name))
}

// GetAll returns every stored item.
func (r *SQLiteItemRepository) GetAll(ctx context.Context) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT barcode, name, description, expiry, quantity FROM items`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	return scanItemRows(rows)
}

// Delete removes the record for barcode; absent barcodes are a no-op.
func (r *SQLiteItemRepository) Delete(ctx context.Context, barcode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE barcode = ?`, barcode); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// Count returns the number of stored items.
func (r *SQLiteItemRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (r *SQLiteItemRepository) Close() error {
	return r.db.Close()
}

// scanItemRow scans a single-row query, mapping no-rows to (nil, nil).
func scanItemRow(row *sql.Row) (*model.Item, error) {
	var item model.Item
	err := row.Scan(&item.Barcode, &item.Name, &item.Description, &item.Expiry, &item.Quantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	return &item, nil
}

// scanItemRows drains a multi-row query.
func scanItemRows(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.Barcode, &item.Name, &item.Description, &item.Expiry, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Ensure SQLiteItemRepository implements ItemRepository
var _ ItemRepository = (*SQLiteItemRepository)(nil)
