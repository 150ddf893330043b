package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"expirytrack-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLItemRepository implements ItemRepository using MySQL.
type MySQLItemRepository struct {
	db *sql.DB
}

// NewMySQLItemRepository creates a new MySQL item repository.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLItemRepository(dsn string) (*MySQLItemRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS items (
		barcode VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		expiry VARCHAR(10) NOT NULL DEFAULT '',
		quantity INT NOT NULL DEFAULT 0,
		INDEX idx_items_name (name)
	)`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("[MySQLItemRepository] Initialized")
	return &MySQLItemRepository{db: db}, nil
}

// Upsert inserts or replaces the record for item.Barcode.
func (r *MySQLItemRepository) Upsert(ctx context.Context, item model.Item) error {
	query := `
		INSERT INTO items (barcode, name, description, expiry, quantity)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			description = VALUES(description),
			expiry = VALUES(expiry),
			quantity = VALUES(quantity)`

	_, err := r.db.ExecContext(ctx, query, item.Barcode, item.Name, item.Description, item.Expiry, item.Quantity)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

// Get retrieves an item by exact barcode.
func (r *MySQLItemRepository) Get(ctx context.Context, barcode string) (*model.Item, error) {
	return scanItemRow(r.db.QueryRowContext(ctx,
		`SELECT barcode, name, description, expiry, quantity FROM items WHERE barcode = ?`, barcode))
}

// GetByName retrieves the first item with an exact name match.
func (r *MySQLItemRepository) GetByName(ctx context.Context, name string) (*model.Item, error) {
	return scanItemRow(r.db.QueryRowContext(ctx,
		`SELECT barcode, name, description, expiry, quantity FROM items WHERE BINARY name = ? LIMIT 1`, name))
}

// GetAll returns every stored item.
func (r *MySQLItemRepository) GetAll(ctx context.Context) ([]model.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT barcode, name, description, expiry, quantity FROM items`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	return scanItemRows(rows)
}

// Delete removes the record for barcode; absent barcodes are a no-op.
func (r *MySQLItemRepository) Delete(ctx context.Context, barcode string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE barcode = ?`, barcode); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// Count returns the number of stored items.
func (r *MySQLItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (r *MySQLItemRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLItemRepository implements ItemRepository
var _ ItemRepository = (*MySQLItemRepository)(nil)
