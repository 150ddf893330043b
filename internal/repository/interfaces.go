package repository

import (
	"context"

	"expirytrack-api/internal/model"
)

// ItemRepository defines item data access methods. The store keeps
// exactly one record per barcode; writes are upserts.
type ItemRepository interface {
	// Upsert inserts or replaces the record for item.Barcode.
	Upsert(ctx context.Context, item model.Item) error

	// Get returns the item with the exact barcode, or (nil, nil) when
	// absent.
	Get(ctx context.Context, barcode string) (*model.Item, error)

	// GetByName returns the first item whose name matches exactly
	// (case-sensitive), or (nil, nil) when none does.
	GetByName(ctx context.Context, name string) (*model.Item, error)

	// GetAll returns every stored item in storage iteration order.
	GetAll(ctx context.Context) ([]model.Item, error)

	// Delete removes the record for barcode. Deleting an absent
	// barcode is a no-op, not an error.
	Delete(ctx context.Context, barcode string) error

	// Count returns the number of stored items.
	Count(ctx context.Context) (int64, error)

	// Close closes the repository connection.
	Close() error
}
