package repository

import (
	"context"
	"testing"

	"expirytrack-api/internal/model"
)

// newTestRepo creates a fresh in-memory SQLite repository.
func newTestRepo(t *testing.T) *SQLiteItemRepository {
	t.Helper()
	repo, err := NewSQLiteItemRepository(":memory:")
	if err != nil {
		t.Fatalf("opening test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestUpsertIsIdempotentPerBarcode(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := model.Item{Barcode: "123456789012", Name: "Milk", Expiry: "2024-03-01", Quantity: 4}
	second := first
	second.Quantity = 9
	second.Description = "restocked"

	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record after double upsert, got %d", count)
	}

	got, err := repo.Get(ctx, "123456789012")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for stored barcode")
	}
	if got.Quantity != 9 || got.Description != "restocked" {
		t.Errorf("got %+v, want the second write's values", got)
	}
}

func TestGetAbsentReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get(absent) = %+v, want nil", got)
	}
}

func TestGetByName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, model.Item{Barcode: "111", Name: "Yogurt", Expiry: "2024-02-01", Quantity: 2}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.GetByName(ctx, "Yogurt")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got == nil || got.Barcode != "111" {
		t.Errorf("GetByName(Yogurt) = %+v, want barcode 111", got)
	}

	// Case-sensitive: a different casing does not match.
	got, err = repo.GetByName(ctx, "yogurt")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got != nil {
		t.Errorf("GetByName(yogurt) = %+v, want nil", got)
	}
}

func TestDeleteAbsentIsNoOp(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete(absent) = %v, want nil", err)
	}
}

func TestGetAllIncludesStubs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	items := []model.Item{
		{Barcode: "1", Name: "Dated", Expiry: "2024-05-01", Quantity: 3},
		{Barcode: "2", Name: "Stub"}, // quantity 0, no expiry
	}
	for _, item := range items {
		if err := repo.Upsert(ctx, item); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("GetAll returned %d items, want 2", len(all))
	}
}
