package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"expirytrack-api/internal/model"
	"expirytrack-api/internal/repository"
)

func sqliteOpenFunc() (repository.ItemRepository, error) {
	return repository.NewSQLiteItemRepository(":memory:")
}

// openReadyStore opens a store and waits for readiness by issuing a
// cheap operation.
func openReadyStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.Open(sqliteOpenFunc)
	if _, err := s.Count(context.Background()); err != nil {
		t.Fatalf("waiting for store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// waitPending blocks until n operations are queued.
func waitPending(t *testing.T, s *Store, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		queued := len(s.pending)
		s.mu.Unlock()
		if queued >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d pending operations", n)
}

func TestOperationsBeforeOpenAreQueuedAndReplayedInOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	item := model.Item{Barcode: "123456789012", Name: "Milk", Expiry: "2024-03-01", Quantity: 4}

	var wg sync.WaitGroup
	var putErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		putErr = s.Put(ctx, item)
	}()
	waitPending(t, s, 1)

	var got *model.Item
	var getErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, getErr = s.Get(ctx, "123456789012")
	}()
	waitPending(t, s, 2)

	// Nothing has run yet; now let the open settle and replay.
	s.Open(sqliteOpenFunc)
	wg.Wait()
	t.Cleanup(func() { s.Close() })

	if putErr != nil {
		t.Fatalf("queued Put: %v", putErr)
	}
	if getErr != nil {
		t.Fatalf("queued Get: %v", getErr)
	}
	if got == nil {
		t.Fatal("queued Get ran before queued Put: item not visible")
	}
	if got.Quantity != 4 {
		t.Errorf("queued Get quantity = %d, want 4", got.Quantity)
	}
}

func TestQueuedResultMatchesPostOpenResult(t *testing.T) {
	ctx := context.Background()
	item := model.Item{Barcode: "42", Name: "Cheese", Expiry: "2024-04-01", Quantity: 2}

	// Issued before open.
	queued := New()
	var queuedGot *model.Item
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := queued.Put(ctx, item); err != nil {
			t.Errorf("Put: %v", err)
			return
		}
		queuedGot, _ = queued.Get(ctx, "42")
	}()
	waitPending(t, queued, 1)
	queued.Open(sqliteOpenFunc)
	wg.Wait()
	t.Cleanup(func() { queued.Close() })

	// Issued after open.
	ready := openReadyStore(t)
	if err := ready.Put(ctx, item); err != nil {
		t.Fatalf("Put: %v", err)
	}
	readyGot, err := ready.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if queuedGot == nil || readyGot == nil {
		t.Fatal("expected both paths to find the item")
	}
	if *queuedGot != *readyGot {
		t.Errorf("queued result %+v differs from post-open result %+v", *queuedGot, *readyGot)
	}
}

func TestOpenFailureSurfacesUnavailable(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Queue an op, then fail the open; the queued op and later ops
	// must both see ErrUnavailable.
	var queuedErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		queuedErr = s.Put(ctx, model.Item{Barcode: "1", Name: "X"})
	}()
	waitPending(t, s, 1)

	s.Open(func() (repository.ItemRepository, error) {
		return nil, errors.New("engine blocked")
	})
	wg.Wait()

	if !errors.Is(queuedErr, ErrUnavailable) {
		t.Errorf("queued op error = %v, want ErrUnavailable", queuedErr)
	}
	if _, err := s.Get(ctx, "1"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("post-failure Get error = %v, want ErrUnavailable", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	s := New()
	var opens int
	var mu sync.Mutex

	openFn := func() (repository.ItemRepository, error) {
		mu.Lock()
		opens++
		mu.Unlock()
		return repository.NewSQLiteItemRepository(":memory:")
	}

	s.Open(openFn)
	s.Open(openFn)

	if _, err := s.Count(context.Background()); err != nil {
		t.Fatalf("Count: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	mu.Lock()
	defer mu.Unlock()
	if opens != 1 {
		t.Errorf("openFn ran %d times, want 1", opens)
	}
}

func TestFindFallsBackToName(t *testing.T) {
	s := openReadyStore(t)
	ctx := context.Background()

	item := model.Item{Barcode: "555", Name: "Butter", Expiry: "2024-05-05", Quantity: 1}
	if err := s.Put(ctx, item); err != nil {
		t.Fatalf("Put: %v", err)
	}

	byBarcode, err := s.Find(ctx, "555")
	if err != nil {
		t.Fatalf("Find by barcode: %v", err)
	}
	if byBarcode == nil || byBarcode.Name != "Butter" {
		t.Errorf("Find(555) = %+v, want Butter", byBarcode)
	}

	byName, err := s.Find(ctx, "Butter")
	if err != nil {
		t.Fatalf("Find by name: %v", err)
	}
	if byName == nil || byName.Barcode != "555" {
		t.Errorf("Find(Butter) = %+v, want barcode 555", byName)
	}

	missing, err := s.Find(ctx, "no-such-thing")
	if err != nil {
		t.Fatalf("Find missing: %v", err)
	}
	if missing != nil {
		t.Errorf("Find(no-such-thing) = %+v, want nil", missing)
	}
}

func TestDeleteThenGetAll(t *testing.T) {
	s := openReadyStore(t)
	ctx := context.Background()

	for _, item := range []model.Item{
		{Barcode: "1", Name: "A", Expiry: "2024-01-01", Quantity: 1},
		{Barcode: "2", Name: "B", Expiry: "2024-02-01", Quantity: 2},
	} {
		if err := s.Put(ctx, item); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	if err := s.Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 || all[0].Barcode != "2" {
		t.Errorf("GetAll after delete = %+v, want only barcode 2", all)
	}

	// Deleting the same barcode again is a no-op.
	if err := s.Delete(ctx, "1"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}
