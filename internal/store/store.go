// Package store wraps an ItemRepository behind an asynchronous
// readiness gate. Opening the backing engine happens in the
// background; operations issued before the open completes are queued
// and replayed in submission order exactly once, so callers never
// check readiness themselves.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"expirytrack-api/internal/model"
	"expirytrack-api/internal/repository"
)

// ErrUnavailable is returned for every operation, queued or later,
// once the backing engine fails to open. The failure is permanent for
// the session; there is no retry.
var ErrUnavailable = errors.New("storage unavailable")

// OpenFunc constructs the backing repository. It runs once, in the
// background, on the first call to Open.
type OpenFunc func() (repository.ItemRepository, error)

const (
	stateOpening = iota
	stateReady
	stateFailed
)

// Store is the readiness-gated item store. The zero value (or New) is
// usable immediately: operations block, queued, until Open settles.
type Store struct {
	mu      sync.Mutex
	state   int
	repo    repository.ItemRepository
	openErr error
	opened  bool
	pending []func()
}

// New creates a store that is not yet open.
func New() *Store {
	return &Store{}
}

// Open starts opening the backing repository. Idempotent: only the
// first call does anything. When the open settles, queued operations
// are replayed in the order they were submitted.
func (s *Store) Open(openFn OpenFunc) {
	s.mu.Lock()
	if s.opened {
		s.mu.Unlock()
		return
	}
	s.opened = true
	s.mu.Unlock()

	go func() {
		repo, err := openFn()

		s.mu.Lock()
		if err != nil {
			s.state = stateFailed
			s.openErr = err
		} else {
			s.state = stateReady
			s.repo = repo
		}
		pending := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, replay := range pending {
			replay()
		}
	}()
}

// do runs fn against the repository, queueing it while the store is
// still opening. The caller's context only bounds the wait: once
// queued, the operation still runs on replay (no cancellation after
// submission), with the cancellation stripped from its context.
func (s *Store) do(ctx context.Context, fn func(ctx context.Context, repo repository.ItemRepository) error) error {
	s.mu.Lock()
	switch s.state {
	case stateReady:
		repo := s.repo
		s.mu.Unlock()
		return fn(ctx, repo)
	case stateFailed:
		err := s.openErr
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	done := make(chan error, 1)
	replayCtx := context.WithoutCancel(ctx)
	s.pending = append(s.pending, func() {
		s.mu.Lock()
		failed := s.state == stateFailed
		openErr := s.openErr
		repo := s.repo
		s.mu.Unlock()

		if failed {
			done <- fmt.Errorf("%w: %v", ErrUnavailable, openErr)
			return
		}
		done <- fn(replayCtx, repo)
	})
	s.mu.Unlock()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Put upserts the item by barcode. It returns only after the write is
// durable and visible to subsequent reads.
func (s *Store) Put(ctx context.Context, item model.Item) error {
	return s.do(ctx, func(ctx context.Context, repo repository.ItemRepository) error {
		return repo.Upsert(ctx, item)
	})
}

// Get returns the item with the exact barcode, or (nil, nil) when
// absent.
func (s *Store) Get(ctx context.Context, barcode string) (*model.Item, error) {
	var item *model.Item
	err := s.do(ctx, func(ctx context.Context, repo repository.ItemRepository) error {
		got, err := repo.Get(ctx, barcode)
		item = got
		return err
	})
	return item, err
}

// Find resolves a search key: exact barcode first, then the first
// case-sensitive name match. This is the lookup path behind the search
// field, which accepts either identifier. Returns (nil, nil) when
// neither matches.
func (s *Store) Find(ctx context.Context, key string) (*model.Item, error) {
	var item *model.Item
	err := s.do(ctx, func(ctx context.Context, repo repository.ItemRepository) error {
		got, err := repo.Get(ctx, key)
		if err != nil {
			return err
		}
		if got == nil {
			got, err = repo.GetByName(ctx, key)
			if err != nil {
				return err
			}
		}
		item = got
		return nil
	})
	return item, err
}

// GetAll returns every stored item, active or not, in storage
// iteration order.
func (s *Store) GetAll(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := s.do(ctx, func(ctx context.Context, repo repository.ItemRepository) error {
		got, err := repo.GetAll(ctx)
		items = got
		return err
	})
	return items, err
}

// Delete removes the record for barcode; deleting an absent barcode is
// a no-op.
func (s *Store) Delete(ctx context.Context, barcode string) error {
	return s.do(ctx, func(ctx context.Context, repo repository.ItemRepository) error {
		return repo.Delete(ctx, barcode)
	})
}

// Count returns the number of stored items.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.do(ctx, func(ctx context.Context, repo repository.ItemRepository) error {
		got, err := repo.Count(ctx)
		count = got
		return err
	})
	return count, err
}

// Close closes the backing repository if it opened successfully.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateReady {
		return s.repo.Close()
	}
	return nil
}
