package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"expirytrack-api/internal/cache"
	"expirytrack-api/internal/expiry"
	"expirytrack-api/internal/model"
	"expirytrack-api/internal/store"
)

// countsCacheKey is where serialized dashboard counters live in the
// cache layer.
const countsCacheKey = "expirytrack:dashboard:counts"

// Dashboard derives the expiry-bucket counters from a full store scan.
// The active-item predicate is the same one ListActive uses, so the
// dashboard and the list can never disagree about what counts.
type Dashboard struct {
	store      *store.Store
	classifier *expiry.Classifier
	cache      cache.Cache
	cacheTTL   time.Duration

	mu     sync.RWMutex
	counts model.DashboardCounts
	valid  bool

	now func() time.Time
}

// NewDashboard creates a dashboard. The cache is optional.
func NewDashboard(st *store.Store, classifier *expiry.Classifier, c cache.Cache, cacheTTL time.Duration) *Dashboard {
	return &Dashboard{
		store:      st,
		classifier: classifier,
		cache:      c,
		cacheTTL:   cacheTTL,
		now:        time.Now,
	}
}

// Recompute scans the store and rebuilds all bucket counters.
func (d *Dashboard) Recompute(ctx context.Context) (model.DashboardCounts, error) {
	items, err := d.store.GetAll(ctx)
	if err != nil {
		return model.DashboardCounts{}, err
	}

	today := d.now()
	counts := model.DashboardCounts{ComputedAt: today}
	for _, item := range items {
		if !item.Active() {
			continue
		}
		bucket, ok := d.classifier.Classify(today, item.Expiry)
		if !ok {
			continue
		}
		switch bucket {
		case expiry.Expired:
			counts.Expired++
		case expiry.ExpiringSoon:
			counts.ExpiringSoon++
		case expiry.ToReturn:
			counts.ToReturn++
		}
	}

	d.mu.Lock()
	d.counts = counts
	d.valid = true
	d.mu.Unlock()

	if d.cache != nil {
		if data, err := json.Marshal(counts); err == nil {
			_ = d.cache.Set(ctx, countsCacheKey, data, d.cacheTTL)
		}
	}

	return counts, nil
}

// Counts returns the latest counters, consulting the cache and
// recomputing when nothing is cached yet.
func (d *Dashboard) Counts(ctx context.Context) (model.DashboardCounts, error) {
	d.mu.RLock()
	if d.valid {
		counts := d.counts
		d.mu.RUnlock()
		return counts, nil
	}
	d.mu.RUnlock()

	if d.cache != nil {
		if data, err := d.cache.Get(ctx, countsCacheKey); err == nil {
			var counts model.DashboardCounts
			if json.Unmarshal(data, &counts) == nil {
				d.mu.Lock()
				d.counts = counts
				d.valid = true
				d.mu.Unlock()
				return counts, nil
			}
		}
	}

	return d.Recompute(ctx)
}
