// Package listview maintains the windowed list state behind the
// inventory table: a filtered, sorted working set of active items, a
// scroll position, and at most one row in edit mode. Only the visible
// slice of the working set is ever materialized per render, so the
// cost of a scroll or a keystroke stays O(visible rows) regardless of
// inventory size.
package listview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"expirytrack-api/internal/expiry"
	"expirytrack-api/internal/model"
	"expirytrack-api/internal/service"
	"expirytrack-api/pkg/apierror"
)

// Config holds the fixed list geometry.
type Config struct {
	RowHeight   int
	VisibleRows int
}

// DefaultConfig returns the default row geometry.
func DefaultConfig() Config {
	return Config{RowHeight: 44, VisibleRows: 30}
}

// Row is one renderable table row.
type Row struct {
	Index   int        `json:"index"`
	Item    model.Item `json:"item"`
	Expired bool       `json:"expired"` // classifier-derived, presentation only
	Editing bool       `json:"editing"`
}

// Window is the visible slice of the working set plus the offsets a
// renderer needs to keep the full-height scroll track without
// materializing every row.
type Window struct {
	First       int   `json:"first"`
	Rows        []Row `json:"rows"`
	TopOffset   int   `json:"top_offset"`
	TrackHeight int   `json:"track_height"`
	Total       int   `json:"total"`
}

// ListView is the session-scoped list state. All fields live on the
// struct; nothing is global.
type ListView struct {
	svc        *service.InventoryService
	classifier *expiry.Classifier
	config     Config

	mu           sync.Mutex
	active       []model.Item // the full active set, sorted by expiry
	working      []model.Item // active filtered by the current query
	filter       string
	scrollOffset int
	editing      string // barcode of the row in edit mode, or empty

	now func() time.Time
}

// New creates a list view over the inventory service. A zero config
// falls back to the defaults.
func New(svc *service.InventoryService, classifier *expiry.Classifier, config Config) *ListView {
	if config.RowHeight <= 0 || config.VisibleRows <= 0 {
		config = DefaultConfig()
	}
	return &ListView{
		svc:        svc,
		classifier: classifier,
		config:     config,
		now:        time.Now,
	}
}

// Refresh reloads the active set from the inventory service and
// re-applies the current filter.
func (v *ListView) Refresh(ctx context.Context) error {
	active, err := v.svc.ListActive(ctx)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = active
	v.applyFilter()
	return nil
}

// SetFilter recomputes the working set for the query and resets the
// scroll to the top. Matching is a case-insensitive substring test on
// the name, or a substring test on the barcode.
func (v *ListView) SetFilter(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = query
	v.applyFilter()
	v.scrollOffset = 0
}

// Filter returns the current filter query.
func (v *ListView) Filter() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Offset returns the current scroll offset.
func (v *ListView) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollOffset
}

// applyFilter rebuilds the working set. Caller holds v.mu.
func (v *ListView) applyFilter() {
	q := strings.ToLower(v.filter)
	working := make([]model.Item, 0, len(v.active))
	for _, item := range v.active {
		if q == "" || strings.Contains(strings.ToLower(item.Name), q) || strings.Contains(item.Barcode, q) {
			working = append(working, item)
		}
	}
	v.working = working
}

// Window computes the visible slice for a scroll offset. Out-of-range
// offsets clamp. The work done here is proportional to the visible
// row count, never to the working set size.
func (v *ListView) Window(scrollOffset int) Window {
	v.mu.Lock()
	defer v.mu.Unlock()

	if scrollOffset < 0 {
		scrollOffset = 0
	}
	v.scrollOffset = scrollOffset

	first := scrollOffset / v.config.RowHeight
	if first > len(v.working) {
		first = len(v.working)
	}
	count := v.config.VisibleRows
	if first+count > len(v.working) {
		count = len(v.working) - first
	}

	today := v.now()
	rows := make([]Row, 0, count)
	for i := first; i < first+count; i++ {
		item := v.working[i]
		rows = append(rows, Row{
			Index:   i,
			Item:    item,
			Expired: v.classifier.IsExpired(today, item.Expiry),
			Editing: v.editing == item.Barcode,
		})
	}

	return Window{
		First:       first,
		Rows:        rows,
		TopOffset:   first * v.config.RowHeight,
		TrackHeight: len(v.working) * v.config.RowHeight,
		Total:       len(v.working),
	}
}

// BeginEdit marks one row editable; any previous edit is dropped.
func (v *ListView) BeginEdit(barcode string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editing = barcode
}

// CancelEdit leaves edit mode without saving.
func (v *ListView) CancelEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editing = ""
}

// EditingBarcode returns the barcode of the row in edit mode, or empty.
func (v *ListView) EditingBarcode() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editing
}

// CommitEdit validates the editable fields (expiry and quantity),
// persists them, and leaves edit mode. On a validation failure the row
// stays editable and nothing is written.
func (v *ListView) CommitEdit(ctx context.Context, barcode, expiryDate string, quantity int) error {
	var details []apierror.FieldError
	if expiryDate == "" {
		details = append(details, apierror.FieldError{Field: "expiry", Message: "expiry is required"})
	} else if _, err := expiry.ParseDate(expiryDate); err != nil {
		details = append(details, apierror.FieldError{Field: "expiry", Message: "expiry must be a YYYY-MM-DD date"})
	}
	if quantity <= 0 {
		details = append(details, apierror.FieldError{Field: "quantity", Message: "quantity must be greater than zero"})
	}
	if len(details) > 0 {
		return apierror.ValidationError("invalid values", details...)
	}

	item, err := v.svc.Search(ctx, barcode)
	if err != nil {
		return err
	}
	if item == nil {
		return apierror.NotFound(fmt.Sprintf("item %s not found", barcode))
	}

	item.Expiry = expiryDate
	item.Quantity = quantity
	if err := v.svc.Save(ctx, *item); err != nil {
		return err
	}

	v.mu.Lock()
	v.editing = ""
	v.mu.Unlock()

	return v.Refresh(ctx)
}
