package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"expirytrack-api/internal/expiry"
	"expirytrack-api/internal/model"
	"expirytrack-api/internal/store"
	"expirytrack-api/pkg/apierror"
)

// Updatable item fields.
const (
	FieldDescription = "description"
	FieldExpiry      = "expiry"
	FieldQuantity    = "quantity"
)

// InventoryService applies the domain rules on top of the store:
// required-field validation before writes, active-set filtering, and
// dashboard recomputation after every mutation.
type InventoryService struct {
	store     *store.Store
	dashboard *Dashboard
}

// NewInventoryService creates a new inventory service.
// Returns nil if st is nil (required dependency).
func NewInventoryService(st *store.Store) *InventoryService {
	if st == nil {
		return nil
	}
	return &InventoryService{store: st}
}

// SetDashboard wires the dashboard recomputed after each mutation.
func (s *InventoryService) SetDashboard(d *Dashboard) {
	s.dashboard = d
}

// validateItem returns field-level errors for an incomplete candidate.
func validateItem(item model.Item) []apierror.FieldError {
	var details []apierror.FieldError
	if strings.TrimSpace(item.Name) == "" {
		details = append(details, apierror.FieldError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(item.Barcode) == "" {
		details = append(details, apierror.FieldError{Field: "barcode", Message: "barcode is required"})
	}
	if item.Expiry == "" {
		details = append(details, apierror.FieldError{Field: "expiry", Message: "expiry is required"})
	} else if _, err := expiry.ParseDate(item.Expiry); err != nil {
		details = append(details, apierror.FieldError{Field: "expiry", Message: "expiry must be a YYYY-MM-DD date"})
	}
	if item.Quantity <= 0 {
		details = append(details, apierror.FieldError{Field: "quantity", Message: "quantity must be greater than zero"})
	}
	return details
}

// Save validates the candidate and upserts it by barcode. An invalid
// candidate never reaches the store.
func (s *InventoryService) Save(ctx context.Context, item model.Item) error {
	if details := validateItem(item); len(details) > 0 {
		return apierror.ValidationError("complete all required fields", details...)
	}

	if err := s.store.Put(ctx, item); err != nil {
		return err
	}

	s.recompute(ctx)
	return nil
}

// Update applies a single field mutation to an existing item and
// resaves it. Read-modify-write, last write wins. Quantity values are
// coerced from their string form.
func (s *InventoryService) Update(ctx context.Context, barcode, field, value string) (*model.Item, error) {
	item, err := s.store.Get(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apierror.NotFound(fmt.Sprintf("item %s not found", barcode))
	}

	switch field {
	case FieldDescription:
		item.Description = value
	case FieldExpiry:
		if value != "" {
			if _, err := expiry.ParseDate(value); err != nil {
				return nil, apierror.ValidationError("invalid values",
					apierror.FieldError{Field: "expiry", Message: "expiry must be a YYYY-MM-DD date"})
			}
		}
		item.Expiry = value
	case FieldQuantity:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, apierror.ValidationError("invalid values",
				apierror.FieldError{Field: "quantity", Message: "quantity must be a non-negative integer"})
		}
		item.Quantity = n
	default:
		return nil, apierror.BadRequest(fmt.Sprintf("unknown field %q", field))
	}

	if err := s.store.Put(ctx, *item); err != nil {
		return nil, err
	}

	s.recompute(ctx)
	return item, nil
}

// Delete permanently removes an item. The confirmed flag carries the
// UI collaborator's explicit confirmation; without it nothing is
// touched and deleted is false.
func (s *InventoryService) Delete(ctx context.Context, barcode string, confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}

	item, err := s.store.Get(ctx, barcode)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, apierror.NotFound(fmt.Sprintf("item %s not found", barcode))
	}

	if err := s.store.Delete(ctx, barcode); err != nil {
		return false, err
	}

	s.recompute(ctx)
	return true, nil
}

// Search resolves a scanned or typed identifier to an item: exact
// barcode first, then first name match. Returns (nil, nil) when
// unknown.
func (s *InventoryService) Search(ctx context.Context, query string) (*model.Item, error) {
	return s.store.Find(ctx, query)
}

// All returns every stored item, stubs and exhausted items included.
func (s *InventoryService) All(ctx context.Context) ([]model.Item, error) {
	return s.store.GetAll(ctx)
}

// ListActive returns the active items (dated, quantity above zero)
// sorted ascending by expiry date. Items whose dates do not parse sort
// last.
func (s *InventoryService) ListActive(ctx context.Context) ([]model.Item, error) {
	items, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]model.Item, 0, len(items))
	for _, item := range items {
		if item.Active() {
			active = append(active, item)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return expiryBefore(active[i].Expiry, active[j].Expiry)
	})
	return active, nil
}

// expiryBefore orders expiry dates ascending, unparsable dates last.
func expiryBefore(a, b string) bool {
	ta, errA := expiry.ParseDate(a)
	tb, errB := expiry.ParseDate(b)
	switch {
	case errA == nil && errB == nil:
		return ta.Before(tb)
	case errA == nil:
		return true
	default:
		return false
	}
}

// BulkImportStub upserts one incomplete item per row that carries both
// a barcode and a name: quantity zero, no expiry, awaiting physical
// count and dating. Rows missing either field are skipped silently and
// only counted. A failure partway leaves earlier rows committed;
// import is idempotent per barcode, so retrying is safe.
func (s *InventoryService) BulkImportStub(ctx context.Context, rows []model.ImportRow) (model.ImportResult, error) {
	var result model.ImportResult
	for _, row := range rows {
		if strings.TrimSpace(row.Barcode) == "" || strings.TrimSpace(row.Name) == "" {
			result.Skipped++
			continue
		}

		item := model.Item{
			Barcode:     row.Barcode,
			Name:        row.Name,
			Description: row.Description,
			Expiry:      "",
			Quantity:    0,
		}
		if err := s.store.Put(ctx, item); err != nil {
			return result, err
		}
		result.Imported++
	}

	s.recompute(ctx)
	return result, nil
}

// ExportRows returns the active items as spreadsheet rows, sorted by
// expiry, with a trailing TOTAL row summing quantity. Empty when there
// is nothing active to export.
func (s *InventoryService) ExportRows(ctx context.Context) ([]model.ExportRow, error) {
	active, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	rows := make([]model.ExportRow, 0, len(active)+1)
	total := 0
	for _, item := range active {
		total += item.Quantity
		rows = append(rows, model.ExportRow{
			Name:        item.Name,
			Barcode:     item.Barcode,
			Description: item.Description,
			Expiry:      item.Expiry,
			Quantity:    item.Quantity,
		})
	}
	rows = append(rows, model.ExportRow{Name: "TOTAL", Quantity: total})
	return rows, nil
}

// recompute refreshes the dashboard after a mutation. Counters are
// always rebuilt from a full scan, never maintained incrementally, so
// they cannot drift.
func (s *InventoryService) recompute(ctx context.Context) {
	if s.dashboard == nil {
		return
	}
	if _, err := s.dashboard.Recompute(ctx); err != nil {
		log.Printf("dashboard recompute failed: %v", err)
	}
}
