package model

import "time"

// Item is the sole persisted entity, keyed by barcode.
type Item struct {
	Barcode     string `json:"barcode"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Expiry      string `json:"expiry"`   // ISO date (2006-01-02), empty = not yet dated
	Quantity    int    `json:"quantity"` // zero = exhausted, not deleted
}

// Active reports whether the item belongs to the active inventory view:
// dated and not exhausted. Stub items stay stored but are never listed
// or counted.
func (i Item) Active() bool {
	return i.Expiry != "" && i.Quantity > 0
}

// ImportRow is a single spreadsheet row as consumed by bulk import.
type ImportRow struct {
	Barcode     string
	Name        string
	Description string
}

// ExportRow is a single spreadsheet row as produced by export.
type ExportRow struct {
	Name        string
	Barcode     string
	Description string
	Expiry      string
	Quantity    int
}

// ImportResult summarizes a bulk import run. Skipped rows are counted
// in aggregate, never reported individually.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// DashboardCounts holds the derived expiry-bucket counters.
type DashboardCounts struct {
	Expired      int       `json:"expired"`
	ExpiringSoon int       `json:"expiring_soon"`
	ToReturn     int       `json:"to_return"`
	ComputedAt   time.Time `json:"computed_at"`
}
