package handler

import (
	"net/http"

	"expirytrack-api/internal/listview"
	"expirytrack-api/internal/service"
	"expirytrack-api/internal/spreadsheet"
	"expirytrack-api/pkg/apierror"
	"expirytrack-api/pkg/response"
)

// maxImportSize caps uploaded workbooks at 10 MiB.
const maxImportSize = 10 << 20

// SpreadsheetHandler handles bulk xlsx import and export.
type SpreadsheetHandler struct {
	inventory *service.InventoryService
	list      *listview.ListView
}

// NewSpreadsheetHandler creates a new spreadsheet handler.
func NewSpreadsheetHandler(inventory *service.InventoryService, list *listview.ListView) *SpreadsheetHandler {
	return &SpreadsheetHandler{
		inventory: inventory,
		list:      list,
	}
}

// Import handles POST /api/v1/items/import (multipart, field "file").
// Rows missing a barcode or a name are skipped silently; the response
// carries only the aggregate counts.
func (h *SpreadsheetHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		response.Error(w, apierror.BadRequest("invalid multipart body"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.Error(w, apierror.BadRequest("file field is required"))
		return
	}
	defer file.Close()

	rows, err := spreadsheet.ReadImportRows(file)
	if err != nil {
		response.Error(w, apierror.BadRequest("could not parse workbook: "+err.Error()))
		return
	}

	result, err := h.inventory.BulkImportStub(r.Context(), rows)
	if err != nil {
		response.Error(w, asAPIError(err))
		return
	}

	_ = h.list.Refresh(r.Context())
	response.OK(w, result)
}

// Export handles GET /api/v1/items/export: the active inventory as an
// xlsx download, TOTAL row included.
func (h *SpreadsheetHandler) Export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.inventory.ExportRows(r.Context())
	if err != nil {
		response.Error(w, asAPIError(err))
		return
	}
	if len(rows) == 0 {
		response.Error(w, apierror.NotFound("no active items to export"))
		return
	}

	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="inventory_export.xlsx"`)
	if err := spreadsheet.WriteExport(w, rows); err != nil {
		// Headers are already gone; nothing left to do but log via the
		// request logger's status.
		return
	}
}
