package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"expirytrack-api/internal/listview"
	"expirytrack-api/internal/model"
	"expirytrack-api/internal/service"
	"expirytrack-api/internal/store"
	"expirytrack-api/pkg/apierror"
	"expirytrack-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// barcodeMaxLen caps scanner input: decoders occasionally append
// checksum noise past the 12 data characters.
const barcodeMaxLen = 12

// ItemHandler handles item-related HTTP requests.
type ItemHandler struct {
	inventory *service.InventoryService
	list      *listview.ListView
}

// NewItemHandler creates a new item handler.
func NewItemHandler(inventory *service.InventoryService, list *listview.ListView) *ItemHandler {
	return &ItemHandler{
		inventory: inventory,
		list:      list,
	}
}

// asAPIError maps service and store errors onto the response taxonomy.
func asAPIError(err error) error {
	if errors.Is(err, store.ErrUnavailable) {
		return apierror.StorageUnavailable(err.Error())
	}
	return err
}

// Save handles POST /api/v1/items
func (h *ItemHandler) Save(w http.ResponseWriter, r *http.Request) {
	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	if err := h.inventory.Save(r.Context(), item); err != nil {
		response.Error(w, asAPIError(err))
		return
	}

	h.refreshList(r)
	response.Created(w, item)
}

// List handles GET /api/v1/items?q=...&offset=...
// It returns the visible window of the filtered working set, never the
// full list.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.list.Refresh(r.Context()); err != nil {
		response.Error(w, asAPIError(err))
		return
	}

	query := r.URL.Query()
	if query.Has("q") {
		h.list.SetFilter(query.Get("q"))
	}

	offset := h.list.Offset()
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, apierror.BadRequest("offset must be an integer"))
			return
		}
		offset = parsed
	}

	response.OK(w, h.list.Window(offset))
}

// All handles GET /api/v1/items/all: the raw store contents, stubs
// and exhausted items included.
func (h *ItemHandler) All(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.All(r.Context())
	if err != nil {
		response.Error(w, asAPIError(err))
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	response.OK(w, items)
}

// Search handles GET /api/v1/items/search?q=...
// The query resolves as an exact barcode first, then as a name.
func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.Error(w, apierror.BadRequest("q is required"))
		return
	}

	h.lookup(w, r, query)
}

// Scan handles GET /api/v1/items/scan?code=...
// This is the scanner collaborator's entry point: the decoded string
// is truncated to the barcode length before the ordinary lookup.
func (h *ItemHandler) Scan(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		response.Error(w, apierror.BadRequest("code is required"))
		return
	}
	if len(code) > barcodeMaxLen {
		code = code[:barcodeMaxLen]
	}

	h.lookup(w, r, code)
}

func (h *ItemHandler) lookup(w http.ResponseWriter, r *http.Request, query string) {
	item, err := h.inventory.Search(r.Context(), query)
	if err != nil {
		response.Error(w, asAPIError(err))
		return
	}
	if item == nil {
		response.Error(w, apierror.NotFound("no item matches "+query))
		return
	}
	response.OK(w, item)
}

// updateRequest is the body of a single-field update.
type updateRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Update handles PATCH /api/v1/items/{barcode}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	item, err := h.inventory.Update(r.Context(), barcode, req.Field, req.Value)
	if err != nil {
		response.Error(w, asAPIError(err))
		return
	}

	h.refreshList(r)
	response.OK(w, item)
}

// Delete handles DELETE /api/v1/items/{barcode}?confirm=true
// Without confirm=true nothing is touched; the UI collaborator is
// responsible for asking the user.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")
	confirmed := r.URL.Query().Get("confirm") == "true"

	deleted, err := h.inventory.Delete(r.Context(), barcode, confirmed)
	if err != nil {
		response.Error(w, asAPIError(err))
		return
	}

	if deleted {
		h.refreshList(r)
	}
	response.OK(w, map[string]interface{}{"deleted": deleted})
}

// BeginEdit handles POST /api/v1/items/{barcode}/edit
func (h *ItemHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	h.list.BeginEdit(chi.URLParam(r, "barcode"))
	response.OK(w, map[string]interface{}{"editing": h.list.EditingBarcode()})
}

// CancelEdit handles DELETE /api/v1/items/{barcode}/edit
func (h *ItemHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.list.CancelEdit()
	response.NoContent(w)
}

// commitEditRequest is the body of an edit commit.
type commitEditRequest struct {
	Expiry   string `json:"expiry"`
	Quantity int    `json:"quantity"`
}

// CommitEdit handles PUT /api/v1/items/{barcode}/edit
// A validation failure leaves the row in edit mode.
func (h *ItemHandler) CommitEdit(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")

	var req commitEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	if err := h.list.CommitEdit(r.Context(), barcode, req.Expiry, req.Quantity); err != nil {
		response.Error(w, asAPIError(err))
		return
	}

	response.OK(w, map[string]interface{}{"barcode": barcode})
}

// refreshList reloads the working set after a mutation. A failure only
// leaves the window stale until the next List call, so it is ignored.
func (h *ItemHandler) refreshList(r *http.Request) {
	_ = h.list.Refresh(r.Context())
}
