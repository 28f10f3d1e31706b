/*
handlers.go - HTTP API handlers for reconciled inventory data

PURPOSE:
  Exposes import history, reconciled records and price changes over a
  read-only REST API.

ENDPOINTS:
  GET /api/runs?limit=N        Import runs, newest first (default 50)
  GET /api/items/{code}        Inventory item and its region prices
  GET /api/price-changes       Price changes since the last snapshot
  GET /api/pricelist           Pricelist CSV, effective today

ARCHITECTURE:
  Handler holds the store and logger. Each request that reads records
  opens its own session; sessions are never shared between requests.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid query parameters
  - 404: Item not found
  - 500: Storage errors (logged)

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/inventory-sync/export"
	"github.com/warp/inventory-sync/inventory"
	"github.com/warp/inventory-sync/pricing"
	"github.com/warp/inventory-sync/store/sqlite"
)

const defaultRunLimit = 50

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Log   *logrus.Logger
	Now   func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, log *logrus.Logger) *Handler {
	return &Handler{Store: store, Log: log, Now: time.Now}
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// ListRuns returns the import run history.
// GET /api/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.Runs(r.Context(), limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toRunDTO(run))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"runs": dtos})
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// GetItem returns one inventory item with its prices in every region.
// GET /api/items/{code}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	item, err := h.Store.InventoryItem(ctx, code)
	if errors.Is(err, sqlite.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Item not found", nil)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to get item", err)
		return
	}

	regions, err := h.Store.NewSession().PriceRegionItems().All(ctx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to get prices", err)
		return
	}
	var own []*inventory.PriceRegionItem
	for _, pr := range regions {
		if pr.InventoryItem.Code == code {
			own = append(own, pr)
		}
	}

	h.writeJSON(w, http.StatusOK, toItemDTO(item, own))
}

// =============================================================================
// PRICING HANDLERS
// =============================================================================

// ListPriceChanges compares current prices with the stored snapshot.
// GET /api/price-changes
func (h *Handler) ListPriceChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	was, err := h.Store.LatestSnapshots(ctx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}
	now, err := h.Store.NewSession().PriceRegionItems().All(ctx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load prices", err)
		return
	}

	changes := pricing.Changes(was, now)
	dtos := make([]PriceChangeDTO, 0, len(changes))
	for _, pc := range changes {
		dtos = append(dtos, toPriceChangeDTO(pc))
	}

	resp := map[string]any{"changes": dtos}
	if !was.TakenAt.IsZero() {
		resp["snapshot_taken_at"] = was.TakenAt.Format(time.RFC3339)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// DownloadPricelist streams the pricelist CSV.
// GET /api/pricelist
func (h *Handler) DownloadPricelist(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.NewSession().PriceRegionItems().All(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load prices", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="pricelist.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WritePricelist(w, items, h.Now()); err != nil {
		h.Log.WithError(err).Error("write pricelist")
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// writeJSON sends data as the response body. Headers are already sent when
// encoding fails, so the error can only be logged.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Log.WithError(err).Error("encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
		if status >= http.StatusInternalServerError {
			h.Log.WithError(err).Error(message)
		}
	}
	h.writeJSON(w, status, resp)
}
