package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/zaloga/internal/access"
	"github.com/erazemk/zaloga/internal/ledger"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/report"
)

// ViewsHandler serves the derived views: inventory, available quantity and
// metrics.
type ViewsHandler struct {
	Ledger *ledger.Store
}

type availableResponse struct {
	SiteID     string `json:"siteId"`
	ItemTypeID string `json:"itemTypeId"`
	Available  int    `json:"available"`
}

type metricsResponse struct {
	Filter  metricsFilter `json:"filter"`
	Metrics model.Metrics `json:"metrics"`
}

type metricsFilter struct {
	SiteID     string `json:"siteId,omitempty"`
	ItemTypeID string `json:"itemTypeId,omitempty"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
}

type movementsResponse struct {
	Metrics model.Metrics `json:"metrics"`
	ledger.Movements
}

// inventoryRows builds the scoped inventory view for a request.
func (h *ViewsHandler) inventoryRows(w http.ResponseWriter, r *http.Request) ([]model.InventoryRow, bool) {
	q := r.URL.Query()
	site, ok := access.ScopeSite(GetIdentity(r.Context()), q.Get("siteId"))
	if !ok {
		jsonError(w, http.StatusForbidden, "no site assigned")
		return nil, false
	}
	category := model.Category(q.Get("category"))
	if category != "" && !category.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid category")
		return nil, false
	}

	rows := ledger.InventorySnapshot(h.Ledger.Snapshot(), ledger.InventoryFilter{
		SiteID:   site,
		Category: category,
		Search:   q.Get("search"),
	})
	if rows == nil {
		rows = []model.InventoryRow{}
	}
	return rows, true
}

// Inventory handles GET /api/inventory.
func (h *ViewsHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.inventoryRows(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, rows)
}

// Export handles GET /api/inventory/export.
func (h *ViewsHandler) Export(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.inventoryRows(w, r)
	if !ok {
		return
	}
	data, err := report.InventoryWorkbook(rows)
	if err != nil {
		slog.Error("failed to build inventory workbook", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export inventory")
		return
	}
	writeWorkbook(w, "inventory", data)
}

// Available handles GET /api/inventory/available. It reports the clamped
// quantity that can still be transferred, assigned or consumed.
func (h *ViewsHandler) Available(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	itemTypeID := q.Get("itemTypeId")
	site, ok := access.ScopeSite(GetIdentity(r.Context()), q.Get("siteId"))
	if !ok {
		jsonError(w, http.StatusForbidden, "no site assigned")
		return
	}
	if site == "" || itemTypeID == "" {
		jsonError(w, http.StatusBadRequest, "siteId and itemTypeId required")
		return
	}

	jsonResponse(w, http.StatusOK, availableResponse{
		SiteID:     site,
		ItemTypeID: itemTypeID,
		Available:  ledger.AvailableQuantity(h.Ledger.Snapshot(), site, itemTypeID),
	})
}

// Metrics handles GET /api/metrics.
func (h *ViewsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	f, ok := scopedFilter(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, metricsResponse{
		Filter: metricsFilter{
			SiteID:     f.SiteID,
			ItemTypeID: f.ItemTypeID,
			StartDate:  f.StartDate,
			EndDate:    f.EndDate,
		},
		Metrics: ledger.ComputeMetrics(h.Ledger.Snapshot(), f),
	})
}

// Movements handles GET /api/metrics/movements. With format=xlsx the
// response is a workbook instead of JSON.
func (h *ViewsHandler) Movements(w http.ResponseWriter, r *http.Request) {
	f, ok := scopedFilter(w, r)
	if !ok {
		return
	}
	snap := h.Ledger.Snapshot()
	m := ledger.ComputeMetrics(snap, f)
	mv := ledger.ComputeMovements(snap, f)

	switch r.URL.Query().Get("format") {
	case "", "json":
		jsonResponse(w, http.StatusOK, movementsResponse{Metrics: m, Movements: mv})
	case "xlsx":
		data, err := report.MovementsWorkbook(m, mv)
		if err != nil {
			slog.Error("failed to build movements workbook", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to export movements")
			return
		}
		writeWorkbook(w, "movements", data)
	default:
		jsonError(w, http.StatusBadRequest, "format must be json or xlsx")
	}
}

func writeWorkbook(w http.ResponseWriter, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format(model.DateLayout))
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
