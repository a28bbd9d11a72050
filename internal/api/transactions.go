package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/ledger"
	"github.com/erazemk/zaloga/internal/model"
)

// TransactionsHandler handles the transaction logs: acquisitions, transfers,
// assignments and consumptions.
type TransactionsHandler struct {
	Ledger *ledger.Store
}

type createAcquisitionRequest struct {
	SiteID      string `json:"siteId"`
	ItemTypeID  string `json:"itemTypeId"`
	Quantity    int    `json:"quantity"`
	Date        string `json:"date"`
	OrderNumber string `json:"orderNumber"`
}

type createTransferRequest struct {
	FromSiteID  string               `json:"fromSiteId"`
	ToSiteID    string               `json:"toSiteId"`
	ItemTypeID  string               `json:"itemTypeId"`
	Quantity    int                  `json:"quantity"`
	Date        string               `json:"date"`
	Status      model.TransferStatus `json:"status"`
	OrderNumber string               `json:"orderNumber"`
	Notes       string               `json:"notes"`
}

type transferStatusRequest struct {
	Status model.TransferStatus `json:"status"`
}

type createAssignmentRequest struct {
	SiteID       string `json:"siteId"`
	ItemTypeID   string `json:"itemTypeId"`
	PersonID     string `json:"personId"`
	Quantity     int    `json:"quantity"`
	DateAssigned string `json:"dateAssigned"`
	AssignedTo   string `json:"assignedTo"`
}

type returnAssignmentRequest struct {
	Date string `json:"date"`
}

type createConsumptionRequest struct {
	SiteID       string `json:"siteId"`
	ItemTypeID   string `json:"itemTypeId"`
	Quantity     int    `json:"quantity"`
	Date         string `json:"date"`
	Reason       string `json:"reason"`
	AuthorizedBy string `json:"authorizedBy"`
}

func orToday(date string) string {
	if date == "" {
		return model.Today()
	}
	return date
}

// ListAcquisitions handles GET /api/acquisitions.
func (h *TransactionsHandler) ListAcquisitions(w http.ResponseWriter, r *http.Request) {
	f, ok := scopedFilter(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, ledger.ListAcquisitions(h.Ledger.Snapshot(), f))
}

// CreateAcquisition handles POST /api/acquisitions.
func (h *TransactionsHandler) CreateAcquisition(w http.ResponseWriter, r *http.Request) {
	var req createAcquisitionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireSite(w, r, req.SiteID) {
		return
	}

	a, err := h.Ledger.AddAcquisition(model.Acquisition{
		SiteID:      req.SiteID,
		ItemTypeID:  req.ItemTypeID,
		Quantity:    req.Quantity,
		Date:        orToday(req.Date),
		OrderNumber: req.OrderNumber,
	})
	if err != nil {
		ledgerError(w, err, "record acquisition")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("acquisition recorded", "user", claims.Username,
		"site", a.SiteID, "item_type", a.ItemTypeID, "quantity", a.Quantity)
	jsonResponse(w, http.StatusCreated, a)
}

// ListTransfers handles GET /api/transfers. The site filter matches either
// end of a transfer.
func (h *TransactionsHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	f, ok := scopedFilter(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, ledger.ListTransfers(h.Ledger.Snapshot(), f))
}

// CreateTransfer handles POST /api/transfers.
func (h *TransactionsHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Either end may request a transfer, but only the source site can send
	// stock out.
	sites := []string{req.FromSiteID, req.ToSiteID}
	if req.Status.DepletesSource() {
		sites = sites[:1]
	}
	if !requireSite(w, r, sites...) {
		return
	}

	t, err := h.Ledger.AddTransfer(model.Transfer{
		FromSiteID:  req.FromSiteID,
		ToSiteID:    req.ToSiteID,
		ItemTypeID:  req.ItemTypeID,
		Quantity:    req.Quantity,
		Date:        orToday(req.Date),
		Status:      req.Status,
		OrderNumber: req.OrderNumber,
		Notes:       req.Notes,
	})
	if err != nil {
		ledgerError(w, err, "create transfer")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("transfer created", "user", claims.Username,
		"item_type", t.ItemTypeID, "quantity", t.Quantity,
		"from", t.FromSiteID, "to", t.ToSiteID, "status", t.Status)
	jsonResponse(w, http.StatusCreated, t)
}

// UpdateTransferStatus handles PUT /api/transfers/{id}/status. Dispatching a
// pending transfer is reserved for the source site.
func (h *TransactionsHandler) UpdateTransferStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cur, ok := h.Ledger.Snapshot().Transfer(id)
	if !ok {
		jsonError(w, http.StatusNotFound, "transfer not found")
		return
	}
	if !requireSite(w, r, cur.FromSiteID, cur.ToSiteID) {
		return
	}

	var req transferStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status.DepletesSource() && !cur.Status.DepletesSource() && !requireSite(w, r, cur.FromSiteID) {
		return
	}

	t, err := h.Ledger.UpdateTransferStatus(id, req.Status)
	if err != nil {
		ledgerError(w, err, "update transfer")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("transfer status changed", "user", claims.Username, "transfer", t.ID,
		"from_status", cur.Status, "to_status", t.Status)
	jsonResponse(w, http.StatusOK, t)
}

// ListAssignments handles GET /api/assignments.
func (h *TransactionsHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	f, ok := scopedFilter(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, ledger.ListAssignments(h.Ledger.Snapshot(), f))
}

// CreateAssignment handles POST /api/assignments. New assignments are
// always active.
func (h *TransactionsHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireSite(w, r, req.SiteID) {
		return
	}

	a, err := h.Ledger.AddAssignment(model.Assignment{
		SiteID:       req.SiteID,
		ItemTypeID:   req.ItemTypeID,
		PersonID:     req.PersonID,
		Quantity:     req.Quantity,
		DateAssigned: orToday(req.DateAssigned),
		Status:       model.AssignmentActive,
		AssignedTo:   req.AssignedTo,
	})
	if err != nil {
		ledgerError(w, err, "create assignment")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("assignment created", "user", claims.Username,
		"item_type", a.ItemTypeID, "quantity", a.Quantity, "person", a.PersonID)
	jsonResponse(w, http.StatusCreated, a)
}

// ReturnAssignment handles POST /api/assignments/{id}/return. An empty body
// returns the assignment today.
func (h *TransactionsHandler) ReturnAssignment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cur, ok := h.Ledger.Snapshot().Assignment(id)
	if !ok {
		jsonError(w, http.StatusNotFound, "assignment not found")
		return
	}
	if !requireSite(w, r, cur.SiteID) {
		return
	}

	var req returnAssignmentRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	a, err := h.Ledger.ReturnAssignment(id, req.Date)
	if err != nil {
		ledgerError(w, err, "return assignment")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("assignment returned", "user", claims.Username, "assignment", a.ID, "date", a.DateReturned)
	jsonResponse(w, http.StatusOK, a)
}

// ListConsumptions handles GET /api/consumptions.
func (h *TransactionsHandler) ListConsumptions(w http.ResponseWriter, r *http.Request) {
	f, ok := scopedFilter(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, ledger.ListConsumptions(h.Ledger.Snapshot(), f))
}

// CreateConsumption handles POST /api/consumptions.
func (h *TransactionsHandler) CreateConsumption(w http.ResponseWriter, r *http.Request) {
	var req createConsumptionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireSite(w, r, req.SiteID) {
		return
	}

	c, err := h.Ledger.AddConsumption(model.Consumption{
		SiteID:       req.SiteID,
		ItemTypeID:   req.ItemTypeID,
		Quantity:     req.Quantity,
		Date:         orToday(req.Date),
		Reason:       req.Reason,
		AuthorizedBy: req.AuthorizedBy,
	})
	if err != nil {
		ledgerError(w, err, "record consumption")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("consumption recorded", "user", claims.Username,
		"site", c.SiteID, "item_type", c.ItemTypeID, "quantity", c.Quantity, "reason", c.Reason)
	jsonResponse(w, http.StatusCreated, c)
}
