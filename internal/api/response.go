package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/access"
	"github.com/erazemk/zaloga/internal/ledger"
	"github.com/erazemk/zaloga/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// ledgerStatus maps a ledger error to an HTTP status code.
func ledgerStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalid),
		errors.Is(err, ledger.ErrUnknownSite),
		errors.Is(err, ledger.ErrUnknownItemType),
		errors.Is(err, ledger.ErrUnknownPerson):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ledgerError writes the response for a failed ledger mutation. Client
// errors are echoed back; anything else is logged and hidden.
func ledgerError(w http.ResponseWriter, err error, what string) {
	status := ledgerStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("failed to "+what, "error", err)
		jsonError(w, status, "failed to "+what)
		return
	}
	jsonError(w, status, err.Error())
}

// parseFilter reads the optional siteId, itemTypeId, startDate and endDate
// query parameters.
func parseFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	f := ledger.Filter{
		SiteID:     q.Get("siteId"),
		ItemTypeID: q.Get("itemTypeId"),
		StartDate:  q.Get("startDate"),
		EndDate:    q.Get("endDate"),
	}
	for _, d := range []string{f.StartDate, f.EndDate} {
		if d != "" && !model.ValidDate(d) {
			return ledger.Filter{}, errors.New("dates must be in YYYY-MM-DD format")
		}
	}
	return f, nil
}

// scopedFilter parses the filter and pins its site to what the caller may
// see. It writes the error response itself and returns false on failure.
func scopedFilter(w http.ResponseWriter, r *http.Request) (ledger.Filter, bool) {
	f, err := parseFilter(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return ledger.Filter{}, false
	}
	site, ok := access.ScopeSite(GetIdentity(r.Context()), f.SiteID)
	if !ok {
		jsonError(w, http.StatusForbidden, "no site assigned")
		return ledger.Filter{}, false
	}
	f.SiteID = site
	return f, true
}

// requireSite rejects a write that touches a site the caller does not own.
func requireSite(w http.ResponseWriter, r *http.Request, siteIDs ...string) bool {
	id := GetIdentity(r.Context())
	for _, s := range siteIDs {
		if id.OwnsSite(s) {
			return true
		}
	}
	jsonError(w, http.StatusForbidden, "insufficient permissions for this site")
	return false
}
