package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/zaloga/internal/archive"
	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/ledger"
)

// Archiver uploads a copy of the ledger.
type Archiver interface {
	Archive(ctx context.Context, snap ledger.Snapshot) (archive.Result, error)
}

// AdminHandler handles maintenance endpoints.
type AdminHandler struct {
	DB       *db.DB
	Ledger   *ledger.Store
	Archiver Archiver
}

// Archive handles POST /api/admin/archive. Pending sync jobs are flushed
// first so the archive matches what has been written to the database.
func (h *AdminHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.Archiver == nil {
		jsonError(w, http.StatusServiceUnavailable, "archive storage not configured")
		return
	}

	h.Ledger.Flush()
	res, err := h.Archiver.Archive(r.Context(), h.Ledger.Snapshot())
	if err != nil {
		slog.Error("failed to archive ledger", "error", err)
		jsonError(w, http.StatusBadGateway, "failed to archive ledger")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("archive requested", "user", claims.Username, "prefix", res.Prefix)
	jsonResponse(w, http.StatusCreated, res)
}

// Health handles GET /healthz.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		jsonError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
