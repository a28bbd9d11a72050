package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/zaloga/internal/access"
	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/imaging"
	"github.com/erazemk/zaloga/internal/ledger"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// CatalogHandler handles sites, item types and personnel.
type CatalogHandler struct {
	DB     *db.DB
	Ledger *ledger.Store
}

type createSiteRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type createItemTypeRequest struct {
	Name        string         `json:"name"`
	Category    model.Category `json:"category"`
	Description string         `json:"description"`
}

type createPersonRequest struct {
	Name   string `json:"name"`
	Rank   string `json:"rank"`
	SiteID string `json:"siteId"`
}

// ListSites handles GET /api/sites. Non-admins only see their own site.
func (h *CatalogHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	site, ok := access.ScopeSite(GetIdentity(r.Context()), "")
	if !ok {
		jsonError(w, http.StatusForbidden, "no site assigned")
		return
	}

	sites := []model.Site{}
	for _, s := range h.Ledger.Snapshot().Sites {
		if site == "" || s.ID == site {
			sites = append(sites, s)
		}
	}
	jsonResponse(w, http.StatusOK, sites)
}

// GetSite handles GET /api/sites/{id}. Non-admins may only read their own
// site.
func (h *CatalogHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !GetIdentity(r.Context()).OwnsSite(id) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	site, ok := h.Ledger.Snapshot().Site(id)
	if !ok {
		jsonError(w, http.StatusNotFound, "site not found")
		return
	}
	jsonResponse(w, http.StatusOK, site)
}

// CreateSite handles POST /api/sites.
func (h *CatalogHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req createSiteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.Ledger.AddSite(model.Site{Name: req.Name, Location: req.Location})
	if err != nil {
		ledgerError(w, err, "create site")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("site created", "user", claims.Username, "site", site.Name)
	jsonResponse(w, http.StatusCreated, site)
}

// ListItemTypes handles GET /api/item-types. An optional category query
// parameter narrows the list.
func (h *CatalogHandler) ListItemTypes(w http.ResponseWriter, r *http.Request) {
	category := model.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid category")
		return
	}

	items := []model.ItemType{}
	for _, it := range h.Ledger.Snapshot().ItemTypes {
		if category == "" || it.Category == category {
			items = append(items, it)
		}
	}
	jsonResponse(w, http.StatusOK, items)
}

// CreateItemType handles POST /api/item-types.
func (h *CatalogHandler) CreateItemType(w http.ResponseWriter, r *http.Request) {
	var req createItemTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	it, err := h.Ledger.AddItemType(model.ItemType{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		ledgerError(w, err, "create item type")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item type created", "user", claims.Username, "item_type", it.Name, "category", it.Category)
	jsonResponse(w, http.StatusCreated, it)
}

// UploadImage handles PUT /api/item-types/{id}/image. The body is either
// the raw image or a multipart form with an "image" file.
func (h *CatalogHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.Ledger.Snapshot().ItemType(id); !ok {
		jsonError(w, http.StatusNotFound, "item type not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1<<20)
	body := r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
			jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
			return
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			jsonError(w, http.StatusBadRequest, "image file required")
			return
		}
		defer file.Close()
		body = file
	}

	photo, err := imaging.Process(body)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrUnsupportedFormat):
			jsonError(w, http.StatusUnsupportedMediaType, "image must be JPEG or PNG")
		case errors.Is(err, imaging.ErrTooLarge):
			jsonError(w, http.StatusRequestEntityTooLarge, "image too large")
		default:
			jsonError(w, http.StatusBadRequest, "invalid image")
		}
		return
	}

	if err := store.SetItemTypeImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		slog.Error("failed to save image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item type image uploaded", "user", claims.Username, "item_type", id,
		"width", photo.Width, "height", photo.Height)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/item-types/{id}/image.
func (h *CatalogHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetItemTypeImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// ListPersonnel handles GET /api/personnel.
func (h *CatalogHandler) ListPersonnel(w http.ResponseWriter, r *http.Request) {
	site, ok := access.ScopeSite(GetIdentity(r.Context()), r.URL.Query().Get("siteId"))
	if !ok {
		jsonError(w, http.StatusForbidden, "no site assigned")
		return
	}
	jsonResponse(w, http.StatusOK, ledger.ListPersonnel(h.Ledger.Snapshot(), site))
}

// CreatePerson handles POST /api/personnel.
func (h *CatalogHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireSite(w, r, req.SiteID) {
		return
	}

	p, err := h.Ledger.AddPerson(model.Person{Name: req.Name, Rank: req.Rank, SiteID: req.SiteID})
	if err != nil {
		ledgerError(w, err, "create person")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("person added", "user", claims.Username, "person", p.Name, "site", p.SiteID)
	jsonResponse(w, http.StatusCreated, p)
}
