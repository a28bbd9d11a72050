package api

import (
	"net/http"

	"github.com/erazemk/zaloga/internal/access"
	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/ledger"
	"github.com/erazemk/zaloga/internal/telemetry"
)

// Config holds what the router needs.
type Config struct {
	DB        *db.DB
	Ledger    *ledger.Store
	JWTSecret string
	// Archiver is optional; without it the archive endpoint reports 503.
	Archiver Archiver
	// Metrics exposes the Prometheus registry on /metrics.
	Metrics bool
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret}
	usersHandler := &UsersHandler{DB: cfg.DB, Ledger: cfg.Ledger}
	catalogHandler := &CatalogHandler{DB: cfg.DB, Ledger: cfg.Ledger}
	txHandler := &TransactionsHandler{Ledger: cfg.Ledger}
	viewsHandler := &ViewsHandler{Ledger: cfg.Ledger}
	adminHandler := &AdminHandler{DB: cfg.DB, Ledger: cfg.Ledger, Archiver: cfg.Archiver}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)
	guard := func(action access.Action, resource access.Resource, h http.HandlerFunc) http.Handler {
		return authMW(Require(action, resource)(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireAdmin(h))
	}
	// Read-only views open to every role. The handlers pin non-admins to
	// their own site.
	scoped := func(h http.HandlerFunc) http.Handler {
		return authMW(h)
	}

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /healthz", adminHandler.Health)
	if cfg.Metrics {
		mux.Handle("GET /metrics", telemetry.Handler())
	}

	// Session.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Catalog. Sites and item types are created by admins only.
	mux.Handle("GET /api/sites", scoped(catalogHandler.ListSites))
	mux.Handle("POST /api/sites", admin(catalogHandler.CreateSite))
	mux.Handle("GET /api/sites/{id}", scoped(catalogHandler.GetSite))
	mux.Handle("GET /api/item-types", scoped(catalogHandler.ListItemTypes))
	mux.Handle("POST /api/item-types", admin(catalogHandler.CreateItemType))
	mux.Handle("GET /api/item-types/{id}/image", scoped(catalogHandler.GetImage))
	mux.Handle("PUT /api/item-types/{id}/image", admin(catalogHandler.UploadImage))
	mux.Handle("GET /api/personnel", guard(access.View, access.Personnel, catalogHandler.ListPersonnel))
	mux.Handle("POST /api/personnel", guard(access.Add, access.Personnel, catalogHandler.CreatePerson))

	// Transaction logs.
	mux.Handle("GET /api/acquisitions", guard(access.View, access.Acquisition, txHandler.ListAcquisitions))
	mux.Handle("POST /api/acquisitions", guard(access.Add, access.Acquisition, txHandler.CreateAcquisition))
	mux.Handle("GET /api/transfers", guard(access.View, access.Transfer, txHandler.ListTransfers))
	mux.Handle("POST /api/transfers", guard(access.Add, access.Transfer, txHandler.CreateTransfer))
	mux.Handle("PUT /api/transfers/{id}/status", guard(access.Edit, access.Transfer, txHandler.UpdateTransferStatus))
	mux.Handle("GET /api/assignments", guard(access.View, access.Assignment, txHandler.ListAssignments))
	mux.Handle("POST /api/assignments", guard(access.Add, access.Assignment, txHandler.CreateAssignment))
	mux.Handle("POST /api/assignments/{id}/return", guard(access.Edit, access.Assignment, txHandler.ReturnAssignment))
	mux.Handle("GET /api/consumptions", guard(access.View, access.Consumption, txHandler.ListConsumptions))
	mux.Handle("POST /api/consumptions", guard(access.Add, access.Consumption, txHandler.CreateConsumption))

	// Derived views.
	mux.Handle("GET /api/inventory", guard(access.View, access.Inventory, viewsHandler.Inventory))
	mux.Handle("GET /api/inventory/available", guard(access.View, access.Inventory, viewsHandler.Available))
	mux.Handle("GET /api/inventory/export", guard(access.View, access.Inventory, viewsHandler.Export))
	mux.Handle("GET /api/metrics", scoped(viewsHandler.Metrics))
	mux.Handle("GET /api/metrics/movements", scoped(viewsHandler.Movements))

	// Maintenance.
	mux.Handle("POST /api/admin/archive", admin(adminHandler.Archive))

	return mux
}
