package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/erazemk/zaloga/internal/ledger"
	"github.com/erazemk/zaloga/internal/report"
	"github.com/erazemk/zaloga/internal/telemetry"
)

// ObjectStore is where archives are written.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Archiver writes a point-in-time copy of the ledger: the raw snapshot as
// JSON and the derived inventory as a workbook.
type Archiver struct {
	store  ObjectStore
	prefix string
	now    func() time.Time
}

// Result lists what an archive run uploaded.
type Result struct {
	Prefix string   `json:"prefix"`
	Keys   []string `json:"keys"`
}

func NewArchiver(store ObjectStore, prefix string) *Archiver {
	return &Archiver{store: store, prefix: prefix, now: time.Now}
}

// Archive uploads snap under <prefix>/<UTC timestamp>/.
func (a *Archiver) Archive(ctx context.Context, snap ledger.Snapshot) (Result, error) {
	res, err := a.archive(ctx, snap)
	if err != nil {
		telemetry.Archives.WithLabelValues("error").Inc()
		return Result{}, err
	}
	telemetry.Archives.WithLabelValues("ok").Inc()
	slog.Info("ledger archived", "prefix", res.Prefix, "objects", len(res.Keys))
	return res, nil
}

func (a *Archiver) archive(ctx context.Context, snap ledger.Snapshot) (Result, error) {
	res := Result{Prefix: path.Join(a.prefix, a.now().UTC().Format("20060102T150405Z"))}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	workbook, err := report.InventoryWorkbook(ledger.InventorySnapshot(snap, ledger.InventoryFilter{}))
	if err != nil {
		return Result{}, fmt.Errorf("building inventory workbook: %w", err)
	}

	objects := []struct {
		name        string
		body        []byte
		contentType string
	}{
		{"ledger.json", data, "application/json"},
		{"inventory.xlsx", workbook, report.ContentType},
	}
	for _, o := range objects {
		key := path.Join(res.Prefix, o.name)
		if err := a.store.Put(ctx, key, o.body, o.contentType); err != nil {
			return Result{}, err
		}
		res.Keys = append(res.Keys, key)
	}
	return res, nil
}
