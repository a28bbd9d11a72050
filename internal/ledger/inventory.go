package ledger

import (
	"slices"
	"strings"

	"github.com/erazemk/zaloga/internal/model"
)

// InventoryFilter prunes the site × item type cross product before any
// quantities are computed. Empty fields are not applied.
type InventoryFilter struct {
	SiteID   string
	Category model.Category
	// Search is a case-insensitive substring of the item type name.
	Search string
}

// InventorySnapshot returns one row per site and item type that has ever
// received stock, through an acquisition or a completed inbound transfer.
// Pairs with no such history are omitted even when other logs mention them.
// Rows are ordered by site name; ties keep catalog order.
func InventorySnapshot(snap Snapshot, f InventoryFilter) []model.InventoryRow {
	search := strings.ToLower(f.Search)
	tallies := tallyAll(snap)

	var rows []model.InventoryRow
	for _, site := range snap.Sites {
		if f.SiteID != "" && site.ID != f.SiteID {
			continue
		}
		for _, it := range snap.ItemTypes {
			if f.Category != "" && it.Category != f.Category {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
				continue
			}

			t := tallies[pairKey{site.ID, it.ID}]
			if t.acquired <= 0 && t.transferIn <= 0 {
				continue
			}

			total := max(0, t.owned())
			rows = append(rows, model.InventoryRow{
				SiteID:            site.ID,
				SiteName:          site.Name,
				ItemTypeID:        it.ID,
				ItemTypeName:      it.Name,
				Category:          it.Category,
				AvailableQuantity: max(0, total-t.assigned),
				AssignedQuantity:  t.assigned,
				TotalQuantity:     total,
			})
		}
	}

	slices.SortStableFunc(rows, func(a, b model.InventoryRow) int {
		return strings.Compare(a.SiteName, b.SiteName)
	})
	return rows
}
