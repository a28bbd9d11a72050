package ledger

import "github.com/erazemk/zaloga/internal/model"

// tally is the per-(site, item type) sum of each transaction log.
type tally struct {
	acquired    int
	transferIn  int
	transferOut int
	assigned    int
	consumed    int
}

type pairKey struct {
	siteID     string
	itemTypeID string
}

// available is the unclamped quantity on hand and not checked out.
func (t tally) available() int {
	return t.acquired + t.transferIn - t.transferOut - t.assigned - t.consumed
}

// owned is the unclamped quantity held by the site, checked out or not.
func (t tally) owned() int {
	return t.acquired + t.transferIn - t.transferOut - t.consumed
}

// tallyAll sums every log into per-pair totals in a single pass.
func tallyAll(snap Snapshot) map[pairKey]tally {
	out := make(map[pairKey]tally)
	add := func(site, itemType string, f func(*tally)) {
		k := pairKey{site, itemType}
		t := out[k]
		f(&t)
		out[k] = t
	}

	for _, a := range snap.Acquisitions {
		add(a.SiteID, a.ItemTypeID, func(t *tally) { t.acquired += a.Quantity })
	}
	for _, tr := range snap.Transfers {
		if tr.Status.CreditsDestination() {
			add(tr.ToSiteID, tr.ItemTypeID, func(t *tally) { t.transferIn += tr.Quantity })
		}
		if tr.Status.DepletesSource() {
			add(tr.FromSiteID, tr.ItemTypeID, func(t *tally) { t.transferOut += tr.Quantity })
		}
	}
	for _, a := range snap.Assignments {
		if a.Status == model.AssignmentActive {
			add(a.SiteID, a.ItemTypeID, func(t *tally) { t.assigned += a.Quantity })
		}
	}
	for _, c := range snap.Consumptions {
		add(c.SiteID, c.ItemTypeID, func(t *tally) { t.consumed += c.Quantity })
	}
	return out
}

// tallyPair sums the logs for one site and item type.
func tallyPair(snap Snapshot, siteID, itemTypeID string) tally {
	var t tally
	for _, a := range snap.Acquisitions {
		if a.SiteID == siteID && a.ItemTypeID == itemTypeID {
			t.acquired += a.Quantity
		}
	}
	for _, tr := range snap.Transfers {
		if tr.ItemTypeID != itemTypeID {
			continue
		}
		if tr.ToSiteID == siteID && tr.Status.CreditsDestination() {
			t.transferIn += tr.Quantity
		}
		if tr.FromSiteID == siteID && tr.Status.DepletesSource() {
			t.transferOut += tr.Quantity
		}
	}
	for _, a := range snap.Assignments {
		if a.SiteID == siteID && a.ItemTypeID == itemTypeID && a.Status == model.AssignmentActive {
			t.assigned += a.Quantity
		}
	}
	for _, c := range snap.Consumptions {
		if c.SiteID == siteID && c.ItemTypeID == itemTypeID {
			t.consumed += c.Quantity
		}
	}
	return t
}

// RawAvailable returns acquisitions plus completed inbound transfers, minus
// in-flight or completed outbound transfers, active assignments and
// consumptions, for one site and item type. The result may be negative when
// the history is inconsistent; callers that display it must clamp.
func RawAvailable(snap Snapshot, siteID, itemTypeID string) int {
	return tallyPair(snap, siteID, itemTypeID).available()
}

// AvailableQuantity is RawAvailable clamped at zero. Unknown IDs yield 0.
func AvailableQuantity(snap Snapshot, siteID, itemTypeID string) int {
	return max(0, RawAvailable(snap, siteID, itemTypeID))
}
