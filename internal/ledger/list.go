package ledger

import (
	"cmp"
	"slices"

	"github.com/erazemk/zaloga/internal/model"
)

// ListAcquisitions returns acquisitions matching f, newest first.
func ListAcquisitions(snap Snapshot, f Filter) []model.Acquisition {
	out := []model.Acquisition{}
	for _, a := range snap.Acquisitions {
		if f.acquisition(a) {
			out = append(out, labelAcquisition(snap, a))
		}
	}
	slices.SortStableFunc(out, func(a, b model.Acquisition) int { return cmp.Compare(b.Date, a.Date) })
	return out
}

// ListTransfers returns transfers in any status that match f. The site
// filter matches either end of the transfer.
func ListTransfers(snap Snapshot, f Filter) []model.Transfer {
	out := []model.Transfer{}
	for _, t := range snap.Transfers {
		if f.SiteID != "" && t.FromSiteID != f.SiteID && t.ToSiteID != f.SiteID {
			continue
		}
		if f.itemType(t.ItemTypeID) && f.within(t.Date) {
			out = append(out, labelTransfer(snap, t))
		}
	}
	slices.SortStableFunc(out, byTransferDateDesc)
	return out
}

// ListAssignments returns assignments in any status that match f, dated by
// when they were made.
func ListAssignments(snap Snapshot, f Filter) []model.Assignment {
	out := []model.Assignment{}
	for _, a := range snap.Assignments {
		if f.site(a.SiteID) && f.itemType(a.ItemTypeID) && f.within(a.DateAssigned) {
			out = append(out, labelAssignment(snap, a))
		}
	}
	slices.SortStableFunc(out, func(a, b model.Assignment) int { return cmp.Compare(b.DateAssigned, a.DateAssigned) })
	return out
}

// ListConsumptions returns consumptions matching f, newest first.
func ListConsumptions(snap Snapshot, f Filter) []model.Consumption {
	out := []model.Consumption{}
	for _, c := range snap.Consumptions {
		if f.consumption(c) {
			out = append(out, labelConsumption(snap, c))
		}
	}
	slices.SortStableFunc(out, func(a, b model.Consumption) int { return cmp.Compare(b.Date, a.Date) })
	return out
}

// ListPersonnel returns personnel stationed at siteID, or everyone when
// siteID is empty.
func ListPersonnel(snap Snapshot, siteID string) []model.Person {
	out := []model.Person{}
	for _, p := range snap.Personnel {
		if siteID == "" || p.SiteID == siteID {
			p.SiteName = snap.SiteName(p.SiteID)
			out = append(out, p)
		}
	}
	return out
}
