package ledger

import "github.com/erazemk/zaloga/internal/model"

// Filter narrows the transaction logs. Empty fields are not applied. Dates
// are inclusive bounds in model.DateLayout.
type Filter struct {
	SiteID     string
	ItemTypeID string
	StartDate  string
	EndDate    string
}

func (f Filter) site(id string) bool     { return f.SiteID == "" || id == f.SiteID }
func (f Filter) itemType(id string) bool { return f.ItemTypeID == "" || id == f.ItemTypeID }

// within compares dates as strings, which is valid for the fixed-width
// layout.
func (f Filter) within(date string) bool {
	return (f.StartDate == "" || date >= f.StartDate) && (f.EndDate == "" || date <= f.EndDate)
}

func (f Filter) acquisition(a model.Acquisition) bool {
	return f.site(a.SiteID) && f.itemType(a.ItemTypeID) && f.within(a.Date)
}

func (f Filter) transferIn(t model.Transfer) bool {
	return t.Status.CreditsDestination() && f.site(t.ToSiteID) && f.itemType(t.ItemTypeID) && f.within(t.Date)
}

func (f Filter) transferOut(t model.Transfer) bool {
	return t.Status.DepletesSource() && f.site(t.FromSiteID) && f.itemType(t.ItemTypeID) && f.within(t.Date)
}

// assignment counts an active assignment made on or after the start bound
// that is either still open or was returned on or before the end bound.
func (f Filter) assignment(a model.Assignment) bool {
	return a.Status == model.AssignmentActive &&
		f.site(a.SiteID) && f.itemType(a.ItemTypeID) &&
		(f.StartDate == "" || a.DateAssigned >= f.StartDate) &&
		(f.EndDate == "" || a.DateReturned == "" || a.DateReturned <= f.EndDate)
}

func (f Filter) consumption(c model.Consumption) bool {
	return f.site(c.SiteID) && f.itemType(c.ItemTypeID) && f.within(c.Date)
}

// ComputeMetrics sums each log under the filter.
//
// The opening balance is always zero; state before the window is not
// reconstructed. The closing balance leaves out assignments, which reserve
// stock the site still owns, and is not clamped, so it can disagree with
// AvailableQuantity for inconsistent histories.
func ComputeMetrics(snap Snapshot, f Filter) model.Metrics {
	var m model.Metrics
	for _, a := range snap.Acquisitions {
		if f.acquisition(a) {
			m.Acquisitions += a.Quantity
		}
	}
	for _, t := range snap.Transfers {
		if f.transferIn(t) {
			m.TransferIn += t.Quantity
		}
		if f.transferOut(t) {
			m.TransferOut += t.Quantity
		}
	}
	for _, a := range snap.Assignments {
		if f.assignment(a) {
			m.Assigned += a.Quantity
		}
	}
	for _, c := range snap.Consumptions {
		if f.consumption(c) {
			m.Consumed += c.Quantity
		}
	}

	m.OpeningBalance = 0
	m.ClosingBalance = m.OpeningBalance + m.Acquisitions + m.TransferIn - m.TransferOut - m.Consumed
	return m
}
