package ledger

import (
	"cmp"
	"slices"

	"github.com/erazemk/zaloga/internal/model"
)

// Movements lists the records behind the acquisition and transfer totals of
// ComputeMetrics for the same filter.
type Movements struct {
	Acquisitions []model.Acquisition `json:"acquisitions"`
	TransfersIn  []model.Transfer    `json:"transfersIn"`
	TransfersOut []model.Transfer    `json:"transfersOut"`
}

// ComputeMovements returns the labelled acquisitions, inbound and outbound
// transfers matching f, newest first.
func ComputeMovements(snap Snapshot, f Filter) Movements {
	m := Movements{
		Acquisitions: []model.Acquisition{},
		TransfersIn:  []model.Transfer{},
		TransfersOut: []model.Transfer{},
	}
	for _, a := range snap.Acquisitions {
		if f.acquisition(a) {
			m.Acquisitions = append(m.Acquisitions, labelAcquisition(snap, a))
		}
	}
	for _, t := range snap.Transfers {
		if f.transferIn(t) {
			m.TransfersIn = append(m.TransfersIn, labelTransfer(snap, t))
		}
		if f.transferOut(t) {
			m.TransfersOut = append(m.TransfersOut, labelTransfer(snap, t))
		}
	}

	slices.SortStableFunc(m.Acquisitions, func(a, b model.Acquisition) int { return cmp.Compare(b.Date, a.Date) })
	slices.SortStableFunc(m.TransfersIn, byTransferDateDesc)
	slices.SortStableFunc(m.TransfersOut, byTransferDateDesc)
	return m
}

func byTransferDateDesc(a, b model.Transfer) int { return cmp.Compare(b.Date, a.Date) }

func labelAcquisition(snap Snapshot, a model.Acquisition) model.Acquisition {
	a.SiteName = snap.SiteName(a.SiteID)
	a.ItemTypeName = snap.ItemTypeName(a.ItemTypeID)
	return a
}

func labelTransfer(snap Snapshot, t model.Transfer) model.Transfer {
	t.FromSiteName = snap.SiteName(t.FromSiteID)
	t.ToSiteName = snap.SiteName(t.ToSiteID)
	t.ItemTypeName = snap.ItemTypeName(t.ItemTypeID)
	return t
}

func labelAssignment(snap Snapshot, a model.Assignment) model.Assignment {
	a.SiteName = snap.SiteName(a.SiteID)
	a.ItemTypeName = snap.ItemTypeName(a.ItemTypeID)
	a.PersonName = snap.PersonName(a.PersonID)
	return a
}

func labelConsumption(snap Snapshot, c model.Consumption) model.Consumption {
	c.SiteName = snap.SiteName(c.SiteID)
	c.ItemTypeName = snap.ItemTypeName(c.ItemTypeID)
	return c
}
