// Package ledger holds the authoritative inventory state and derives stock
// levels, metrics and inventory views from its transaction logs.
//
// All derived values are recomputed from a Snapshot on every call. There is
// no incremental cache; catalogs are small enough that a full pass is cheap.
package ledger

import (
	"slices"

	"github.com/erazemk/zaloga/internal/model"
)

// Snapshot is a point-in-time copy of every collection. It is never mutated
// after it has been handed out, so computations over it are pure.
type Snapshot struct {
	Sites        []model.Site        `json:"sites"`
	ItemTypes    []model.ItemType    `json:"itemTypes"`
	Personnel    []model.Person      `json:"personnel"`
	Acquisitions []model.Acquisition `json:"acquisitions"`
	Transfers    []model.Transfer    `json:"transfers"`
	Assignments  []model.Assignment  `json:"assignments"`
	Consumptions []model.Consumption `json:"consumptions"`
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Sites:        slices.Clone(s.Sites),
		ItemTypes:    slices.Clone(s.ItemTypes),
		Personnel:    slices.Clone(s.Personnel),
		Acquisitions: slices.Clone(s.Acquisitions),
		Transfers:    slices.Clone(s.Transfers),
		Assignments:  slices.Clone(s.Assignments),
		Consumptions: slices.Clone(s.Consumptions),
	}
}

// Site returns the site with the given ID.
func (s Snapshot) Site(id string) (model.Site, bool) {
	i := slices.IndexFunc(s.Sites, func(x model.Site) bool { return x.ID == id })
	if i < 0 {
		return model.Site{}, false
	}
	return s.Sites[i], true
}

// ItemType returns the item type with the given ID.
func (s Snapshot) ItemType(id string) (model.ItemType, bool) {
	i := slices.IndexFunc(s.ItemTypes, func(x model.ItemType) bool { return x.ID == id })
	if i < 0 {
		return model.ItemType{}, false
	}
	return s.ItemTypes[i], true
}

// Person returns the person with the given ID.
func (s Snapshot) Person(id string) (model.Person, bool) {
	i := slices.IndexFunc(s.Personnel, func(x model.Person) bool { return x.ID == id })
	if i < 0 {
		return model.Person{}, false
	}
	return s.Personnel[i], true
}

// SiteName resolves a site ID to its display name, or model.UnknownLabel.
func (s Snapshot) SiteName(id string) string {
	if site, ok := s.Site(id); ok {
		return site.Name
	}
	return model.UnknownLabel
}

// ItemTypeName resolves an item type ID to its display name, or
// model.UnknownLabel.
func (s Snapshot) ItemTypeName(id string) string {
	if it, ok := s.ItemType(id); ok {
		return it.Name
	}
	return model.UnknownLabel
}

// PersonName resolves a person ID to its display name, or model.UnknownLabel.
func (s Snapshot) PersonName(id string) string {
	if p, ok := s.Person(id); ok {
		return p.Name
	}
	return model.UnknownLabel
}

// Transfer returns the transfer with the given ID.
func (s Snapshot) Transfer(id string) (model.Transfer, bool) {
	i := slices.IndexFunc(s.Transfers, func(x model.Transfer) bool { return x.ID == id })
	if i < 0 {
		return model.Transfer{}, false
	}
	return s.Transfers[i], true
}

// Assignment returns the assignment with the given ID.
func (s Snapshot) Assignment(id string) (model.Assignment, bool) {
	i := slices.IndexFunc(s.Assignments, func(x model.Assignment) bool { return x.ID == id })
	if i < 0 {
		return model.Assignment{}, false
	}
	return s.Assignments[i], true
}

// Empty reports whether the snapshot holds no records at all.
func (s Snapshot) Empty() bool {
	return len(s.Sites) == 0 && len(s.ItemTypes) == 0 && len(s.Personnel) == 0 &&
		len(s.Acquisitions) == 0 && len(s.Transfers) == 0 &&
		len(s.Assignments) == 0 && len(s.Consumptions) == 0
}
