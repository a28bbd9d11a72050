// Package seed loads a demonstration catalog and transaction history into an
// empty ledger.
package seed

import (
	"fmt"

	"github.com/erazemk/zaloga/internal/ledger"
	"github.com/erazemk/zaloga/internal/model"
)

// Records refer to each other by these keys until the ledger assigns IDs.
type (
	siteKey   string
	itemKey   string
	personKey string
)

var sites = []struct {
	key  siteKey
	site model.Site
}{
	{"liberty", model.Site{Name: "Fort Liberty", Location: "North Carolina, USA"}},
	{"pendleton", model.Site{Name: "Camp Pendleton", Location: "California, USA"}},
	{"lewis", model.Site{Name: "Joint Base Lewis-McChord", Location: "Washington, USA"}},
	{"bragg", model.Site{Name: "Fort Bragg", Location: "North Carolina, USA"}},
	{"norfolk", model.Site{Name: "Naval Station Norfolk", Location: "Virginia, USA"}},
}

var itemTypes = []struct {
	key  itemKey
	item model.ItemType
}{
	{"m4", model.ItemType{Name: "M4A1 Carbine", Category: model.CategoryWeapon, Description: "Standard issue assault rifle"}},
	{"humvee", model.ItemType{Name: "Humvee", Category: model.CategoryVehicle, Description: "High Mobility Multipurpose Wheeled Vehicle"}},
	{"ammo", model.ItemType{Name: "5.56mm Ammunition", Category: model.CategoryAmmunition, Description: "Standard rifle ammunition (rounds)"}},
	{"nvg", model.ItemType{Name: "Night Vision Goggles", Category: model.CategoryOther, Description: "AN/PVS-14 Night Vision Monocular"}},
	{"bradley", model.ItemType{Name: "Bradley Fighting Vehicle", Category: model.CategoryVehicle, Description: "Infantry Fighting Vehicle"}},
	{"saw", model.ItemType{Name: "M249 SAW", Category: model.CategoryWeapon, Description: "Squad Automatic Weapon"}},
	{"medkit", model.ItemType{Name: "Medical Kit", Category: model.CategoryMedical, Description: "Field Medical Supply Kit"}},
	{"radio", model.ItemType{Name: "Radio Set", Category: model.CategoryCommunication, Description: "PRC-152 Multiband Handheld Radio"}},
}

var personnel = []struct {
	key  personKey
	site siteKey
	name string
	rank string
}{
	{"williams", "liberty", "Sgt. Williams", "Sergeant"},
	{"davis", "pendleton", "Cpl. Davis", "Corporal"},
	{"brown", "lewis", "Lt. Brown", "Lieutenant"},
	{"johnson", "liberty", "Capt. Johnson", "Captain"},
	{"miller", "pendleton", "Sgt. Miller", "Sergeant"},
	{"wilson", "lewis", "Pvt. Wilson", "Private"},
	{"anderson", "liberty", "Col. Anderson", "Colonel"},
	{"thompson", "pendleton", "Maj. Thompson", "Major"},
}

var acquisitions = []struct {
	site     siteKey
	item     itemKey
	quantity int
	date     string
	order    string
}{
	{"liberty", "m4", 150, "2024-01-15", "PO-2024-001"},
	{"liberty", "humvee", 25, "2024-01-20", "PO-2024-002"},
	{"pendleton", "m4", 100, "2024-01-25", "PO-2024-003"},
	{"pendleton", "ammo", 10000, "2024-02-01", "PO-2024-004"},
	{"lewis", "nvg", 50, "2024-02-05", "PO-2024-005"},
	{"liberty", "saw", 30, "2024-02-10", "PO-2024-006"},
	{"lewis", "medkit", 75, "2024-02-15", "PO-2024-007"},
	{"pendleton", "radio", 40, "2024-02-20", "PO-2024-008"},
}

var transfers = []struct {
	from, to siteKey
	item     itemKey
	quantity int
	date     string
	status   model.TransferStatus
	order    string
	notes    string
}{
	{"liberty", "pendleton", "m4", 25, "2024-02-10", model.TransferCompleted, "TO-2024-001", "Transfer for training exercise"},
	{"lewis", "pendleton", "nvg", 10, "2024-02-15", model.TransferCompleted, "TO-2024-002", "Night operations requirement"},
	{"liberty", "lewis", "humvee", 5, "2024-02-20", model.TransferInTransit, "TO-2024-003", "Equipment redistribution"},
	{"lewis", "liberty", "medkit", 15, "2024-02-25", model.TransferCompleted, "TO-2024-004", "Medical supply redistribution"},
}

var assignments = []struct {
	site         siteKey
	item         itemKey
	person       personKey
	quantity     int
	dateAssigned string
	dateReturned string
	status       model.AssignmentStatus
}{
	{"liberty", "m4", "anderson", 1, "2024-01-20", "2024-02-01", model.AssignmentReturned},
	{"liberty", "m4", "williams", 2, "2024-02-12", "", model.AssignmentActive},
	{"pendleton", "m4", "davis", 1, "2024-02-14", "", model.AssignmentActive},
	{"lewis", "nvg", "brown", 1, "2024-02-16", "", model.AssignmentActive},
	{"liberty", "saw", "johnson", 1, "2024-02-18", "", model.AssignmentActive},
}

var consumptions = []struct {
	site         siteKey
	item         itemKey
	quantity     int
	date         string
	reason       string
	authorizedBy string
}{
	{"pendleton", "ammo", 2500, "2024-02-25", "Training exercise consumption", "Maj. Thompson"},
	{"liberty", "medkit", 10, "2024-02-28", "Medical supplies used", "Col. Anderson"},
	{"pendleton", "radio", 5, "2024-03-01", "Equipment damaged during exercise", "Maj. Thompson"},
}

// Apply adds the demonstration data to l if l holds no records. It reports
// whether anything was added.
func Apply(l *ledger.Store) (bool, error) {
	if !l.Snapshot().Empty() {
		return false, nil
	}

	siteIDs := make(map[siteKey]string)
	for _, s := range sites {
		created, err := l.AddSite(s.site)
		if err != nil {
			return false, fmt.Errorf("seeding site %s: %w", s.site.Name, err)
		}
		siteIDs[s.key] = created.ID
	}

	itemIDs := make(map[itemKey]string)
	for _, it := range itemTypes {
		created, err := l.AddItemType(it.item)
		if err != nil {
			return false, fmt.Errorf("seeding item type %s: %w", it.item.Name, err)
		}
		itemIDs[it.key] = created.ID
	}

	people := make(map[personKey]model.Person)
	for _, p := range personnel {
		created, err := l.AddPerson(model.Person{Name: p.name, Rank: p.rank, SiteID: siteIDs[p.site]})
		if err != nil {
			return false, fmt.Errorf("seeding person %s: %w", p.name, err)
		}
		people[p.key] = created
	}

	for _, a := range acquisitions {
		_, err := l.AddAcquisition(model.Acquisition{
			SiteID:      siteIDs[a.site],
			ItemTypeID:  itemIDs[a.item],
			Quantity:    a.quantity,
			Date:        a.date,
			OrderNumber: a.order,
		})
		if err != nil {
			return false, fmt.Errorf("seeding acquisition %s: %w", a.order, err)
		}
	}

	for _, t := range transfers {
		_, err := l.AddTransfer(model.Transfer{
			FromSiteID:  siteIDs[t.from],
			ToSiteID:    siteIDs[t.to],
			ItemTypeID:  itemIDs[t.item],
			Quantity:    t.quantity,
			Date:        t.date,
			Status:      t.status,
			OrderNumber: t.order,
			Notes:       t.notes,
		})
		if err != nil {
			return false, fmt.Errorf("seeding transfer %s: %w", t.order, err)
		}
	}

	for _, a := range assignments {
		person := people[a.person]
		_, err := l.AddAssignment(model.Assignment{
			SiteID:       siteIDs[a.site],
			ItemTypeID:   itemIDs[a.item],
			PersonID:     person.ID,
			Quantity:     a.quantity,
			DateAssigned: a.dateAssigned,
			DateReturned: a.dateReturned,
			Status:       a.status,
			AssignedTo:   person.Name,
		})
		if err != nil {
			return false, fmt.Errorf("seeding assignment for %s: %w", person.Name, err)
		}
	}

	for _, c := range consumptions {
		_, err := l.AddConsumption(model.Consumption{
			SiteID:       siteIDs[c.site],
			ItemTypeID:   itemIDs[c.item],
			Quantity:     c.quantity,
			Date:         c.date,
			Reason:       c.reason,
			AuthorizedBy: c.authorizedBy,
		})
		if err != nil {
			return false, fmt.Errorf("seeding consumption %q: %w", c.reason, err)
		}
	}

	return true, nil
}
