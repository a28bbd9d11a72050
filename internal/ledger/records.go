package ledger

import (
	"context"
	"strconv"

	"github.com/erazemk/zaloga/internal/model"
)

// Collection names as seen by a RecordStore. Field and collection names are
// camelCase; translating them to a storage naming scheme is the record
// store's job.
const (
	CollectionSites        = "sites"
	CollectionItemTypes    = "itemTypes"
	CollectionPersonnel    = "personnel"
	CollectionAcquisitions = "acquisitions"
	CollectionTransfers    = "transfers"
	CollectionAssignments  = "assignments"
	CollectionConsumptions = "consumptions"
)

// Collections lists every collection in load order.
var Collections = []string{
	CollectionSites,
	CollectionItemTypes,
	CollectionPersonnel,
	CollectionAcquisitions,
	CollectionTransfers,
	CollectionAssignments,
	CollectionConsumptions,
}

// Fields is a record in its camelCase field-name shape.
type Fields map[string]any

// RecordStore is the durable side of the ledger.
type RecordStore interface {
	SelectAll(ctx context.Context, collection string) ([]Fields, error)
	Insert(ctx context.Context, collection string, record Fields) error
	Update(ctx context.Context, collection, id string, record Fields) error
}

func (f Fields) str(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func (f Fields) num(key string) int {
	switch v := f[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	}
	return 0
}

func siteFields(s model.Site) Fields {
	return Fields{"id": s.ID, "name": s.Name, "location": s.Location}
}

func siteFrom(f Fields) model.Site {
	return model.Site{ID: f.str("id"), Name: f.str("name"), Location: f.str("location")}
}

func itemTypeFields(it model.ItemType) Fields {
	return Fields{"id": it.ID, "name": it.Name, "category": string(it.Category), "description": it.Description}
}

func itemTypeFrom(f Fields) model.ItemType {
	return model.ItemType{
		ID:          f.str("id"),
		Name:        f.str("name"),
		Category:    model.Category(f.str("category")),
		Description: f.str("description"),
	}
}

func personFields(p model.Person) Fields {
	return Fields{"id": p.ID, "name": p.Name, "rank": p.Rank, "siteId": p.SiteID}
}

func personFrom(f Fields) model.Person {
	return model.Person{ID: f.str("id"), Name: f.str("name"), Rank: f.str("rank"), SiteID: f.str("siteId")}
}

func acquisitionFields(a model.Acquisition) Fields {
	return Fields{
		"id":          a.ID,
		"siteId":      a.SiteID,
		"itemTypeId":  a.ItemTypeID,
		"quantity":    a.Quantity,
		"date":        a.Date,
		"orderNumber": a.OrderNumber,
	}
}

func acquisitionFrom(f Fields) model.Acquisition {
	return model.Acquisition{
		ID:          f.str("id"),
		SiteID:      f.str("siteId"),
		ItemTypeID:  f.str("itemTypeId"),
		Quantity:    f.num("quantity"),
		Date:        f.str("date"),
		OrderNumber: f.str("orderNumber"),
	}
}

func transferFields(t model.Transfer) Fields {
	return Fields{
		"id":          t.ID,
		"fromSiteId":  t.FromSiteID,
		"toSiteId":    t.ToSiteID,
		"itemTypeId":  t.ItemTypeID,
		"quantity":    t.Quantity,
		"date":        t.Date,
		"status":      string(t.Status),
		"orderNumber": t.OrderNumber,
		"notes":       t.Notes,
	}
}

func transferFrom(f Fields) model.Transfer {
	return model.Transfer{
		ID:          f.str("id"),
		FromSiteID:  f.str("fromSiteId"),
		ToSiteID:    f.str("toSiteId"),
		ItemTypeID:  f.str("itemTypeId"),
		Quantity:    f.num("quantity"),
		Date:        f.str("date"),
		Status:      model.TransferStatus(f.str("status")),
		OrderNumber: f.str("orderNumber"),
		Notes:       f.str("notes"),
	}
}

func assignmentFields(a model.Assignment) Fields {
	return Fields{
		"id":           a.ID,
		"siteId":       a.SiteID,
		"itemTypeId":   a.ItemTypeID,
		"personId":     a.PersonID,
		"quantity":     a.Quantity,
		"dateAssigned": a.DateAssigned,
		"dateReturned": a.DateReturned,
		"status":       string(a.Status),
		"assignedTo":   a.AssignedTo,
	}
}

func assignmentFrom(f Fields) model.Assignment {
	return model.Assignment{
		ID:           f.str("id"),
		SiteID:       f.str("siteId"),
		ItemTypeID:   f.str("itemTypeId"),
		PersonID:     f.str("personId"),
		Quantity:     f.num("quantity"),
		DateAssigned: f.str("dateAssigned"),
		DateReturned: f.str("dateReturned"),
		Status:       model.AssignmentStatus(f.str("status")),
		AssignedTo:   f.str("assignedTo"),
	}
}

func consumptionFields(c model.Consumption) Fields {
	return Fields{
		"id":           c.ID,
		"siteId":       c.SiteID,
		"itemTypeId":   c.ItemTypeID,
		"quantity":     c.Quantity,
		"date":         c.Date,
		"reason":       c.Reason,
		"authorizedBy": c.AuthorizedBy,
	}
}

func consumptionFrom(f Fields) model.Consumption {
	return model.Consumption{
		ID:           f.str("id"),
		SiteID:       f.str("siteId"),
		ItemTypeID:   f.str("itemTypeId"),
		Quantity:     f.num("quantity"),
		Date:         f.str("date"),
		Reason:       f.str("reason"),
		AuthorizedBy: f.str("authorizedBy"),
	}
}

// load fills snap from every collection of rs.
func load(ctx context.Context, rs RecordStore) (Snapshot, error) {
	var snap Snapshot
	for _, c := range Collections {
		rows, err := rs.SelectAll(ctx, c)
		if err != nil {
			return Snapshot{}, err
		}
		for _, f := range rows {
			switch c {
			case CollectionSites:
				snap.Sites = append(snap.Sites, siteFrom(f))
			case CollectionItemTypes:
				snap.ItemTypes = append(snap.ItemTypes, itemTypeFrom(f))
			case CollectionPersonnel:
				snap.Personnel = append(snap.Personnel, personFrom(f))
			case CollectionAcquisitions:
				snap.Acquisitions = append(snap.Acquisitions, acquisitionFrom(f))
			case CollectionTransfers:
				snap.Transfers = append(snap.Transfers, transferFrom(f))
			case CollectionAssignments:
				snap.Assignments = append(snap.Assignments, assignmentFrom(f))
			case CollectionConsumptions:
				snap.Consumptions = append(snap.Consumptions, consumptionFrom(f))
			}
		}
	}
	return snap, nil
}
