package model

// TransferStatus is the lifecycle state of a transfer.
type TransferStatus string

// Transfer statuses.
const (
	TransferPending   TransferStatus = "pending"
	TransferInTransit TransferStatus = "in-transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// Valid reports whether s is a known transfer status.
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferPending, TransferInTransit, TransferCompleted, TransferCancelled:
		return true
	}
	return false
}

// DepletesSource reports whether a transfer in this status has left the
// source site. Stock is reserved as soon as it is in flight.
func (s TransferStatus) DepletesSource() bool {
	return s == TransferInTransit || s == TransferCompleted
}

// CreditsDestination reports whether a transfer in this status counts as
// received at the destination site.
func (s TransferStatus) CreditsDestination() bool {
	return s == TransferCompleted
}

var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferPending:   {TransferInTransit, TransferCompleted, TransferCancelled},
	TransferInTransit: {TransferCompleted, TransferCancelled},
}

// CanTransition reports whether a transfer may move from s to next.
// Completed and cancelled transfers are final.
func (s TransferStatus) CanTransition(next TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transfer is a movement of stock between two sites.
type Transfer struct {
	ID          string         `json:"id"`
	FromSiteID  string         `json:"fromSiteId"`
	ToSiteID    string         `json:"toSiteId"`
	ItemTypeID  string         `json:"itemTypeId"`
	Quantity    int            `json:"quantity"`
	Date        string         `json:"date"`
	Status      TransferStatus `json:"status"`
	OrderNumber string         `json:"orderNumber,omitempty"`
	Notes       string         `json:"notes,omitempty"`

	// Joined fields (not always populated).
	FromSiteName string `json:"fromSiteName,omitempty"`
	ToSiteName   string `json:"toSiteName,omitempty"`
	ItemTypeName string `json:"itemTypeName,omitempty"`
}
