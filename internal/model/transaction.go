package model

// Acquisition records incoming stock at a site.
type Acquisition struct {
	ID          string `json:"id"`
	SiteID      string `json:"siteId"`
	ItemTypeID  string `json:"itemTypeId"`
	Quantity    int    `json:"quantity"`
	Date        string `json:"date"`
	OrderNumber string `json:"orderNumber"`

	// Joined fields (not always populated).
	SiteName     string `json:"siteName,omitempty"`
	ItemTypeName string `json:"itemTypeName,omitempty"`
}

// AssignmentStatus is the state of an assignment.
type AssignmentStatus string

// Assignment statuses.
const (
	AssignmentActive   AssignmentStatus = "active"
	AssignmentReturned AssignmentStatus = "returned"
	AssignmentLost     AssignmentStatus = "lost"
)

// Valid reports whether s is a known assignment status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentActive, AssignmentReturned, AssignmentLost:
		return true
	}
	return false
}

// Assignment is stock checked out to a person. Only active assignments
// reduce the available quantity at their site.
type Assignment struct {
	ID           string           `json:"id"`
	SiteID       string           `json:"siteId"`
	ItemTypeID   string           `json:"itemTypeId"`
	PersonID     string           `json:"personId"`
	Quantity     int              `json:"quantity"`
	DateAssigned string           `json:"dateAssigned"`
	DateReturned string           `json:"dateReturned,omitempty"`
	Status       AssignmentStatus `json:"status"`
	AssignedTo   string           `json:"assignedTo,omitempty"`

	// Joined fields (not always populated).
	SiteName     string `json:"siteName,omitempty"`
	ItemTypeName string `json:"itemTypeName,omitempty"`
	PersonName   string `json:"personName,omitempty"`
}

// Consumption permanently removes stock from a site.
type Consumption struct {
	ID           string `json:"id"`
	SiteID       string `json:"siteId"`
	ItemTypeID   string `json:"itemTypeId"`
	Quantity     int    `json:"quantity"`
	Date         string `json:"date"`
	Reason       string `json:"reason"`
	AuthorizedBy string `json:"authorizedBy,omitempty"`

	// Joined fields (not always populated).
	SiteName     string `json:"siteName,omitempty"`
	ItemTypeName string `json:"itemTypeName,omitempty"`
}
