package model

// Metrics summarises stock movement over a filter window.
type Metrics struct {
	OpeningBalance int `json:"openingBalance"`
	Acquisitions   int `json:"acquisitions"`
	TransferIn     int `json:"transferIn"`
	TransferOut    int `json:"transferOut"`
	Assigned       int `json:"assigned"`
	Consumed       int `json:"consumed"`
	ClosingBalance int `json:"closingBalance"`
}

// InventoryRow is the derived stock position of one item type at one site.
type InventoryRow struct {
	SiteID            string   `json:"siteId"`
	SiteName          string   `json:"siteName"`
	ItemTypeID        string   `json:"itemTypeId"`
	ItemTypeName      string   `json:"itemTypeName"`
	Category          Category `json:"category"`
	AvailableQuantity int      `json:"availableQuantity"`
	AssignedQuantity  int      `json:"assignedQuantity"`
	TotalQuantity     int      `json:"totalQuantity"`
}
