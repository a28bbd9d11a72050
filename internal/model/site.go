package model

// Site is a physical location holding inventory.
type Site struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Person is a member of personnel stationed at a site. Assignments reference
// people, but people do not hold stock themselves.
type Person struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rank   string `json:"rank"`
	SiteID string `json:"siteId"`

	// Joined fields (not always populated).
	SiteName string `json:"siteName,omitempty"`
}

// UnknownLabel is displayed in place of a name that cannot be resolved.
const UnknownLabel = "Unknown"
