package access

import "github.com/erazemk/zaloga/internal/model"

// Identity is the authenticated caller of a request. It is rebuilt from the
// session token on every request and passed explicitly to whatever needs it.
type Identity struct {
	UserID   int64
	Username string
	Role     model.Role
	SiteID   string
}

// Can reports whether the identity may perform action on resource.
// A nil identity is denied everything.
func (id *Identity) Can(action Action, resource Resource, resourceSiteID string) bool {
	if id == nil {
		return false
	}
	return CanPerform(id.Role, action, resource, resourceSiteID, id.SiteID)
}

// IsAdmin reports whether the identity has unrestricted access.
func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == model.RoleAdmin
}

// ScopeSite returns the site filter a caller is allowed to use. Admins get
// what they asked for (empty means all sites); everyone else is pinned to
// their own site regardless of the request. ok is false when the caller may
// not see any site at all, such as a site-bound user without a site.
func ScopeSite(id *Identity, requested string) (siteID string, ok bool) {
	if id.IsAdmin() {
		return requested, true
	}
	if id == nil || id.SiteID == "" {
		return "", false
	}
	return id.SiteID, true
}

// OwnsSite reports whether the identity may write records that touch siteID.
func (id *Identity) OwnsSite(siteID string) bool {
	if id.IsAdmin() {
		return true
	}
	return id != nil && id.SiteID != "" && id.SiteID == siteID
}
