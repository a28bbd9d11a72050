// Package access decides which actions each role may perform and which
// site's data a caller may see.
package access

import "github.com/erazemk/zaloga/internal/model"

// Action is something a caller wants to do to a resource.
type Action string

// Actions.
const (
	View   Action = "view"
	Add    Action = "add"
	Edit   Action = "edit"
	Delete Action = "delete"
)

// Resource is the kind of record an action targets.
type Resource string

// Resources.
const (
	Site        Resource = "site"
	ItemType    Resource = "itemType"
	Personnel   Resource = "personnel"
	Acquisition Resource = "acquisition"
	Transfer    Resource = "transfer"
	Assignment  Resource = "assignment"
	Consumption Resource = "consumption"
	Inventory   Resource = "inventory"
	Metrics     Resource = "metrics"
	User        Resource = "user"
)

// request is one permission question.
type request struct {
	action         Action
	resource       Resource
	resourceSiteID string
	userSiteID     string
}

// crossSite reports whether the request names a specific site record other
// than the caller's own.
func (q request) crossSite() bool {
	return q.resource == Site && q.resourceSiteID != "" && q.resourceSiteID != q.userSiteID
}

type rule func(q request) bool

var (
	logisticsActions   = map[Action]bool{View: true, Add: true}
	logisticsResources = map[Resource]bool{Acquisition: true, Transfer: true, Inventory: true}
)

// rules maps every role to its permission predicate. A role missing from
// this table is denied everything.
var rules = map[model.Role]rule{
	model.RoleAdmin: func(request) bool { return true },

	// Full control, but another site's site record is off limits. Transaction
	// logs are scoped separately through ScopeSite.
	model.RoleSiteCommander: func(q request) bool {
		return !q.crossSite()
	},

	model.RoleLogisticsOfficer: func(q request) bool {
		if !logisticsActions[q.action] || !logisticsResources[q.resource] {
			return false
		}
		return !q.crossSite()
	},
}

// CanPerform reports whether role may perform action on resource. The site
// IDs are optional; an empty resourceSiteID means "no specific record".
func CanPerform(role model.Role, action Action, resource Resource, resourceSiteID, userSiteID string) bool {
	allow, ok := rules[role]
	if !ok {
		return false
	}
	return allow(request{
		action:         action,
		resource:       resource,
		resourceSiteID: resourceSiteID,
		userSiteID:     userSiteID,
	})
}
