package model

import (
	"fmt"
	"time"
)

// User is an authenticated account. Users are separate from personnel.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	SiteID       string     `json:"siteId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// Role is fixed for the lifetime of a session.
type Role string

// Roles.
const (
	RoleAdmin            Role = "admin"
	RoleSiteCommander    Role = "siteCommander"
	RoleLogisticsOfficer Role = "logisticsOfficer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSiteCommander, RoleLogisticsOfficer:
		return true
	}
	return false
}

// SiteBound reports whether users with this role are tied to one site.
func (r Role) SiteBound() bool {
	return r == RoleSiteCommander || r == RoleLogisticsOfficer
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
