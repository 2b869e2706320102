package models

import (
	"time"
)

// UserRole is the global role of an account. Home-level access is never
// expressed here; it lives on HomeShare.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// UserTier gates account limits such as the number of owned homes.
type UserTier string

const (
	UserTierFree UserTier = "FREE"
	UserTierPaid UserTier = "PAID"
)

// User describes an account. Password is empty for accounts provisioned
// through an OIDC first login.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `json:"name"`
	Password string `json:"-"`

	Role       UserRole `gorm:"type:text;default:USER" json:"role"`
	Tier       UserTier `gorm:"type:text;default:FREE" json:"tier"`
	IsDisabled bool     `gorm:"default:false" json:"is_disabled"`
	Timezone   string   `gorm:"default:UTC" json:"timezone"`

	AuthProvider string     `json:"auth_provider,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`

	Homes    []Home      `gorm:"foreignKey:OwnerID" json:"-"`
	Shares   []HomeShare `gorm:"foreignKey:UserID" json:"-"`
	Sessions []Session   `gorm:"foreignKey:UserID" json:"-"`
}

// IsAdmin reports whether the user holds the global admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}
