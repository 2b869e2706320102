package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ShareRole is the access level granted by a share.
type ShareRole string

const (
	// ShareRoleRead allows viewing a home and everything under it.
	ShareRoleRead ShareRole = "READ"
	// ShareRoleWrite allows viewing plus mutating rooms, items, tasks,
	// paints and floorings under the home.
	ShareRoleWrite ShareRole = "WRITE"
)

var validShareRoles = map[ShareRole]struct{}{
	ShareRoleRead:  {},
	ShareRoleWrite: {},
}

// ParseShareRole normalises and validates a role string.
func ParseShareRole(value string) (ShareRole, error) {
	role := ShareRole(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := validShareRoles[role]; !ok {
		return "", fmt.Errorf("home_share: invalid role %q", value)
	}
	return role, nil
}

// HomeShare is a confirmed grant of READ or WRITE access to a non-owner
// user. Unique on (home_id, user_id); created only by invite acceptance or
// a direct share to an existing account.
type HomeShare struct {
	BaseModel

	HomeID string    `gorm:"type:uuid;not null;uniqueIndex:idx_home_share_user,priority:1;index" json:"home_id"`
	UserID string    `gorm:"type:uuid;not null;uniqueIndex:idx_home_share_user,priority:2" json:"user_id"`
	Role   ShareRole `gorm:"type:text;not null" json:"role"`

	Home *Home `gorm:"foreignKey:HomeID" json:"home,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeSave validates the role and required references.
func (s *HomeShare) BeforeSave(tx *gorm.DB) error {
	s.HomeID = strings.TrimSpace(s.HomeID)
	if s.HomeID == "" {
		return errors.New("home_share: home_id is required")
	}

	s.UserID = strings.TrimSpace(s.UserID)
	if s.UserID == "" {
		return errors.New("home_share: user_id is required")
	}

	role, err := ParseShareRole(string(s.Role))
	if err != nil {
		return err
	}
	s.Role = role

	return nil
}

// PendingHomeShare is an invitation awaiting acceptance by an email
// address. Unique on (home_id, email); at most one outstanding invite per
// pair. The token is the only way to resolve it from the accept URL.
type PendingHomeShare struct {
	BaseModel

	HomeID string    `gorm:"type:uuid;not null;uniqueIndex:idx_pending_share_email,priority:1;index" json:"home_id"`
	Email  string    `gorm:"not null;uniqueIndex:idx_pending_share_email,priority:2" json:"email"`
	Role   ShareRole `gorm:"type:text;not null" json:"role"`
	Token  string    `gorm:"uniqueIndex;not null" json:"-"`

	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`

	Home *Home `gorm:"foreignKey:HomeID" json:"home,omitempty"`
}

// BeforeSave normalises the email and validates invariants, including
// expires_at strictly after created_at once both are set.
func (p *PendingHomeShare) BeforeSave(tx *gorm.DB) error {
	p.HomeID = strings.TrimSpace(p.HomeID)
	if p.HomeID == "" {
		return errors.New("pending_home_share: home_id is required")
	}

	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Email == "" {
		return errors.New("pending_home_share: email is required")
	}

	role, err := ParseShareRole(string(p.Role))
	if err != nil {
		return err
	}
	p.Role = role

	if strings.TrimSpace(p.Token) == "" {
		return errors.New("pending_home_share: token is required")
	}

	if p.ExpiresAt.IsZero() {
		return errors.New("pending_home_share: expires_at is required")
	}
	if !p.CreatedAt.IsZero() && !p.ExpiresAt.After(p.CreatedAt) {
		return errors.New("pending_home_share: expires_at must be after created_at")
	}

	return nil
}

// Expired reports whether the invite has passed its expiry at the given
// instant.
func (p *PendingHomeShare) Expired(now time.Time) bool {
	return p.ExpiresAt.Before(now)
}
