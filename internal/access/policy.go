// Package access holds the owner-or-share authorization predicates applied
// to every read and write under a home. The predicates are pure: callers
// fetch the home's owner and shares alongside the target resource and
// evaluate in-process.
package access

import (
	"strings"

	"github.com/cjmartens/homestead/internal/models"
)

// Grant is the (user, role) pair of a confirmed share.
type Grant struct {
	UserID string
	Role   models.ShareRole
}

// HomeAccess is the minimal slice of a home needed for policy decisions.
type HomeAccess struct {
	OwnerID string
	Grants  []Grant
}

// ForHome projects a loaded home (with Shares preloaded) into a HomeAccess.
func ForHome(home *models.Home) HomeAccess {
	if home == nil {
		return HomeAccess{}
	}

	grants := make([]Grant, 0, len(home.Shares))
	for _, share := range home.Shares {
		grants = append(grants, Grant{UserID: share.UserID, Role: share.Role})
	}
	return HomeAccess{OwnerID: home.OwnerID, Grants: grants}
}

// CanRead reports whether the user may view the home and anything under it.
// The owner always can; any share role suffices. Unauthenticated callers
// (empty id) never have access.
func (a HomeAccess) CanRead(userID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	if userID == a.OwnerID {
		return true
	}
	for _, grant := range a.Grants {
		if grant.UserID == userID {
			return true
		}
	}
	return false
}

// CanWrite reports whether the user may mutate resources under the home.
// The owner always can; shared users need the WRITE role.
func (a HomeAccess) CanWrite(userID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	if userID == a.OwnerID {
		return true
	}
	for _, grant := range a.Grants {
		if grant.UserID == userID && grant.Role == models.ShareRoleWrite {
			return true
		}
	}
	return false
}

// IsOwner reports whether the user owns the home. Invite management
// (invite, resend, revoke) and home deletion are owner-only; shares never
// grant these rights.
func (a HomeAccess) IsOwner(userID string) bool {
	userID = strings.TrimSpace(userID)
	return userID != "" && userID == a.OwnerID
}
