package access

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cjmartens/homestead/internal/models"
)

func TestHomeAccessPredicates(t *testing.T) {
	home := HomeAccess{
		OwnerID: "alice",
		Grants: []Grant{
			{UserID: "bob", Role: models.ShareRoleRead},
			{UserID: "carol", Role: models.ShareRoleWrite},
		},
	}

	tests := []struct {
		name     string
		userID   string
		canRead  bool
		canWrite bool
	}{
		{"owner", "alice", true, true},
		{"read share", "bob", true, false},
		{"write share", "carol", true, true},
		{"stranger", "dave", false, false},
		{"unauthenticated", "", false, false},
		{"whitespace user", "   ", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.canRead, home.CanRead(tt.userID))
			require.Equal(t, tt.canWrite, home.CanWrite(tt.userID))
		})
	}
}

func TestIsOwner(t *testing.T) {
	home := HomeAccess{OwnerID: "alice", Grants: []Grant{{UserID: "carol", Role: models.ShareRoleWrite}}}

	require.True(t, home.IsOwner("alice"))
	// A WRITE share does not confer owner rights.
	require.False(t, home.IsOwner("carol"))
	require.False(t, home.IsOwner(""))
}

func TestForHome(t *testing.T) {
	require.Equal(t, HomeAccess{}, ForHome(nil))

	home := &models.Home{
		OwnerID: "alice",
		Shares: []models.HomeShare{
			{UserID: "bob", Role: models.ShareRoleRead},
		},
	}
	acc := ForHome(home)
	require.Equal(t, "alice", acc.OwnerID)
	require.Len(t, acc.Grants, 1)
	require.True(t, acc.CanRead("bob"))
	require.False(t, acc.CanWrite("bob"))
}
