package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cjmartens/homestead/internal/database/testutil"
	"github.com/cjmartens/homestead/internal/models"
)

func TestShareStoreDeleteExpiredPending(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := mustShareStore(t, db)

	owner := seedUser(t, db, "owner@example.com")
	home := seedHome(t, db, owner.ID)

	now := time.Now().UTC()
	fresh := &models.PendingHomeShare{
		HomeID:    home.ID,
		Email:     "fresh@example.com",
		Role:      models.ShareRoleRead,
		Token:     "token-fresh",
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.CreatePending(context.Background(), fresh))

	stale := &models.PendingHomeShare{
		HomeID:    home.ID,
		Email:     "stale@example.com",
		Role:      models.ShareRoleRead,
		Token:     "token-stale",
		ExpiresAt: now.Add(time.Minute),
	}
	require.NoError(t, store.CreatePending(context.Background(), stale))

	purged, err := store.DeleteExpiredPending(context.Background(), now.Add(30*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	_, err = store.FindPendingByToken(context.Background(), "token-stale")
	require.ErrorIs(t, err, ErrInviteNotFound)

	_, err = store.FindPendingByToken(context.Background(), "token-fresh")
	require.NoError(t, err)
}

func TestShareStoreFindPendingByEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := mustShareStore(t, db)

	owner := seedUser(t, db, "owner@example.com")
	home := seedHome(t, db, owner.ID)
	other := seedHome(t, db, owner.ID)

	pending := &models.PendingHomeShare{
		HomeID:    home.ID,
		Email:     "guest@example.com",
		Role:      models.ShareRoleRead,
		Token:     "token-guest",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, store.CreatePending(context.Background(), pending))

	// Lookup normalises case and whitespace.
	found, err := store.FindPendingByEmail(context.Background(), home.ID, "  Guest@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, pending.ID, found.ID)

	// The pair is scoped to the home.
	_, err = store.FindPendingByEmail(context.Background(), other.ID, "guest@example.com")
	require.ErrorIs(t, err, ErrInviteNotFound)
}

func TestShareStoreDeleteShareScopedToHome(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := mustShareStore(t, db)

	owner := seedUser(t, db, "owner@example.com")
	guest := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)
	other := seedHome(t, db, guest.ID)

	share := &models.HomeShare{HomeID: home.ID, UserID: guest.ID, Role: models.ShareRoleRead}
	require.NoError(t, store.CreateShare(context.Background(), share))

	// Deleting through the wrong home id does not touch the row.
	err := store.DeleteShare(context.Background(), other.ID, share.ID)
	require.ErrorIs(t, err, ErrShareNotFound)

	_, err = store.FindShare(context.Background(), home.ID, guest.ID)
	require.NoError(t, err)

	require.NoError(t, store.DeleteShare(context.Background(), home.ID, share.ID))
	_, err = store.FindShare(context.Background(), home.ID, guest.ID)
	require.ErrorIs(t, err, ErrShareNotFound)
}

func TestShareStoreDuplicateShare(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := mustShareStore(t, db)

	owner := seedUser(t, db, "owner@example.com")
	guest := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)

	require.NoError(t, store.CreateShare(context.Background(), &models.HomeShare{
		HomeID: home.ID, UserID: guest.ID, Role: models.ShareRoleRead,
	}))

	err := store.CreateShare(context.Background(), &models.HomeShare{
		HomeID: home.ID, UserID: guest.ID, Role: models.ShareRoleWrite,
	})
	require.ErrorIs(t, err, ErrDuplicateShare)
}
