package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/database/testutil"
	"github.com/cjmartens/homestead/internal/models"
)

func newHomeFixture(t *testing.T) (*gorm.DB, *HomeService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	svc, err := NewHomeService(db, mustShareStore(t, db))
	require.NoError(t, err)
	return db, svc
}

func TestHomeCreateAndGet(t *testing.T) {
	db, svc := newHomeFixture(t)
	owner := seedUser(t, db, "owner@example.com")

	home, err := svc.Create(context.Background(), owner.ID, CreateHomeInput{
		Name:    "Maple Street",
		Address: "12 Maple St",
	})
	require.NoError(t, err)
	require.NotEmpty(t, home.ID)
	require.Equal(t, owner.ID, home.OwnerID)

	fetched, err := svc.Get(context.Background(), owner.ID, home.ID)
	require.NoError(t, err)
	require.Equal(t, home.ID, fetched.ID)
}

func TestHomeFreeTierLimit(t *testing.T) {
	db, svc := newHomeFixture(t)
	owner := seedUser(t, db, "owner@example.com")

	_, err := svc.Create(context.Background(), owner.ID, CreateHomeInput{Name: "First", Address: "1 First St"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner.ID, CreateHomeInput{Name: "Second", Address: "2 Second St"})
	require.ErrorIs(t, err, ErrHomeLimitReached)

	// Paid accounts are not limited.
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", owner.ID).
		Update("tier", models.UserTierPaid).Error)

	_, err = svc.Create(context.Background(), owner.ID, CreateHomeInput{Name: "Second", Address: "2 Second St"})
	require.NoError(t, err)
}

func TestHomeVisibility(t *testing.T) {
	db, svc := newHomeFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	reader := seedUser(t, db, "reader@example.com")
	stranger := seedUser(t, db, "stranger@example.com")
	home := seedHome(t, db, owner.ID)

	store := mustShareStore(t, db)
	require.NoError(t, store.CreateShare(context.Background(), &models.HomeShare{
		HomeID: home.ID,
		UserID: reader.ID,
		Role:   models.ShareRoleRead,
	}))

	_, err := svc.Get(context.Background(), reader.ID, home.ID)
	require.NoError(t, err)

	// Strangers cannot distinguish a hidden home from a missing one.
	_, err = svc.Get(context.Background(), stranger.ID, home.ID)
	require.ErrorIs(t, err, ErrHomeNotFound)
}

func TestHomeUpdateAndDeleteOwnerOnly(t *testing.T) {
	db, svc := newHomeFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	writer := seedUser(t, db, "writer@example.com")
	home := seedHome(t, db, owner.ID)

	store := mustShareStore(t, db)
	require.NoError(t, store.CreateShare(context.Background(), &models.HomeShare{
		HomeID: home.ID,
		UserID: writer.ID,
		Role:   models.ShareRoleWrite,
	}))

	name := "Renamed"
	_, err := svc.Update(context.Background(), writer.ID, home.ID, UpdateHomeInput{Name: &name})
	require.ErrorIs(t, err, ErrNotOwner)

	updated, err := svc.Update(context.Background(), owner.ID, home.ID, UpdateHomeInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	err = svc.Delete(context.Background(), writer.ID, home.ID)
	require.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, svc.Delete(context.Background(), owner.ID, home.ID))

	_, err = svc.Get(context.Background(), owner.ID, home.ID)
	require.ErrorIs(t, err, ErrHomeNotFound)
}

func TestHomeDirectShare(t *testing.T) {
	db, svc := newHomeFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	guest := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)

	share, err := svc.ShareWithUser(context.Background(), owner.ID, home.ID, ShareWithUserInput{
		Email: "Guest@Example.com",
		Role:  "read",
	})
	require.NoError(t, err)
	require.Equal(t, guest.ID, share.UserID)
	require.Equal(t, models.ShareRoleRead, share.Role)

	// Sharing twice with the same user is rejected.
	_, err = svc.ShareWithUser(context.Background(), owner.ID, home.ID, ShareWithUserInput{
		Email: guest.Email,
		Role:  "WRITE",
	})
	require.ErrorIs(t, err, ErrDuplicateShare)

	// Sharing with the owner is rejected.
	_, err = svc.ShareWithUser(context.Background(), owner.ID, home.ID, ShareWithUserInput{
		Email: owner.Email,
		Role:  "READ",
	})
	require.ErrorIs(t, err, ErrCannotShareWithOwner)

	// Unknown emails require the invite flow instead.
	_, err = svc.ShareWithUser(context.Background(), owner.ID, home.ID, ShareWithUserInput{
		Email: "nobody@example.com",
		Role:  "READ",
	})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestHomeRevokeShare(t *testing.T) {
	db, svc := newHomeFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	guest := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)

	share, err := svc.ShareWithUser(context.Background(), owner.ID, home.ID, ShareWithUserInput{
		Email: guest.Email,
		Role:  "WRITE",
	})
	require.NoError(t, err)

	// The guest may not revoke their own or anyone else's share.
	err = svc.RevokeShare(context.Background(), guest.ID, home.ID, share.ID)
	require.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, svc.RevokeShare(context.Background(), owner.ID, home.ID, share.ID))

	// Access is cut off immediately.
	_, err = svc.Get(context.Background(), guest.ID, home.ID)
	require.ErrorIs(t, err, ErrHomeNotFound)
}

func TestHomeListForUser(t *testing.T) {
	db, svc := newHomeFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	guest := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)
	_ = seedHome(t, db, guest.ID)

	_, err := svc.ShareWithUser(context.Background(), owner.ID, home.ID, ShareWithUserInput{
		Email: guest.Email,
		Role:  "READ",
	})
	require.NoError(t, err)

	summaries, err := svc.ListForUser(context.Background(), guest.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	var ownedCount, sharedCount int
	for _, s := range summaries {
		if s.IsOwner {
			ownedCount++
		} else {
			sharedCount++
			require.Equal(t, home.ID, s.ID)
			require.Equal(t, models.ShareRoleRead, s.AccessRole)
		}
	}
	require.Equal(t, 1, ownedCount)
	require.Equal(t, 1, sharedCount)
}
