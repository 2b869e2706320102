package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/database/testutil"
	"github.com/cjmartens/homestead/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		Name:         "Test User",
		AuthProvider: "local",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedHome(t *testing.T, db *gorm.DB, ownerID string) *models.Home {
	t.Helper()

	home := &models.Home{
		Name:    "Maple Street",
		Address: "12 Maple St",
		OwnerID: ownerID,
	}
	require.NoError(t, db.Create(home).Error)
	return home
}

func newInviteFixture(t *testing.T) (*gorm.DB, *InviteService, *ShareStore, *time.Time) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	current := time.Now().UTC().Truncate(time.Second)

	shares, err := NewShareStore(db)
	require.NoError(t, err)

	svc, err := NewInviteService(db, shares, nil,
		WithInviteClock(func() time.Time { return current }),
		WithInviteBaseURL("https://homestead.test"),
	)
	require.NoError(t, err)

	return db, svc, shares, &current
}

func TestInviteCreateAndAccept(t *testing.T) {
	db, svc, shares, current := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	invitee := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)

	pending, err := svc.Create(context.Background(), owner.ID, CreateInviteInput{
		HomeID: home.ID,
		Email:  "Guest@Example.com",
		Role:   "write",
	})
	require.NoError(t, err)
	require.Equal(t, "guest@example.com", pending.Email)
	require.Equal(t, models.ShareRoleWrite, pending.Role)
	require.NotEmpty(t, pending.Token)
	require.Equal(t, current.Add(7*24*time.Hour).Unix(), pending.ExpiresAt.Unix())

	share, err := svc.Accept(context.Background(), invitee.ID, pending.Token)
	require.NoError(t, err)
	require.Equal(t, home.ID, share.HomeID)
	require.Equal(t, invitee.ID, share.UserID)
	require.Equal(t, models.ShareRoleWrite, share.Role)

	// The pending row is consumed by acceptance.
	_, err = shares.FindPendingByToken(context.Background(), pending.Token)
	require.ErrorIs(t, err, ErrInviteNotFound)

	// A second accept of the same token fails cleanly.
	_, err = svc.Accept(context.Background(), invitee.ID, pending.Token)
	require.ErrorIs(t, err, ErrInviteNotFound)
}

func TestInviteDuplicatePending(t *testing.T) {
	db, svc, _, _ := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	home := seedHome(t, db, owner.ID)

	input := CreateInviteInput{HomeID: home.ID, Email: "guest@example.com", Role: "READ"}

	_, err := svc.Create(context.Background(), owner.ID, input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner.ID, input)
	require.ErrorIs(t, err, ErrDuplicateInvite)
}

func TestInviteRejectsExistingShareHolder(t *testing.T) {
	db, svc, shares, _ := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	guest := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)

	require.NoError(t, shares.CreateShare(context.Background(), &models.HomeShare{
		HomeID: home.ID,
		UserID: guest.ID,
		Role:   models.ShareRoleRead,
	}))

	_, err := svc.Create(context.Background(), owner.ID, CreateInviteInput{
		HomeID: home.ID,
		Email:  guest.Email,
		Role:   "READ",
	})
	require.ErrorIs(t, err, ErrDuplicateShare)
}

func TestInviteRejectsOwnerEmail(t *testing.T) {
	db, svc, _, _ := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	home := seedHome(t, db, owner.ID)

	_, err := svc.Create(context.Background(), owner.ID, CreateInviteInput{
		HomeID: home.ID,
		Email:  owner.Email,
		Role:   "WRITE",
	})
	require.ErrorIs(t, err, ErrCannotShareWithOwner)
}

func TestInviteManagementIsOwnerOnly(t *testing.T) {
	db, svc, shares, _ := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	writer := seedUser(t, db, "writer@example.com")
	stranger := seedUser(t, db, "stranger@example.com")
	home := seedHome(t, db, owner.ID)

	require.NoError(t, shares.CreateShare(context.Background(), &models.HomeShare{
		HomeID: home.ID,
		UserID: writer.ID,
		Role:   models.ShareRoleWrite,
	}))

	input := CreateInviteInput{HomeID: home.ID, Email: "new@example.com", Role: "READ"}

	// A WRITE share does not confer invite management.
	_, err := svc.Create(context.Background(), writer.ID, input)
	require.ErrorIs(t, err, ErrNotOwner)

	// Same outcome for users with no relationship to the home at all.
	_, err = svc.Create(context.Background(), stranger.ID, input)
	require.ErrorIs(t, err, ErrNotOwner)

	pending, err := svc.Create(context.Background(), owner.ID, input)
	require.NoError(t, err)

	_, err = svc.Resend(context.Background(), writer.ID, home.ID, pending.ID)
	require.ErrorIs(t, err, ErrNotOwner)

	err = svc.Revoke(context.Background(), writer.ID, home.ID, pending.ID)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestInviteExpiryPurgesRecord(t *testing.T) {
	db, svc, shares, current := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	invitee := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)

	pending, err := svc.Create(context.Background(), owner.ID, CreateInviteInput{
		HomeID: home.ID,
		Email:  invitee.Email,
		Role:   "READ",
	})
	require.NoError(t, err)

	// One second before expiry the invite still resolves.
	*current = pending.ExpiresAt.Add(-time.Second)
	info, err := svc.Info(context.Background(), pending.Token)
	require.NoError(t, err)
	require.Equal(t, home.Name, info.HomeName)

	// Past expiry the invite reports gone and the row is purged.
	*current = pending.ExpiresAt.Add(time.Second)
	_, err = svc.Accept(context.Background(), invitee.ID, pending.Token)
	require.ErrorIs(t, err, ErrInviteExpired)

	_, err = shares.FindPendingByToken(context.Background(), pending.Token)
	require.ErrorIs(t, err, ErrInviteNotFound)
}

func TestInviteAcceptEmailMismatch(t *testing.T) {
	db, svc, shares, _ := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")
	home := seedHome(t, db, owner.ID)

	pending, err := svc.Create(context.Background(), owner.ID, CreateInviteInput{
		HomeID: home.ID,
		Email:  "guest@example.com",
		Role:   "READ",
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), other.ID, pending.Token)
	require.ErrorIs(t, err, ErrEmailMismatch)

	// A mismatched accept must not consume the invite.
	_, err = shares.FindPendingByToken(context.Background(), pending.Token)
	require.NoError(t, err)
}

func TestInviteAcceptAtomicOnDuplicateShare(t *testing.T) {
	db, svc, shares, _ := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	guest := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)

	pending, err := svc.Create(context.Background(), owner.ID, CreateInviteInput{
		HomeID: home.ID,
		Email:  guest.Email,
		Role:   "READ",
	})
	require.NoError(t, err)

	// A share appears between invite creation and acceptance, forcing the
	// transactional exchange to fail on the unique index.
	require.NoError(t, shares.CreateShare(context.Background(), &models.HomeShare{
		HomeID: home.ID,
		UserID: guest.ID,
		Role:   models.ShareRoleWrite,
	}))

	_, err = svc.Accept(context.Background(), guest.ID, pending.Token)
	require.ErrorIs(t, err, ErrDuplicateShare)

	// The rollback leaves the pending row in place and exactly one share.
	_, err = shares.FindPendingByToken(context.Background(), pending.Token)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.HomeShare{}).
		Where("home_id = ? AND user_id = ?", home.ID, guest.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestInviteResendKeepsTokenExtendsExpiry(t *testing.T) {
	db, svc, _, current := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	home := seedHome(t, db, owner.ID)

	pending, err := svc.Create(context.Background(), owner.ID, CreateInviteInput{
		HomeID: home.ID,
		Email:  "guest@example.com",
		Role:   "READ",
	})
	require.NoError(t, err)
	originalExpiry := pending.ExpiresAt

	*current = current.Add(3 * 24 * time.Hour)
	resent, err := svc.Resend(context.Background(), owner.ID, home.ID, pending.ID)
	require.NoError(t, err)

	require.Equal(t, pending.Token, resent.Token)
	require.True(t, resent.ExpiresAt.After(originalExpiry))

	var stored models.PendingHomeShare
	require.NoError(t, db.First(&stored, "id = ?", pending.ID).Error)
	require.Equal(t, pending.Token, stored.Token)
	require.Equal(t, resent.ExpiresAt.Unix(), stored.ExpiresAt.Unix())
}

func TestInviteRevoke(t *testing.T) {
	db, svc, _, _ := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	guest := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)

	pending, err := svc.Create(context.Background(), owner.ID, CreateInviteInput{
		HomeID: home.ID,
		Email:  guest.Email,
		Role:   "READ",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), owner.ID, home.ID, pending.ID))

	// Revoking again is a no-op, not an error.
	require.NoError(t, svc.Revoke(context.Background(), owner.ID, home.ID, pending.ID))

	_, err = svc.Accept(context.Background(), guest.ID, pending.Token)
	require.ErrorIs(t, err, ErrInviteNotFound)
}

func TestInviteEndToEndNewUser(t *testing.T) {
	db, svc, _, _ := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	home := seedHome(t, db, owner.ID)

	pending, err := svc.Create(context.Background(), owner.ID, CreateInviteInput{
		HomeID: home.ID,
		Email:  "newcomer@example.com",
		Role:   "WRITE",
	})
	require.NoError(t, err)

	// The invitee has no account yet; the preview still works.
	info, err := svc.Info(context.Background(), pending.Token)
	require.NoError(t, err)
	require.Equal(t, "newcomer@example.com", info.Email)

	newcomer, share, err := svc.AcceptWithSignup(context.Background(), pending.Token, AcceptSignupInput{
		Name:     "New Comer",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	require.Equal(t, "newcomer@example.com", newcomer.Email)
	require.NotEmpty(t, newcomer.Password)
	require.Equal(t, models.ShareRoleWrite, share.Role)
	require.Equal(t, newcomer.ID, share.UserID)

	// The pending record is consumed by the exchange.
	var count int64
	require.NoError(t, db.Model(&models.PendingHomeShare{}).
		Where("home_id = ? AND email = ?", home.ID, "newcomer@example.com").
		Count(&count).Error)
	require.Zero(t, count)

	// The new account now sees the home in its listings.
	homes, err := NewHomeService(db, mustShareStore(t, db))
	require.NoError(t, err)
	summaries, err := homes.ListForUser(context.Background(), newcomer.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, home.ID, summaries[0].ID)
	require.False(t, summaries[0].IsOwner)
	require.Equal(t, models.ShareRoleWrite, summaries[0].AccessRole)
}

func TestInviteAcceptWithSignupRejectsExistingAccount(t *testing.T) {
	db, svc, _, _ := newInviteFixture(t)

	owner := seedUser(t, db, "owner@example.com")
	guest := seedUser(t, db, "guest@example.com")
	home := seedHome(t, db, owner.ID)

	pending, err := svc.Create(context.Background(), owner.ID, CreateInviteInput{
		HomeID: home.ID,
		Email:  guest.Email,
		Role:   "READ",
	})
	require.NoError(t, err)

	_, _, err = svc.AcceptWithSignup(context.Background(), pending.Token, AcceptSignupInput{
		Name:     "Guest",
		Password: "pw12345678",
	})
	require.ErrorIs(t, err, ErrAccountExists)

	// The invite survives so the existing account can sign in and accept.
	share, err := svc.Accept(context.Background(), guest.ID, pending.Token)
	require.NoError(t, err)
	require.Equal(t, guest.ID, share.UserID)
}

func mustShareStore(t *testing.T, db *gorm.DB) *ShareStore {
	t.Helper()

	store, err := NewShareStore(db)
	require.NoError(t, err)
	return store
}
