package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/auth"
	testutil "github.com/cjmartens/homestead/internal/database/testutil"
	"github.com/cjmartens/homestead/internal/models"
	"github.com/cjmartens/homestead/internal/services"
)

func seedOwnerWithHome(t *testing.T, db *gorm.DB) (*models.User, *models.Home) {
	t.Helper()

	user := &models.User{Email: "owner@example.com", Name: "Owner"}
	require.NoError(t, db.Create(user).Error)

	home := &models.Home{Name: "Maple Street", Address: "12 Maple St", OwnerID: user.ID}
	require.NoError(t, db.Create(home).Error)

	return user, home
}

func seedPendingShare(t *testing.T, db *gorm.DB, homeID, email string, expiresAt time.Time) *models.PendingHomeShare {
	t.Helper()

	pending := &models.PendingHomeShare{
		HomeID:    homeID,
		Email:     email,
		Role:      models.ShareRoleRead,
		Token:     email + "-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(pending).Error)
	// Backdate via UpdateColumn so BeforeSave validation does not reject
	// already-lapsed fixtures.
	require.NoError(t, db.Model(pending).UpdateColumn("expires_at", expiresAt).Error)
	return pending
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	now := time.Now().UTC().Truncate(time.Second)

	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         "cleanup-secret",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	sessionSvc, err := auth.NewSessionService(db, jwtSvc, auth.SessionConfig{
		RefreshTokenTTL: time.Hour,
		RefreshLength:   16,
	})
	require.NoError(t, err)

	shareStore, err := services.NewShareStore(db)
	require.NoError(t, err)

	activitySvc, err := services.NewActivityService(db)
	require.NoError(t, err)

	user, home := seedOwnerWithHome(t, db)

	ctx := context.Background()

	_, expiredSession, err := sessionSvc.CreateSession(ctx, user, auth.SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Session{}).Where("id = ?", expiredSession.ID).
		UpdateColumn("expires_at", now.Add(-2*time.Hour)).Error)

	_, activeSession, err := sessionSvc.CreateSession(ctx, user, auth.SessionMetadata{})
	require.NoError(t, err)

	lapsed := seedPendingShare(t, db, home.ID, "lapsed@example.com", now.Add(-time.Hour))
	fresh := seedPendingShare(t, db, home.ID, "fresh@example.com", now.Add(time.Hour))

	require.NoError(t, activitySvc.Record(ctx, services.ActivityEntry{
		ActorID: user.ID,
		Action:  "home.created",
	}))
	var stale models.ActivityLog
	require.NoError(t, db.First(&stale).Error)
	require.NoError(t, db.Model(&stale).
		UpdateColumn("created_at", now.Add(-40*24*time.Hour)).Error)

	require.NoError(t, activitySvc.Record(ctx, services.ActivityEntry{
		ActorID: user.ID,
		Action:  "home.updated",
	}))

	cleaner := NewCleaner(sessionSvc, shareStore, activitySvc,
		WithNow(func() time.Time { return now }),
		WithActivityRetention(30*24*time.Hour),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, cleaner.RunOnce(ctx))

	var session models.Session
	err = db.First(&session, "id = ?", expiredSession.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, db.First(&session, "id = ?", activeSession.ID).Error)

	var pending models.PendingHomeShare
	err = db.First(&pending, "id = ?", lapsed.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, db.First(&pending, "id = ?", fresh.ID).Error)

	var activityCount int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&activityCount).Error)
	require.Equal(t, int64(1), activityCount)
}

func TestCleanerSkipsWithoutDependencies(t *testing.T) {
	cleaner := NewCleaner(nil, nil, nil)
	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.RunOnce(context.Background()))
	cleaner.Stop()
}

func TestCleanerStartSchedulesSweep(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	shareStore, err := services.NewShareStore(db)
	require.NoError(t, err)

	cleaner := NewCleaner(nil, shareStore, nil,
		WithSchedule("@every 1h"),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)
	require.NoError(t, cleaner.Start())
	t.Cleanup(func() { <-cleaner.Stop().Done() })

	require.NoError(t, cleaner.RunOnce(context.Background()))
}
