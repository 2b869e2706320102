package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/database/testutil"
	"github.com/cjmartens/homestead/internal/models"
)

func newSessionFixture(t *testing.T) (*gorm.DB, *SessionService, *models.User, *time.Time) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	current := time.Now().UTC().Truncate(time.Second)

	jwtSvc, err := NewJWTService(JWTConfig{
		Secret: "test-secret",
		Clock:  func() time.Time { return current },
	})
	require.NoError(t, err)

	svc, err := NewSessionService(db, jwtSvc, SessionConfig{
		RefreshTokenTTL: time.Hour,
		Clock:           func() time.Time { return current },
	})
	require.NoError(t, err)

	user := &models.User{Email: "user@example.com", Name: "User"}
	require.NoError(t, db.Create(user).Error)

	return db, svc, user, &current
}

func TestSessionCreateAndRefresh(t *testing.T) {
	db, svc, user, _ := newSessionFixture(t)

	pair, session, err := svc.CreateSession(context.Background(), user, SessionMetadata{
		ClientIP:  "203.0.113.7",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// The raw refresh token never touches the database.
	var stored models.Session
	require.NoError(t, db.First(&stored, "id = ?", session.ID).Error)
	require.NotEqual(t, pair.RefreshToken, stored.RefreshTokenHash)

	rotated, _, err := svc.Refresh(context.Background(), pair.RefreshToken, SessionMetadata{})
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old refresh token is dead after rotation.
	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken, SessionMetadata{})
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionDisabledUserCannotRefresh(t *testing.T) {
	db, svc, user, _ := newSessionFixture(t)

	pair, session, err := svc.CreateSession(context.Background(), user, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("is_disabled", true).Error)

	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken, SessionMetadata{})
	require.ErrorIs(t, err, ErrUserDisabled)

	// The session is revoked outright, not just refused once.
	var stored models.Session
	require.NoError(t, db.First(&stored, "id = ?", session.ID).Error)
	require.NotNil(t, stored.RevokedAt)

	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken, SessionMetadata{})
	require.ErrorIs(t, err, ErrSessionRevoked)
}

func TestSessionDisabledUserCannotCreate(t *testing.T) {
	_, svc, user, _ := newSessionFixture(t)

	user.IsDisabled = true
	_, _, err := svc.CreateSession(context.Background(), user, SessionMetadata{})
	require.ErrorIs(t, err, ErrUserDisabled)
}

func TestSessionRefreshExpired(t *testing.T) {
	_, svc, user, current := newSessionFixture(t)

	pair, _, err := svc.CreateSession(context.Background(), user, SessionMetadata{})
	require.NoError(t, err)

	*current = current.Add(2 * time.Hour)
	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken, SessionMetadata{})
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionRevoke(t *testing.T) {
	_, svc, user, _ := newSessionFixture(t)

	pair, _, err := svc.CreateSession(context.Background(), user, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), pair.RefreshToken))

	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken, SessionMetadata{})
	require.ErrorIs(t, err, ErrSessionRevoked)

	// Revoking twice is a no-op.
	require.NoError(t, svc.Revoke(context.Background(), pair.RefreshToken))
}

func TestSessionDeleteExpired(t *testing.T) {
	_, svc, user, current := newSessionFixture(t)

	_, _, err := svc.CreateSession(context.Background(), user, SessionMetadata{})
	require.NoError(t, err)

	purged, err := svc.DeleteExpired(context.Background(), current.Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)
}
