package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/models"
	"github.com/cjmartens/homestead/pkg/crypto"
)

// DefaultRefreshTokenTTL is the fallback refresh token lifetime.
const DefaultRefreshTokenTTL = 30 * 24 * time.Hour

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	RefreshTokenTTL time.Duration
	RefreshLength   int
	Clock           func() time.Time
}

// SessionMetadata captures contextual information about the client.
type SessionMetadata struct {
	ClientIP  string
	UserAgent string
}

// TokenPair represents an access token and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

var (
	// ErrSessionNotFound indicates no session matches the provided token.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionRevoked marks a session that has been revoked.
	ErrSessionRevoked = errors.New("session: revoked")
	// ErrSessionExpired signals that a refresh token has reached its expiry.
	ErrSessionExpired = errors.New("session: expired")
	// ErrUserDisabled rejects session issuance for disabled accounts.
	ErrUserDisabled = errors.New("session: user disabled")
)

// SessionService manages creation, rotation and revocation of refresh
// sessions. Refresh tokens are stored hashed; the raw value only exists in
// the response that issued it.
type SessionService struct {
	db         *gorm.DB
	jwt        *JWTService
	refreshTTL time.Duration
	tokenLen   int
	now        func() time.Time
}

// NewSessionService constructs a session manager backed by the provided
// database and JWT service.
func NewSessionService(db *gorm.DB, jwtService *JWTService, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}
	if jwtService == nil {
		return nil, errors.New("session service: jwt service is required")
	}

	ttl := cfg.RefreshTokenTTL
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}

	length := cfg.RefreshLength
	if length <= 0 {
		length = 48
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		db:         db,
		jwt:        jwtService,
		refreshTTL: ttl,
		tokenLen:   length,
		now:        clock,
	}, nil
}

// CreateSession generates a new session and issues a fresh token pair.
func (s *SessionService) CreateSession(ctx context.Context, user *models.User, meta SessionMetadata) (TokenPair, *models.Session, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return TokenPair{}, nil, errors.New("session service: user is required")
	}
	if user.IsDisabled {
		return TokenPair{}, nil, ErrUserDisabled
	}

	refreshToken, err := crypto.GenerateToken(s.tokenLen)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: generate refresh token: %w", err)
	}

	now := s.now()
	session := &models.Session{
		UserID:           user.ID,
		RefreshTokenHash: hashToken(refreshToken),
		ClientIP:         strings.TrimSpace(meta.ClientIP),
		UserAgent:        strings.TrimSpace(meta.UserAgent),
		ExpiresAt:        now.Add(s.refreshTTL),
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: create session: %w", err)
	}

	accessToken, err := s.jwt.GenerateAccessToken(AccessTokenInput{
		UserID:    user.ID,
		SessionID: session.ID,
		Email:     user.Email,
	})
	if err != nil {
		return TokenPair{}, nil, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, session, nil
}

// Refresh rotates the refresh token and issues a new token pair. The old
// refresh token is invalidated.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string, meta SessionMetadata) (TokenPair, *models.Session, error) {
	session, err := s.lookup(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", session.UserID).Error; err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: load user: %w", err)
	}
	if user.IsDisabled {
		// The session dies with the account; re-enabling requires a new login.
		now := s.now()
		if err := s.db.WithContext(ctx).Model(session).
			UpdateColumn("revoked_at", &now).Error; err != nil {
			return TokenPair{}, nil, fmt.Errorf("session service: revoke disabled session: %w", err)
		}
		return TokenPair{}, nil, ErrUserDisabled
	}

	newToken, err := crypto.GenerateToken(s.tokenLen)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: rotate refresh token: %w", err)
	}

	now := s.now()
	updates := map[string]any{
		"refresh_token_hash": hashToken(newToken),
		"expires_at":         now.Add(s.refreshTTL),
	}
	if ip := strings.TrimSpace(meta.ClientIP); ip != "" {
		updates["client_ip"] = ip
	}
	if ua := strings.TrimSpace(meta.UserAgent); ua != "" {
		updates["user_agent"] = ua
	}
	if err := s.db.WithContext(ctx).Model(session).UpdateColumns(updates).Error; err != nil {
		return TokenPair{}, nil, fmt.Errorf("session service: rotate session: %w", err)
	}

	accessToken, err := s.jwt.GenerateAccessToken(AccessTokenInput{
		UserID:    user.ID,
		SessionID: session.ID,
		Email:     user.Email,
	})
	if err != nil {
		return TokenPair{}, nil, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: newToken}, session, nil
}

// Revoke invalidates the session that owns the refresh token.
func (s *SessionService) Revoke(ctx context.Context, refreshToken string) error {
	session, err := s.lookup(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrSessionRevoked) {
			return nil
		}
		return err
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(session).
		UpdateColumn("revoked_at", &now).Error; err != nil {
		return fmt.Errorf("session service: revoke session: %w", err)
	}
	return nil
}

// RevokeAllForUser invalidates every active session of a user.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID string) error {
	now := s.now()
	if err := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		UpdateColumn("revoked_at", &now).Error; err != nil {
		return fmt.Errorf("session service: revoke sessions: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired or were revoked before the
// cutoff, returning the number of rows purged.
func (s *SessionService) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session service: delete expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *SessionService) lookup(ctx context.Context, refreshToken string) (*models.Session, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrSessionNotFound
	}

	var session models.Session
	err := s.db.WithContext(ctx).
		First(&session, "refresh_token_hash = ?", hashToken(refreshToken)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session service: find session: %w", err)
	}

	now := s.now()
	if session.RevokedAt != nil {
		return nil, ErrSessionRevoked
	}
	if !session.ExpiresAt.After(now) {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
