package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/models"
)

// ShareStore persists confirmed and pending home shares. Every method takes
// the *gorm.DB it should run against so callers can pass a transaction
// handle; the zero-argument helpers below default to the store's root
// connection.
type ShareStore struct {
	db *gorm.DB
}

// NewShareStore constructs a ShareStore over the provided connection.
func NewShareStore(db *gorm.DB) (*ShareStore, error) {
	if db == nil {
		return nil, errors.New("share store: db is required")
	}
	return &ShareStore{db: db}, nil
}

// FindPendingByToken loads a pending share by its raw token. Returns
// ErrInviteNotFound when no row matches.
func (s *ShareStore) FindPendingByToken(ctx context.Context, token string) (*models.PendingHomeShare, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInviteNotFound
	}

	var pending models.PendingHomeShare
	err := s.db.WithContext(ctx).
		Preload("Home").
		Where("token = ?", token).
		First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("share store: find pending by token: %w", err)
	}
	return &pending, nil
}

// FindPendingByEmail loads the outstanding invite for a (home, email) pair.
func (s *ShareStore) FindPendingByEmail(ctx context.Context, homeID, email string) (*models.PendingHomeShare, error) {
	var pending models.PendingHomeShare
	err := s.db.WithContext(ctx).
		Where("home_id = ? AND email = ?", homeID, strings.ToLower(strings.TrimSpace(email))).
		First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("share store: find pending by email: %w", err)
	}
	return &pending, nil
}

// ListPendingForHome returns all outstanding invites for a home, newest first.
func (s *ShareStore) ListPendingForHome(ctx context.Context, homeID string) ([]models.PendingHomeShare, error) {
	var pending []models.PendingHomeShare
	err := s.db.WithContext(ctx).
		Where("home_id = ?", homeID).
		Order("created_at DESC").
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("share store: list pending: %w", err)
	}
	return pending, nil
}

// CreatePending inserts a new pending share. A uniqueness violation on
// (home_id, email) surfaces as ErrDuplicateInvite.
func (s *ShareStore) CreatePending(ctx context.Context, pending *models.PendingHomeShare) error {
	if err := s.db.WithContext(ctx).Create(pending).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateInvite
		}
		return fmt.Errorf("share store: create pending: %w", err)
	}
	return nil
}

// ExtendPending pushes the expiry of an existing invite forward. The token
// is left untouched so previously delivered links keep working.
func (s *ShareStore) ExtendPending(ctx context.Context, id string, expiresAt time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.PendingHomeShare{}).
		Where("id = ?", id).
		UpdateColumn("expires_at", expiresAt)
	if result.Error != nil {
		return fmt.Errorf("share store: extend pending: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// DeletePending removes a pending share by id.
func (s *ShareStore) DeletePending(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.PendingHomeShare{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("share store: delete pending: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// DeleteExpiredPending removes every invite whose expiry precedes the given
// instant, returning the number of rows purged.
func (s *ShareStore) DeleteExpiredPending(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.PendingHomeShare{})
	if result.Error != nil {
		return 0, fmt.Errorf("share store: delete expired pending: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// FindShare loads the confirmed share for a (home, user) pair.
func (s *ShareStore) FindShare(ctx context.Context, homeID, userID string) (*models.HomeShare, error) {
	var share models.HomeShare
	err := s.db.WithContext(ctx).
		Where("home_id = ? AND user_id = ?", homeID, userID).
		First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("share store: find share: %w", err)
	}
	return &share, nil
}

// ListSharesForHome returns every confirmed share on a home with the user
// relation preloaded for display.
func (s *ShareStore) ListSharesForHome(ctx context.Context, homeID string) ([]models.HomeShare, error) {
	var shares []models.HomeShare
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("home_id = ?", homeID).
		Order("created_at ASC").
		Find(&shares).Error
	if err != nil {
		return nil, fmt.Errorf("share store: list shares: %w", err)
	}
	return shares, nil
}

// CreateShare inserts a confirmed share. A uniqueness violation on
// (home_id, user_id) surfaces as ErrDuplicateShare.
func (s *ShareStore) CreateShare(ctx context.Context, share *models.HomeShare) error {
	if err := s.db.WithContext(ctx).Create(share).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateShare
		}
		return fmt.Errorf("share store: create share: %w", err)
	}
	return nil
}

// DeleteShare removes a confirmed share by id within a home.
func (s *ShareStore) DeleteShare(ctx context.Context, homeID, shareID string) error {
	result := s.db.WithContext(ctx).
		Where("home_id = ?", homeID).
		Delete(&models.HomeShare{}, "id = ?", shareID)
	if result.Error != nil {
		return fmt.Errorf("share store: delete share: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrShareNotFound
	}
	return nil
}

// AcceptExchange atomically converts a pending share into a confirmed one:
// the HomeShare row is created and the PendingHomeShare row deleted inside a
// single transaction, so either both happen or neither does. A duplicate
// confirmed share (two racing accepts) surfaces as ErrDuplicateShare and
// leaves the database unchanged.
func (s *ShareStore) AcceptExchange(ctx context.Context, pendingID string, share *models.HomeShare) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(share).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicateShare
			}
			return fmt.Errorf("share store: accept create share: %w", err)
		}

		result := tx.Delete(&models.PendingHomeShare{}, "id = ?", pendingID)
		if result.Error != nil {
			return fmt.Errorf("share store: accept delete pending: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Another accept already consumed the invite.
			return ErrInviteNotFound
		}
		return nil
	})
}
