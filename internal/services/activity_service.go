package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/models"
)

// ActivityService records and queries domain events. Recording is best
// effort from the caller's perspective; a failed log write never fails the
// operation that triggered it.
type ActivityService struct {
	db *gorm.DB
}

// NewActivityService constructs an ActivityService.
func NewActivityService(db *gorm.DB) (*ActivityService, error) {
	if db == nil {
		return nil, errors.New("activity service: db is required")
	}
	return &ActivityService{db: db}, nil
}

// ActivityEntry describes a single event to record.
type ActivityEntry struct {
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

// Record persists an event.
func (s *ActivityService) Record(ctx context.Context, entry ActivityEntry) error {
	ctx = ensureContext(ctx)

	log := &models.ActivityLog{
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
	}
	if entry.ActorID != "" {
		log.ActorID = &entry.ActorID
	}
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("activity service: marshal metadata: %w", err)
		}
		log.Metadata = datatypes.JSON(raw)
	}

	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("activity service: record: %w", err)
	}
	return nil
}

// ListRecent returns the newest events, optionally scoped to one target.
func (s *ActivityService) ListRecent(ctx context.Context, targetType, targetID string, limit int) ([]models.ActivityLog, error) {
	ctx = ensureContext(ctx)

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Preload("Actor").Order("created_at DESC").Limit(limit)
	if targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}
	if targetID != "" {
		query = query.Where("target_id = ?", targetID)
	}

	var logs []models.ActivityLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("activity service: list: %w", err)
	}
	return logs, nil
}

// CleanupOlderThan removes events older than the retention window,
// returning the number of rows purged.
func (s *ActivityService) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ActivityLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("activity service: cleanup: %w", result.Error)
	}
	return result.RowsAffected, nil
}
