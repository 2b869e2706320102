package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/models"
)

// PaintService manages paint records attached to a home or one of its rooms.
type PaintService struct {
	db *gorm.DB
}

// NewPaintService constructs a PaintService.
func NewPaintService(db *gorm.DB) (*PaintService, error) {
	if db == nil {
		return nil, errors.New("paint service: db is required")
	}
	return &PaintService{db: db}, nil
}

// PaintInput carries the editable fields of a paint record. An empty RoomID
// attaches the paint to the home itself.
type PaintInput struct {
	Name   string `json:"name" validate:"required,min=1,max=255"`
	Brand  string `json:"brand" validate:"required,min=1,max=255"`
	Color  string `json:"color" validate:"required,min=1,max=100"`
	Finish string `json:"finish" validate:"required,min=1,max=100"`
	Code   string `json:"code" validate:"max=100"`
	Notes  string `json:"notes" validate:"max=2000"`
	RoomID string `json:"room_id"`
}

// Create adds a paint record to a home or room.
func (s *PaintService) Create(ctx context.Context, actorID, homeID string, input PaintInput) (*models.Paint, error) {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	paint := &models.Paint{
		Name:   strings.TrimSpace(input.Name),
		Brand:  strings.TrimSpace(input.Brand),
		Color:  strings.TrimSpace(input.Color),
		Finish: strings.TrimSpace(input.Finish),
		Code:   strings.TrimSpace(input.Code),
		Notes:  strings.TrimSpace(input.Notes),
	}
	if err := s.place(ctx, paint, homeID, input.RoomID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(paint).Error; err != nil {
		return nil, fmt.Errorf("paint service: create paint: %w", err)
	}
	return paint, nil
}

// List returns the paint records in a home, optionally filtered to one room.
func (s *PaintService) List(ctx context.Context, actorID, homeID, roomID string) ([]models.Paint, error) {
	ctx = ensureContext(ctx)

	if _, err := requireRead(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	query := s.homeScope(ctx, homeID)
	if roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}

	var paints []models.Paint
	if err := query.Order("name ASC").Find(&paints).Error; err != nil {
		return nil, fmt.Errorf("paint service: list paints: %w", err)
	}
	return paints, nil
}

// Update replaces the editable fields of a paint record.
func (s *PaintService) Update(ctx context.Context, actorID, homeID, paintID string, input PaintInput) (*models.Paint, error) {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	paint, err := s.findInHome(ctx, homeID, paintID)
	if err != nil {
		return nil, err
	}

	paint.Name = strings.TrimSpace(input.Name)
	paint.Brand = strings.TrimSpace(input.Brand)
	paint.Color = strings.TrimSpace(input.Color)
	paint.Finish = strings.TrimSpace(input.Finish)
	paint.Code = strings.TrimSpace(input.Code)
	paint.Notes = strings.TrimSpace(input.Notes)
	if err := s.place(ctx, paint, homeID, input.RoomID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(paint).Error; err != nil {
		return nil, fmt.Errorf("paint service: update paint: %w", err)
	}
	return paint, nil
}

// Delete removes a paint record.
func (s *PaintService) Delete(ctx context.Context, actorID, homeID, paintID string) error {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return err
	}

	paint, err := s.findInHome(ctx, homeID, paintID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(paint).Error; err != nil {
		return fmt.Errorf("paint service: delete paint: %w", err)
	}
	return nil
}

// place sets exactly one of the home or room foreign keys.
func (s *PaintService) place(ctx context.Context, paint *models.Paint, homeID, roomID string) error {
	paint.HomeID = nil
	paint.RoomID = nil

	if roomID == "" {
		paint.HomeID = &homeID
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND home_id = ?", roomID, homeID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("paint service: check room: %w", err)
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	paint.RoomID = &roomID
	return nil
}

func (s *PaintService) homeScope(ctx context.Context, homeID string) *gorm.DB {
	rooms := s.db.Model(&models.Room{}).Select("id").Where("home_id = ?", homeID)
	return s.db.WithContext(ctx).Model(&models.Paint{}).
		Where("home_id = ? OR room_id IN (?)", homeID, rooms)
}

func (s *PaintService) findInHome(ctx context.Context, homeID, paintID string) (*models.Paint, error) {
	var paint models.Paint
	err := s.homeScope(ctx, homeID).Where("paints.id = ?", paintID).First(&paint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaintNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("paint service: find paint: %w", err)
	}
	return &paint, nil
}
