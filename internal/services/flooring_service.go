package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/models"
)

// FlooringService manages flooring records attached to a home or one of its
// rooms.
type FlooringService struct {
	db *gorm.DB
}

// NewFlooringService constructs a FlooringService.
func NewFlooringService(db *gorm.DB) (*FlooringService, error) {
	if db == nil {
		return nil, errors.New("flooring service: db is required")
	}
	return &FlooringService{db: db}, nil
}

// FlooringInput carries the editable fields of a flooring record. An empty
// RoomID attaches the flooring to the home itself.
type FlooringInput struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Type     string `json:"type" validate:"required,min=1,max=100"`
	Material string `json:"material" validate:"required,min=1,max=100"`
	Brand    string `json:"brand" validate:"required,min=1,max=255"`
	Color    string `json:"color" validate:"max=100"`
	Pattern  string `json:"pattern" validate:"max=100"`
	Notes    string `json:"notes" validate:"max=2000"`
	RoomID   string `json:"room_id"`
}

// Create adds a flooring record to a home or room.
func (s *FlooringService) Create(ctx context.Context, actorID, homeID string, input FlooringInput) (*models.Flooring, error) {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	flooring := &models.Flooring{
		Name:     strings.TrimSpace(input.Name),
		Type:     strings.TrimSpace(input.Type),
		Material: strings.TrimSpace(input.Material),
		Brand:    strings.TrimSpace(input.Brand),
		Color:    strings.TrimSpace(input.Color),
		Pattern:  strings.TrimSpace(input.Pattern),
		Notes:    strings.TrimSpace(input.Notes),
	}
	if err := s.place(ctx, flooring, homeID, input.RoomID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(flooring).Error; err != nil {
		return nil, fmt.Errorf("flooring service: create flooring: %w", err)
	}
	return flooring, nil
}

// List returns the flooring records in a home, optionally filtered to one
// room.
func (s *FlooringService) List(ctx context.Context, actorID, homeID, roomID string) ([]models.Flooring, error) {
	ctx = ensureContext(ctx)

	if _, err := requireRead(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	query := s.homeScope(ctx, homeID)
	if roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}

	var floorings []models.Flooring
	if err := query.Order("name ASC").Find(&floorings).Error; err != nil {
		return nil, fmt.Errorf("flooring service: list floorings: %w", err)
	}
	return floorings, nil
}

// Update replaces the editable fields of a flooring record.
func (s *FlooringService) Update(ctx context.Context, actorID, homeID, flooringID string, input FlooringInput) (*models.Flooring, error) {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	flooring, err := s.findInHome(ctx, homeID, flooringID)
	if err != nil {
		return nil, err
	}

	flooring.Name = strings.TrimSpace(input.Name)
	flooring.Type = strings.TrimSpace(input.Type)
	flooring.Material = strings.TrimSpace(input.Material)
	flooring.Brand = strings.TrimSpace(input.Brand)
	flooring.Color = strings.TrimSpace(input.Color)
	flooring.Pattern = strings.TrimSpace(input.Pattern)
	flooring.Notes = strings.TrimSpace(input.Notes)
	if err := s.place(ctx, flooring, homeID, input.RoomID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(flooring).Error; err != nil {
		return nil, fmt.Errorf("flooring service: update flooring: %w", err)
	}
	return flooring, nil
}

// Delete removes a flooring record.
func (s *FlooringService) Delete(ctx context.Context, actorID, homeID, flooringID string) error {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return err
	}

	flooring, err := s.findInHome(ctx, homeID, flooringID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(flooring).Error; err != nil {
		return fmt.Errorf("flooring service: delete flooring: %w", err)
	}
	return nil
}

func (s *FlooringService) place(ctx context.Context, flooring *models.Flooring, homeID, roomID string) error {
	flooring.HomeID = nil
	flooring.RoomID = nil

	if roomID == "" {
		flooring.HomeID = &homeID
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND home_id = ?", roomID, homeID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("flooring service: check room: %w", err)
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	flooring.RoomID = &roomID
	return nil
}

func (s *FlooringService) homeScope(ctx context.Context, homeID string) *gorm.DB {
	rooms := s.db.Model(&models.Room{}).Select("id").Where("home_id = ?", homeID)
	return s.db.WithContext(ctx).Model(&models.Flooring{}).
		Where("home_id = ? OR room_id IN (?)", homeID, rooms)
}

func (s *FlooringService) findInHome(ctx context.Context, homeID, flooringID string) (*models.Flooring, error) {
	var flooring models.Flooring
	err := s.homeScope(ctx, homeID).Where("floorings.id = ?", flooringID).First(&flooring).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFlooringNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("flooring service: find flooring: %w", err)
	}
	return &flooring, nil
}
