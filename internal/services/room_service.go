package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/models"
)

// RoomService manages rooms within a home. Reads need READ access on the
// home, mutations need WRITE.
type RoomService struct {
	db *gorm.DB
}

// NewRoomService constructs a RoomService.
func NewRoomService(db *gorm.DB) (*RoomService, error) {
	if db == nil {
		return nil, errors.New("room service: db is required")
	}
	return &RoomService{db: db}, nil
}

// RoomInput carries the editable fields of a room.
type RoomInput struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// Create adds a room to a home.
func (s *RoomService) Create(ctx context.Context, actorID, homeID string, input RoomInput) (*models.Room, error) {
	ctx = ensureContext(ctx)

	home, err := requireWrite(ctx, s.db, homeID, actorID)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		HomeID:      home.ID,
	}
	if err := s.db.WithContext(ctx).Create(room).Error; err != nil {
		return nil, fmt.Errorf("room service: create room: %w", err)
	}
	return room, nil
}

// Get returns a room with its items preloaded.
func (s *RoomService) Get(ctx context.Context, actorID, homeID, roomID string) (*models.Room, error) {
	ctx = ensureContext(ctx)

	if _, err := requireRead(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	var room models.Room
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND home_id = ?", roomID, homeID).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("room service: find room: %w", err)
	}
	return &room, nil
}

// List returns all rooms in a home.
func (s *RoomService) List(ctx context.Context, actorID, homeID string) ([]models.Room, error) {
	ctx = ensureContext(ctx)

	if _, err := requireRead(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	var rooms []models.Room
	if err := s.db.WithContext(ctx).
		Where("home_id = ?", homeID).
		Order("name ASC").
		Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("room service: list rooms: %w", err)
	}
	return rooms, nil
}

// Update replaces the editable fields of a room.
func (s *RoomService) Update(ctx context.Context, actorID, homeID, roomID string, input RoomInput) (*models.Room, error) {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	room, err := s.findInHome(ctx, homeID, roomID)
	if err != nil {
		return nil, err
	}

	room.Name = strings.TrimSpace(input.Name)
	room.Description = strings.TrimSpace(input.Description)
	if err := s.db.WithContext(ctx).Save(room).Error; err != nil {
		return nil, fmt.Errorf("room service: update room: %w", err)
	}
	return room, nil
}

// Delete removes a room and cascades to its items, tasks, paints and
// floorings.
func (s *RoomService) Delete(ctx context.Context, actorID, homeID, roomID string) error {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return err
	}

	room, err := s.findInHome(ctx, homeID, roomID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Select("Items", "Tasks", "Paints", "Floorings").
		Delete(room).Error; err != nil {
		return fmt.Errorf("room service: delete room: %w", err)
	}
	return nil
}

func (s *RoomService) findInHome(ctx context.Context, homeID, roomID string) (*models.Room, error) {
	var room models.Room
	err := s.db.WithContext(ctx).
		Where("id = ? AND home_id = ?", roomID, homeID).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("room service: find room: %w", err)
	}
	return &room, nil
}
