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

// ItemService manages tracked appliances and fixtures inside rooms.
type ItemService struct {
	db *gorm.DB
}

// NewItemService constructs an ItemService.
func NewItemService(db *gorm.DB) (*ItemService, error) {
	if db == nil {
		return nil, errors.New("item service: db is required")
	}
	return &ItemService{db: db}, nil
}

// ItemInput carries the editable fields of an item.
type ItemInput struct {
	Name          string     `json:"name" validate:"required,min=1,max=255"`
	Description   string     `json:"description" validate:"max=2000"`
	Category      string     `json:"category" validate:"max=100"`
	RoomID        string     `json:"room_id" validate:"required"`
	Manufacturer  string     `json:"manufacturer" validate:"max=255"`
	ModelNumber   string     `json:"model_number" validate:"max=255"`
	SerialNumber  string     `json:"serial_number" validate:"max=255"`
	ManualURL     string     `json:"manual_url" validate:"omitempty,url"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	WarrantyUntil *time.Time `json:"warranty_until"`
}

// Create adds an item to a room. The room must belong to the home.
func (s *ItemService) Create(ctx context.Context, actorID, homeID string, input ItemInput) (*models.Item, error) {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}
	if err := s.checkRoom(ctx, homeID, input.RoomID); err != nil {
		return nil, err
	}

	item := &models.Item{
		Name:          strings.TrimSpace(input.Name),
		Description:   strings.TrimSpace(input.Description),
		Category:      strings.TrimSpace(input.Category),
		Manufacturer:  strings.TrimSpace(input.Manufacturer),
		ModelNumber:   strings.TrimSpace(input.ModelNumber),
		SerialNumber:  strings.TrimSpace(input.SerialNumber),
		ManualURL:     strings.TrimSpace(input.ManualURL),
		PurchaseDate:  input.PurchaseDate,
		WarrantyUntil: input.WarrantyUntil,
		HomeID:        homeID,
		RoomID:        input.RoomID,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("item service: create item: %w", err)
	}
	return item, nil
}

// Get returns a single item within a home.
func (s *ItemService) Get(ctx context.Context, actorID, homeID, itemID string) (*models.Item, error) {
	ctx = ensureContext(ctx)

	if _, err := requireRead(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}
	return s.findInHome(ctx, homeID, itemID)
}

// List returns the items in a home, optionally filtered to one room.
func (s *ItemService) List(ctx context.Context, actorID, homeID, roomID string) ([]models.Item, error) {
	ctx = ensureContext(ctx)

	if _, err := requireRead(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("home_id = ?", homeID)
	if roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}

	var items []models.Item
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("item service: list items: %w", err)
	}
	return items, nil
}

// Update replaces the editable fields of an item, including moving it to a
// different room in the same home.
func (s *ItemService) Update(ctx context.Context, actorID, homeID, itemID string, input ItemInput) (*models.Item, error) {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	item, err := s.findInHome(ctx, homeID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRoom(ctx, homeID, input.RoomID); err != nil {
		return nil, err
	}

	item.Name = strings.TrimSpace(input.Name)
	item.Description = strings.TrimSpace(input.Description)
	item.Category = strings.TrimSpace(input.Category)
	item.Manufacturer = strings.TrimSpace(input.Manufacturer)
	item.ModelNumber = strings.TrimSpace(input.ModelNumber)
	item.SerialNumber = strings.TrimSpace(input.SerialNumber)
	item.ManualURL = strings.TrimSpace(input.ManualURL)
	item.PurchaseDate = input.PurchaseDate
	item.WarrantyUntil = input.WarrantyUntil
	item.RoomID = input.RoomID

	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("item service: update item: %w", err)
	}
	return item, nil
}

// Delete removes an item and cascades to its tasks.
func (s *ItemService) Delete(ctx context.Context, actorID, homeID, itemID string) error {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return err
	}

	item, err := s.findInHome(ctx, homeID, itemID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Select("Tasks").Delete(item).Error; err != nil {
		return fmt.Errorf("item service: delete item: %w", err)
	}
	return nil
}

func (s *ItemService) findInHome(ctx context.Context, homeID, itemID string) (*models.Item, error) {
	var item models.Item
	err := s.db.WithContext(ctx).
		Where("id = ? AND home_id = ?", itemID, homeID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("item service: find item: %w", err)
	}
	return &item, nil
}

func (s *ItemService) checkRoom(ctx context.Context, homeID, roomID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND home_id = ?", roomID, homeID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("item service: check room: %w", err)
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}
