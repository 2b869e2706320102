package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/access"
	"github.com/cjmartens/homestead/internal/models"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// loadHome fetches a home with its confirmed shares so access decisions can
// be made without further queries. Missing homes map to ErrHomeNotFound.
func loadHome(ctx context.Context, db *gorm.DB, homeID string) (*models.Home, error) {
	var home models.Home
	err := db.WithContext(ctx).
		Preload("Shares").
		First(&home, "id = ?", homeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHomeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load home: %w", err)
	}
	return &home, nil
}

// requireOwner loads the home and verifies the actor owns it. Any
// non-owner, shared or not, gets ErrNotOwner; only a home that does not
// exist maps to ErrHomeNotFound.
func requireOwner(ctx context.Context, db *gorm.DB, homeID, actorID string) (*models.Home, error) {
	home, err := loadHome(ctx, db, homeID)
	if err != nil {
		return nil, err
	}

	if !access.ForHome(home).IsOwner(actorID) {
		return nil, ErrNotOwner
	}
	return home, nil
}

// requireWrite loads the home and verifies the actor may mutate content
// under it.
func requireWrite(ctx context.Context, db *gorm.DB, homeID, actorID string) (*models.Home, error) {
	home, err := loadHome(ctx, db, homeID)
	if err != nil {
		return nil, err
	}

	acl := access.ForHome(home)
	if acl.CanWrite(actorID) {
		return home, nil
	}
	if acl.CanRead(actorID) {
		return nil, ErrWriteForbidden
	}
	return nil, ErrHomeNotFound
}

// requireRead loads the home and verifies the actor may view it.
func requireRead(ctx context.Context, db *gorm.DB, homeID, actorID string) (*models.Home, error) {
	home, err := loadHome(ctx, db, homeID)
	if err != nil {
		return nil, err
	}

	if !access.ForHome(home).CanRead(actorID) {
		return nil, ErrHomeNotFound
	}
	return home, nil
}
