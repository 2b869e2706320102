package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/access"
	"github.com/cjmartens/homestead/internal/models"
	"github.com/cjmartens/homestead/pkg/logger"
)

const defaultFreeHomeLimit = 1

// HomeOption customises HomeService behaviour.
type HomeOption func(*HomeService)

// WithFreeHomeLimit overrides how many homes a free tier account may own.
func WithFreeHomeLimit(limit int) HomeOption {
	return func(s *HomeService) {
		if limit > 0 {
			s.freeHomeLimit = limit
		}
	}
}

// WithHomeActivity enables activity recording for home membership events.
func WithHomeActivity(activity *ActivityService) HomeOption {
	return func(s *HomeService) {
		s.activity = activity
	}
}

// HomeService manages homes and their membership: CRUD on the home itself,
// direct shares to existing accounts, and share revocation. Invitations to
// email addresses live in InviteService.
type HomeService struct {
	db            *gorm.DB
	shares        *ShareStore
	activity      *ActivityService
	freeHomeLimit int
}

// NewHomeService constructs a HomeService.
func NewHomeService(db *gorm.DB, shares *ShareStore, opts ...HomeOption) (*HomeService, error) {
	if db == nil {
		return nil, errors.New("home service: db is required")
	}
	if shares == nil {
		return nil, errors.New("home service: share store is required")
	}

	service := &HomeService{
		db:            db,
		shares:        shares,
		freeHomeLimit: defaultFreeHomeLimit,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateHomeInput carries the fields for a new home.
type CreateHomeInput struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Address     string `json:"address" validate:"required,min=1,max=500"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateHomeInput carries optional updates; nil fields are left untouched.
type UpdateHomeInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Address     *string `json:"address" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// HomeSummary is a home decorated with the caller's effective role.
type HomeSummary struct {
	models.Home
	AccessRole models.ShareRole `json:"access_role"`
	IsOwner    bool             `json:"is_owner"`
}

// Create makes the actor the owner of a new home. Free tier accounts are
// limited in how many homes they may own.
func (s *HomeService) Create(ctx context.Context, actorID string, input CreateHomeInput) (*models.Home, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", actorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("home service: find user: %w", err)
	}

	if user.Tier == models.UserTierFree {
		var owned int64
		if err := s.db.WithContext(ctx).Model(&models.Home{}).
			Where("owner_id = ?", actorID).
			Count(&owned).Error; err != nil {
			return nil, fmt.Errorf("home service: count homes: %w", err)
		}
		if owned >= int64(s.freeHomeLimit) {
			return nil, ErrHomeLimitReached
		}
	}

	home := &models.Home{
		Name:        strings.TrimSpace(input.Name),
		Address:     strings.TrimSpace(input.Address),
		Description: strings.TrimSpace(input.Description),
		OwnerID:     actorID,
	}
	if err := s.db.WithContext(ctx).Create(home).Error; err != nil {
		return nil, fmt.Errorf("home service: create home: %w", err)
	}

	s.record(ctx, actorID, "home.created", home.ID, nil)
	return home, nil
}

// Get returns a home visible to the actor, with rooms preloaded.
func (s *HomeService) Get(ctx context.Context, actorID, homeID string) (*models.Home, error) {
	ctx = ensureContext(ctx)

	home, err := requireRead(ctx, s.db, homeID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Preload("Rooms").
		First(home, "id = ?", home.ID).Error; err != nil {
		return nil, fmt.Errorf("home service: reload home: %w", err)
	}
	return home, nil
}

// ListForUser returns every home the actor can see: owned homes plus homes
// shared with them, each annotated with the effective role.
func (s *HomeService) ListForUser(ctx context.Context, actorID string) ([]HomeSummary, error) {
	ctx = ensureContext(ctx)

	var owned []models.Home
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", actorID).
		Order("created_at ASC").
		Find(&owned).Error; err != nil {
		return nil, fmt.Errorf("home service: list owned: %w", err)
	}

	var shares []models.HomeShare
	if err := s.db.WithContext(ctx).
		Preload("Home").
		Where("user_id = ?", actorID).
		Order("created_at ASC").
		Find(&shares).Error; err != nil {
		return nil, fmt.Errorf("home service: list shared: %w", err)
	}

	summaries := make([]HomeSummary, 0, len(owned)+len(shares))
	for _, home := range owned {
		summaries = append(summaries, HomeSummary{
			Home:       home,
			AccessRole: models.ShareRoleWrite,
			IsOwner:    true,
		})
	}
	for _, share := range shares {
		if share.Home == nil {
			continue
		}
		summaries = append(summaries, HomeSummary{
			Home:       *share.Home,
			AccessRole: share.Role,
		})
	}
	return summaries, nil
}

// Update modifies home metadata. Owner only.
func (s *HomeService) Update(ctx context.Context, actorID, homeID string, input UpdateHomeInput) (*models.Home, error) {
	ctx = ensureContext(ctx)

	home, err := requireOwner(ctx, s.db, homeID, actorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if len(updates) == 0 {
		return home, nil
	}

	if err := s.db.WithContext(ctx).Model(home).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("home service: update home: %w", err)
	}
	return home, nil
}

// Delete removes a home and, via cascade, everything under it. Owner only.
func (s *HomeService) Delete(ctx context.Context, actorID, homeID string) error {
	ctx = ensureContext(ctx)

	home, err := requireOwner(ctx, s.db, homeID, actorID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Select("Rooms", "Items", "Tasks", "Paints", "Floorings", "Shares", "PendingShares").
		Delete(home).Error; err != nil {
		return fmt.Errorf("home service: delete home: %w", err)
	}
	return nil
}

// ShareWithUserInput describes a direct share to an existing account.
type ShareWithUserInput struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// ShareWithUser grants an existing account immediate access, skipping the
// invite flow. Owner only; the target must already have an account.
func (s *HomeService) ShareWithUser(ctx context.Context, actorID, homeID string, input ShareWithUserInput) (*models.HomeShare, error) {
	ctx = ensureContext(ctx)

	home, err := requireOwner(ctx, s.db, homeID, actorID)
	if err != nil {
		return nil, err
	}

	role, err := models.ParseShareRole(input.Role)
	if err != nil {
		return nil, ErrBadRole(input.Role)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	var user models.User
	lookupErr := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if lookupErr != nil {
		return nil, fmt.Errorf("home service: find user: %w", lookupErr)
	}

	if user.ID == home.OwnerID {
		return nil, ErrCannotShareWithOwner
	}

	share := &models.HomeShare{
		HomeID: home.ID,
		UserID: user.ID,
		Role:   role,
	}
	if err := s.shares.CreateShare(ctx, share); err != nil {
		return nil, err
	}

	s.record(ctx, actorID, "home.share_granted", home.ID, map[string]any{
		"email": email,
		"role":  string(role),
	})
	return share, nil
}

// ListShares returns the confirmed shares on a home. Owner only.
func (s *HomeService) ListShares(ctx context.Context, actorID, homeID string) ([]models.HomeShare, error) {
	ctx = ensureContext(ctx)

	home, err := requireOwner(ctx, s.db, homeID, actorID)
	if err != nil {
		return nil, err
	}
	return s.shares.ListSharesForHome(ctx, home.ID)
}

// RevokeShare removes a confirmed share, immediately cutting off the
// grantee's access. Owner only.
func (s *HomeService) RevokeShare(ctx context.Context, actorID, homeID, shareID string) error {
	ctx = ensureContext(ctx)

	home, err := requireOwner(ctx, s.db, homeID, actorID)
	if err != nil {
		return err
	}

	if err := s.shares.DeleteShare(ctx, home.ID, shareID); err != nil {
		return err
	}
	s.record(ctx, actorID, "home.share_revoked", home.ID, map[string]any{
		"share_id": shareID,
	})
	return nil
}

// record logs an activity event. Failures never surface to the caller.
func (s *HomeService) record(ctx context.Context, actorID, action, homeID string, metadata map[string]any) {
	if s.activity == nil {
		return
	}
	entry := ActivityEntry{
		ActorID:    actorID,
		Action:     action,
		TargetType: "home",
		TargetID:   homeID,
		Metadata:   metadata,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		logger.WithModule("homes").Warn("activity record failed",
			zap.String("action", action), zap.Error(err))
	}
}

// Access returns the caller's effective policy view of a home without
// loading its content.
func (s *HomeService) Access(ctx context.Context, actorID, homeID string) (access.HomeAccess, error) {
	ctx = ensureContext(ctx)

	home, err := loadHome(ctx, s.db, homeID)
	if err != nil {
		return access.HomeAccess{}, err
	}
	return access.ForHome(home), nil
}
