package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/models"
	"github.com/cjmartens/homestead/pkg/crypto"
)

// UserService manages account records: local signups, OAuth provisioning
// and profile maintenance.
type UserService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, now: time.Now}, nil
}

// SignupInput carries the fields for a new local account.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Timezone string `json:"timezone" validate:"max=64"`
}

// UpdateProfileInput carries optional profile changes.
type UpdateProfileInput struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Timezone *string `json:"timezone" validate:"omitempty,max=64"`
}

// Signup creates a local account with a bcrypt-hashed password. A colliding
// email surfaces as ErrAccountExists.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         strings.TrimSpace(input.Name),
		Password:     hash,
		Role:         models.UserRoleUser,
		Tier:         models.UserTierFree,
		Timezone:     strings.TrimSpace(input.Timezone),
		AuthProvider: "local",
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}
	return user, nil
}

// ProvisionExternal finds or creates the account for an OAuth identity. The
// first login with an unknown email creates a passwordless account bound to
// the provider.
func (s *UserService) ProvisionExternal(ctx context.Context, provider, email, name string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("user service: external identity has no email")
	}

	user, err := s.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         models.UserRoleUser,
		Tier:         models.UserTierFree,
		AuthProvider: provider,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Concurrent first login; the other request won.
			return s.FindByEmail(ctx, email)
		}
		return nil, fmt.Errorf("user service: provision user: %w", err)
	}
	return user, nil
}

// FindByID loads an account by id.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}
	return &user, nil
}

// FindByEmail loads an account by its normalised email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies the provided profile changes.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Timezone != nil {
		updates["timezone"] = strings.TrimSpace(*input.Timezone)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: update profile: %w", err)
	}
	return user, nil
}

// TouchLastLogin records a successful authentication.
func (s *UserService) TouchLastLogin(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", &now).Error; err != nil {
		return fmt.Errorf("user service: touch last login: %w", err)
	}
	return nil
}
