package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/models"
	"github.com/cjmartens/homestead/pkg/crypto"
	"github.com/cjmartens/homestead/pkg/logger"
	"github.com/cjmartens/homestead/pkg/mail"
	"github.com/cjmartens/homestead/pkg/metrics"
)

const (
	defaultInviteExpiry     = 7 * 24 * time.Hour
	defaultInviteTokenBytes = 48
)

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteBaseURL configures the base URL used to build invite links.
func WithInviteBaseURL(url string) InviteOption {
	return func(s *InviteService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithInviteExpiry overrides the invite token lifetime.
func WithInviteExpiry(d time.Duration) InviteOption {
	return func(s *InviteService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInviteTokenSize adjusts the random token length in bytes.
func WithInviteTokenSize(size int) InviteOption {
	return func(s *InviteService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithInviteClock injects a custom clock primarily for testing.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *InviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithInviteActivity enables activity recording for invite events.
func WithInviteActivity(activity *ActivityService) InviteOption {
	return func(s *InviteService) {
		s.activity = activity
	}
}

// InviteService manages the lifecycle of home share invitations: creation,
// resending, acceptance and revocation. All management operations are owner
// only; acceptance is performed by the invited account.
type InviteService struct {
	db          *gorm.DB
	shares      *ShareStore
	mailer      mail.Mailer
	activity    *ActivityService
	baseURL     string
	expiry      time.Duration
	tokenLength int
	now         func() time.Time
	log         *zap.Logger
}

// NewInviteService constructs an InviteService with the provided dependencies.
func NewInviteService(db *gorm.DB, shares *ShareStore, mailer mail.Mailer, opts ...InviteOption) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}
	if shares == nil {
		return nil, errors.New("invite service: share store is required")
	}

	service := &InviteService{
		db:          db,
		shares:      shares,
		mailer:      mailer,
		expiry:      defaultInviteExpiry,
		tokenLength: defaultInviteTokenBytes,
		now:         time.Now,
		log:         logger.WithModule("invites"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// CreateInviteInput carries the parameters for a new invitation.
type CreateInviteInput struct {
	HomeID string `json:"home_id" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Role   string `json:"role" validate:"required"`
}

// Create issues a new invitation for the given email address. Only the home
// owner may invite. If the email already belongs to an account holding a
// share on the home the call fails with ErrDuplicateShare; a second
// outstanding invite for the same email fails with ErrDuplicateInvite.
// Email delivery is best effort: a send failure is logged and the invite
// still stands.
func (s *InviteService) Create(ctx context.Context, actorID string, input CreateInviteInput) (*models.PendingHomeShare, error) {
	ctx = ensureContext(ctx)

	home, err := requireOwner(ctx, s.db, input.HomeID, actorID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	role, err := models.ParseShareRole(input.Role)
	if err != nil {
		return nil, ErrBadRole(input.Role)
	}

	if owner, err := s.findUserByID(ctx, home.OwnerID); err == nil && owner.Email == email {
		return nil, ErrCannotShareWithOwner
	}

	// An existing account with this email that already holds a share makes
	// the invite pointless.
	if user, err := s.findUserByEmail(ctx, email); err == nil {
		if _, err := s.shares.FindShare(ctx, home.ID, user.ID); err == nil {
			return nil, ErrDuplicateShare
		}
	}

	// Checked before insert; the unique index is the backstop for races.
	if _, err := s.shares.FindPendingByEmail(ctx, home.ID, email); err == nil {
		return nil, ErrDuplicateInvite
	} else if !errors.Is(err, ErrInviteNotFound) {
		return nil, err
	}

	token, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return nil, fmt.Errorf("invite service: generate token: %w", err)
	}

	now := s.now()
	pending := &models.PendingHomeShare{
		HomeID:    home.ID,
		Email:     email,
		Role:      role,
		Token:     token,
		ExpiresAt: now.Add(s.expiry),
	}

	if err := s.shares.CreatePending(ctx, pending); err != nil {
		return nil, err
	}

	metrics.InviteEvents.WithLabelValues("created").Inc()
	s.record(ctx, actorID, "invite.created", home.ID, map[string]any{
		"email": email,
		"role":  string(role),
	})
	s.deliver(ctx, pending, home.Name)

	return pending, nil
}

// Resend extends the expiry of an outstanding invite and re-delivers the
// original link. The token is not rotated, so a link already sitting in the
// invitee's inbox remains valid.
func (s *InviteService) Resend(ctx context.Context, actorID, homeID, inviteID string) (*models.PendingHomeShare, error) {
	ctx = ensureContext(ctx)

	home, err := requireOwner(ctx, s.db, homeID, actorID)
	if err != nil {
		return nil, err
	}

	pending, err := s.findPendingInHome(ctx, home.ID, inviteID)
	if err != nil {
		return nil, err
	}

	pending.ExpiresAt = s.now().Add(s.expiry)
	if err := s.shares.ExtendPending(ctx, pending.ID, pending.ExpiresAt); err != nil {
		return nil, err
	}

	metrics.InviteEvents.WithLabelValues("resent").Inc()
	s.deliver(ctx, pending, home.Name)

	return pending, nil
}

// Revoke deletes an outstanding invite so its token can no longer be
// accepted. Idempotent: revoking an invite that is already gone succeeds.
func (s *InviteService) Revoke(ctx context.Context, actorID, homeID, inviteID string) error {
	ctx = ensureContext(ctx)

	home, err := requireOwner(ctx, s.db, homeID, actorID)
	if err != nil {
		return err
	}

	pending, err := s.findPendingInHome(ctx, home.ID, inviteID)
	if errors.Is(err, ErrInviteNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.shares.DeletePending(ctx, pending.ID); err != nil && !errors.Is(err, ErrInviteNotFound) {
		return err
	}

	metrics.InviteEvents.WithLabelValues("revoked").Inc()
	s.record(ctx, actorID, "invite.revoked", home.ID, map[string]any{
		"email": pending.Email,
	})
	return nil
}

// List returns the outstanding invites for a home. Owner only.
func (s *InviteService) List(ctx context.Context, actorID, homeID string) ([]models.PendingHomeShare, error) {
	ctx = ensureContext(ctx)

	home, err := requireOwner(ctx, s.db, homeID, actorID)
	if err != nil {
		return nil, err
	}
	return s.shares.ListPendingForHome(ctx, home.ID)
}

// InviteDetails is the unauthenticated preview shown on the accept page.
type InviteDetails struct {
	HomeName  string           `json:"home_name"`
	Email     string           `json:"email"`
	Role      models.ShareRole `json:"role"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Info resolves a token to its invite preview without requiring a session.
// Touching an expired invite deletes it and reports ErrInviteExpired.
func (s *InviteService) Info(ctx context.Context, token string) (*InviteDetails, error) {
	ctx = ensureContext(ctx)

	pending, err := s.touch(ctx, token)
	if err != nil {
		return nil, err
	}

	details := &InviteDetails{
		Email:     pending.Email,
		Role:      pending.Role,
		ExpiresAt: pending.ExpiresAt,
	}
	if pending.Home != nil {
		details.HomeName = pending.Home.Name
	}
	return details, nil
}

// Accept redeems a token for the authenticated user, converting the pending
// invite into a confirmed HomeShare in a single transaction. The accepting
// account's email must match the one the invite was issued for.
func (s *InviteService) Accept(ctx context.Context, userID, token string) (*models.HomeShare, error) {
	ctx = ensureContext(ctx)

	user, err := s.findUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending, err := s.touch(ctx, token)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(user.Email, pending.Email) {
		return nil, ErrEmailMismatch
	}

	home, err := loadHome(ctx, s.db, pending.HomeID)
	if err != nil {
		return nil, err
	}
	if home.OwnerID == user.ID {
		return nil, ErrCannotShareWithOwner
	}

	share := &models.HomeShare{
		HomeID: pending.HomeID,
		UserID: user.ID,
		Role:   pending.Role,
	}
	if err := s.shares.AcceptExchange(ctx, pending.ID, share); err != nil {
		return nil, err
	}

	metrics.InviteEvents.WithLabelValues("accepted").Inc()
	s.record(ctx, user.ID, "invite.accepted", pending.HomeID, map[string]any{
		"role": string(pending.Role),
	})
	s.log.Info("invite accepted",
		zap.String("home_id", pending.HomeID),
		zap.String("user_id", user.ID))

	return share, nil
}

// AcceptSignupInput carries the credentials for an invitee without an
// account.
type AcceptSignupInput struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// AcceptWithSignup redeems a token for an email that has no account yet:
// the user, the confirmed share and the pending-row deletion all commit in
// one transaction. An existing account for the invited email surfaces as
// ErrAccountExists and directs the invitee to sign in instead.
func (s *InviteService) AcceptWithSignup(ctx context.Context, token string, input AcceptSignupInput) (*models.User, *models.HomeShare, error) {
	ctx = ensureContext(ctx)

	pending, err := s.touch(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.findUserByEmail(ctx, pending.Email); err == nil {
		return nil, nil, ErrAccountExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, nil, err
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("invite service: hash password: %w", err)
	}

	user := &models.User{
		Email:        pending.Email,
		Name:         strings.TrimSpace(input.Name),
		Password:     hash,
		Role:         models.UserRoleUser,
		Tier:         models.UserTierFree,
		AuthProvider: "local",
	}
	share := &models.HomeShare{
		HomeID: pending.HomeID,
		Role:   pending.Role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrAccountExists
			}
			return fmt.Errorf("invite service: create user: %w", err)
		}

		share.UserID = user.ID
		if err := tx.Create(share).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicateShare
			}
			return fmt.Errorf("invite service: create share: %w", err)
		}

		result := tx.Delete(&models.PendingHomeShare{}, "id = ?", pending.ID)
		if result.Error != nil {
			return fmt.Errorf("invite service: delete pending: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInviteNotFound
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.InviteEvents.WithLabelValues("accepted").Inc()
	s.record(ctx, user.ID, "invite.accepted", pending.HomeID, map[string]any{
		"role": string(pending.Role),
	})
	s.log.Info("invite accepted with signup",
		zap.String("home_id", pending.HomeID),
		zap.String("user_id", user.ID))

	return user, share, nil
}

// touch loads an invite by token and applies lazy expiry: an expired row is
// deleted on sight and surfaces as ErrInviteExpired.
func (s *InviteService) touch(ctx context.Context, token string) (*models.PendingHomeShare, error) {
	pending, err := s.shares.FindPendingByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if pending.Expired(s.now()) {
		if err := s.shares.DeletePending(ctx, pending.ID); err != nil && !errors.Is(err, ErrInviteNotFound) {
			s.log.Warn("failed to purge expired invite",
				zap.String("invite_id", pending.ID),
				zap.Error(err))
		}
		metrics.InviteEvents.WithLabelValues("expired").Inc()
		return nil, ErrInviteExpired
	}

	return pending, nil
}

func (s *InviteService) findPendingInHome(ctx context.Context, homeID, inviteID string) (*models.PendingHomeShare, error) {
	var pending models.PendingHomeShare
	err := s.db.WithContext(ctx).
		Where("id = ? AND home_id = ?", inviteID, homeID).
		First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invite service: find pending: %w", err)
	}
	return &pending, nil
}

func (s *InviteService) findUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invite service: find user: %w", err)
	}
	return &user, nil
}

func (s *InviteService) findUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invite service: find user: %w", err)
	}
	return &user, nil
}

// record logs an activity event. Failures never surface to the caller.
func (s *InviteService) record(ctx context.Context, actorID, action, homeID string, metadata map[string]any) {
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
		s.log.Warn("activity record failed", zap.String("action", action), zap.Error(err))
	}
}

// deliver sends the invite email. Delivery failures are logged but never
// fail the operation; the invite can be resent.
func (s *InviteService) deliver(ctx context.Context, pending *models.PendingHomeShare, homeName string) {
	if s.mailer == nil {
		return
	}

	link := s.inviteLink(pending.Token)
	message := mail.Message{
		To:      []string{pending.Email},
		Subject: fmt.Sprintf("You've been invited to %s", homeName),
		Body:    s.inviteBody(link, homeName, pending.Role),
	}
	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		s.log.Warn("invite email delivery failed",
			zap.String("email", pending.Email),
			zap.Error(err))
	}
}

func (s *InviteService) inviteLink(token string) string {
	base := s.baseURL
	if base == "" {
		base = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/invite/accept/%s", base, token)
}

func (s *InviteService) inviteBody(link, homeName string, role models.ShareRole) string {
	verb := "view"
	if role == models.ShareRoleWrite {
		verb = "view and manage"
	}
	return fmt.Sprintf(
		"You have been invited to %s the home %q on Homestead.\n\n"+
			"Open the link below to accept the invitation:\n%s\n\n"+
			"If you were not expecting this invitation you can ignore this email.",
		verb, homeName, link,
	)
}
