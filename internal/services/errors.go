package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/cjmartens/homestead/pkg/errors"
)

var (
	// ErrHomeNotFound indicates the home does not exist or is invisible to the caller.
	ErrHomeNotFound = apperrors.New("HOME_NOT_FOUND", "home not found", 404)
	// ErrNotOwner indicates the caller is not the owner of the home.
	ErrNotOwner = apperrors.New("NOT_OWNER", "only the home owner may perform this action", 403)
	// ErrWriteForbidden indicates the caller lacks write access to the home.
	ErrWriteForbidden = apperrors.New("WRITE_FORBIDDEN", "write access required", 403)

	// ErrInviteNotFound indicates no pending invite matches the provided token.
	ErrInviteNotFound = apperrors.New("INVITE_NOT_FOUND", "invite not found", 404)
	// ErrInviteExpired indicates the invite token has expired.
	ErrInviteExpired = apperrors.New("INVITE_EXPIRED", "invite has expired", 410)
	// ErrEmailMismatch indicates the accepting account's email does not match the invite.
	ErrEmailMismatch = apperrors.New("INVITE_EMAIL_MISMATCH", "invite was issued for a different email address", 403)
	// ErrDuplicateInvite indicates a pending invite already exists for the email and home.
	ErrDuplicateInvite = apperrors.New("DUPLICATE_INVITE", "an invite for this email is already pending", 409)
	// ErrDuplicateShare indicates the user already holds a share on the home.
	ErrDuplicateShare = apperrors.New("DUPLICATE_SHARE", "user already has access to this home", 409)
	// ErrCannotShareWithOwner rejects granting the owner a share on their own home.
	ErrCannotShareWithOwner = apperrors.New("SHARE_WITH_OWNER", "owner already has full access", 400)

	// ErrShareNotFound indicates no confirmed share exists for the user and home.
	ErrShareNotFound = apperrors.New("SHARE_NOT_FOUND", "share not found", 404)
	// ErrAccountExists indicates signup collided with an existing account.
	ErrAccountExists = apperrors.New("ACCOUNT_EXISTS", "an account with this email already exists", 409)
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "user not found", 404)
	// ErrHomeLimitReached indicates the free tier home allowance is exhausted.
	ErrHomeLimitReached = apperrors.New("HOME_LIMIT_REACHED", "home limit reached for current plan", 403)

	// ErrTaskNotFound indicates the task does not exist within the home.
	ErrTaskNotFound = apperrors.New("TASK_NOT_FOUND", "task not found", 404)
	// ErrRoomNotFound indicates the room does not exist within the home.
	ErrRoomNotFound = apperrors.New("ROOM_NOT_FOUND", "room not found", 404)
	// ErrItemNotFound indicates the item does not exist within the home.
	ErrItemNotFound = apperrors.New("ITEM_NOT_FOUND", "item not found", 404)
	// ErrPaintNotFound indicates the paint record does not exist within the home.
	ErrPaintNotFound = apperrors.New("PAINT_NOT_FOUND", "paint not found", 404)
	// ErrFlooringNotFound indicates the flooring record does not exist within the home.
	ErrFlooringNotFound = apperrors.New("FLOORING_NOT_FOUND", "flooring not found", 404)
)

// ErrBadRole builds a 400 for an unrecognised share role value.
func ErrBadRole(value string) *apperrors.AppError {
	return apperrors.NewBadRequest(fmt.Sprintf("invalid share role %q", value))
}

// ErrBadTaskStatus builds a 400 for an unrecognised task status.
func ErrBadTaskStatus(value string) *apperrors.AppError {
	return apperrors.NewBadRequest(fmt.Sprintf("invalid task status %q", value))
}

// ErrBadRecurrence builds a 400 for an unrecognised recurrence unit.
func ErrBadRecurrence(value string) *apperrors.AppError {
	return apperrors.NewBadRequest(fmt.Sprintf("invalid recurrence unit %q", value))
}

// ErrBadInterval builds a 400 for a non-positive recurrence interval.
func ErrBadInterval(value int) *apperrors.AppError {
	return apperrors.NewBadRequest(fmt.Sprintf("recurrence interval must be at least 1, got %d", value))
}

// ErrBadLocation builds a 400 for an invalid attachment target.
func ErrBadLocation(err error) *apperrors.AppError {
	return apperrors.NewBadRequest(err.Error())
}

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}
