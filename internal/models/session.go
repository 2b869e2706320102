package models

import "time"

// Session is a DB-backed refresh session. The refresh token itself is
// stored hashed; only the hash ever touches the database.
type Session struct {
	BaseModel

	UserID           string `gorm:"type:uuid;not null;index" json:"user_id"`
	RefreshTokenHash string `gorm:"uniqueIndex;not null" json:"-"`

	UserAgent string `json:"user_agent,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`

	ExpiresAt time.Time  `gorm:"index;not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// Active reports whether the session is usable at the given instant.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
