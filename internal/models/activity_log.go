package models

import "gorm.io/datatypes"

// ActivityLog records domain events (share granted, invite accepted, task
// completed) for display and troubleshooting. Metadata holds event-specific
// details as JSON.
type ActivityLog struct {
	BaseModel

	ActorID    *string `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action     string  `gorm:"not null;index" json:"action"`
	TargetType string  `gorm:"index" json:"target_type,omitempty"`
	TargetID   string  `gorm:"index" json:"target_id,omitempty"`

	Metadata datatypes.JSON `json:"metadata,omitempty"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
