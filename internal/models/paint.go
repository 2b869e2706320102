package models

// Paint records a paint spec for a home or a single room (never both).
type Paint struct {
	BaseModel

	Name   string `gorm:"not null" json:"name"`
	Brand  string `gorm:"not null" json:"brand"`
	Color  string `gorm:"not null" json:"color"`
	Finish string `gorm:"not null" json:"finish"`
	Code   string `json:"code,omitempty"`
	Notes  string `json:"notes,omitempty"`

	HomeID *string `gorm:"type:uuid;index" json:"home_id,omitempty"`
	RoomID *string `gorm:"type:uuid;index" json:"room_id,omitempty"`

	Home *Home `gorm:"foreignKey:HomeID" json:"home,omitempty"`
	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}
