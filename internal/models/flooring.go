package models

// Flooring records a flooring spec for a home or a single room (never both).
type Flooring struct {
	BaseModel

	Name     string `gorm:"not null" json:"name"`
	Type     string `gorm:"not null" json:"type"`
	Material string `gorm:"not null" json:"material"`
	Brand    string `gorm:"not null" json:"brand"`
	Color    string `json:"color,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	Notes    string `json:"notes,omitempty"`

	HomeID *string `gorm:"type:uuid;index" json:"home_id,omitempty"`
	RoomID *string `gorm:"type:uuid;index" json:"room_id,omitempty"`

	Home *Home `gorm:"foreignKey:HomeID" json:"home,omitempty"`
	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}
