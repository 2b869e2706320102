package models

// Room belongs to exactly one Home.
type Room struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`

	HomeID string `gorm:"type:uuid;not null;index" json:"home_id"`
	Home   *Home  `gorm:"foreignKey:HomeID" json:"home,omitempty"`

	Items     []Item     `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Tasks     []Task     `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	Paints    []Paint    `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"paints,omitempty"`
	Floorings []Flooring `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"floorings,omitempty"`
}
