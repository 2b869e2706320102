package models

import "time"

// Item is a tracked appliance or fixture inside a room.
type Item struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`

	Manufacturer string `json:"manufacturer,omitempty"`
	ModelNumber  string `json:"model_number,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	ManualURL    string `json:"manual_url,omitempty"`

	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	WarrantyUntil *time.Time `json:"warranty_until,omitempty"`

	HomeID string `gorm:"type:uuid;not null;index" json:"home_id"`
	RoomID string `gorm:"type:uuid;not null;index" json:"room_id"`
	Home   *Home  `gorm:"foreignKey:HomeID" json:"home,omitempty"`
	Room   *Room  `gorm:"foreignKey:RoomID" json:"room,omitempty"`

	Tasks []Task `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}
