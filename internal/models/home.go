package models

// Home is the top-level owned resource. The owner has implicit full access
// and is never represented as a share row.
type Home struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Address     string `gorm:"not null" json:"address"`
	Description string `json:"description,omitempty"`

	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Rooms     []Room     `gorm:"foreignKey:HomeID;constraint:OnDelete:CASCADE" json:"rooms,omitempty"`
	Items     []Item     `gorm:"foreignKey:HomeID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Tasks     []Task     `gorm:"foreignKey:HomeID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	Paints    []Paint    `gorm:"foreignKey:HomeID;constraint:OnDelete:CASCADE" json:"paints,omitempty"`
	Floorings []Flooring `gorm:"foreignKey:HomeID;constraint:OnDelete:CASCADE" json:"floorings,omitempty"`

	Shares        []HomeShare        `gorm:"foreignKey:HomeID;constraint:OnDelete:CASCADE" json:"shares,omitempty"`
	PendingShares []PendingHomeShare `gorm:"foreignKey:HomeID;constraint:OnDelete:CASCADE" json:"-"`
}
