package model

import "time"

type PropertyStatus string

const (
	PropertyAvailable   PropertyStatus = "AVAILABLE"
	PropertyInProcess   PropertyStatus = "IN_PROCESS"
	PropertyRented      PropertyStatus = "RENTED"
	PropertyUnavailable PropertyStatus = "UNAVAILABLE"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyAvailable, PropertyInProcess, PropertyRented, PropertyUnavailable:
		return true
	}

	return false
}

type Property struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     string         `gorm:"index;not null" json:"ownerId"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	Address     string         `json:"address"`
	City        string         `gorm:"index" json:"city"`
	Price       float64        `json:"price"`
	Status      PropertyStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	Owner     *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Documents []Document `gorm:"foreignKey:PropertyID" json:"documents,omitempty"`
	Rentals   []Rental   `gorm:"foreignKey:PropertyID" json:"rentals,omitempty"`
}
