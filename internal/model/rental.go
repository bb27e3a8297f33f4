package model

import "time"

type RentalStatus string

const (
	RentalPending   RentalStatus = "PENDING"
	RentalAccepted  RentalStatus = "ACCEPTED"
	RentalRejected  RentalStatus = "REJECTED"
	RentalCancelled RentalStatus = "CANCELLED"
)

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalPending, RentalAccepted, RentalRejected, RentalCancelled:
		return true
	}

	return false
}

// Rental is an application of a renter for a property. The partial unique
// index keeps a single PENDING application per (property, renter) pair.
type Rental struct {
	ID         uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint         `gorm:"not null;index;uniqueIndex:idx_rentals_pending_pair,where:status = 'PENDING'" json:"propertyId"`
	RenterID   string       `gorm:"not null;index;uniqueIndex:idx_rentals_pending_pair" json:"renterId"`
	Status     RentalStatus `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Renter   *User     `gorm:"foreignKey:RenterID" json:"renter,omitempty"`
}
