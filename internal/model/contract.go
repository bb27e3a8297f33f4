package model

import "time"

type ContractStatus string

const (
	ContractDraft ContractStatus = "DRAFT"
)

type Contract struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	RentalID    uint           `gorm:"uniqueIndex;not null" json:"rentalId"` // One contract per accepted rental
	PropertyID  uint           `gorm:"index;not null" json:"propertyId"`
	OwnerID     string         `gorm:"index;not null" json:"ownerId"`
	RenterID    string         `gorm:"index;not null" json:"renterId"`
	Status      ContractStatus `gorm:"type:varchar(16);not null" json:"status"`
	Price       float64        `json:"price"` // Property price at the time of acceptance
	IsSigned    bool           `gorm:"default:false" json:"isSigned"`
	IsNotarized bool           `gorm:"default:false" json:"isNotarized"`
	PdfKey      string         `json:"-"`
	PdfURL      string         `json:"pdfUrl"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
