package model

import "time"

// DocumentType is the business category of a document. It decides which
// validation rule applies to the upload.
type DocumentType string

const (
	DocTenantIDFront     DocumentType = "TENANT_ID_FRONT"
	DocTenantIDBack      DocumentType = "TENANT_ID_BACK"
	DocTenantIncomeProof DocumentType = "TENANT_INCOME_PROOF"
	DocPropertyPhoto     DocumentType = "PROPERTY_PHOTO"
	DocPropertyDeed      DocumentType = "PROPERTY_DEED"
)

var DocumentTypes = []DocumentType{
	DocTenantIDFront,
	DocTenantIDBack,
	DocTenantIncomeProof,
	DocPropertyPhoto,
	DocPropertyDeed,
}

func (t DocumentType) Valid() bool {
	switch t {
	case DocTenantIDFront, DocTenantIDBack, DocTenantIncomeProof, DocPropertyPhoto, DocPropertyDeed:
		return true
	}

	return false
}

type DocumentStatus string

const (
	DocPendingValidation DocumentStatus = "PENDING_VALIDATION"
	DocApproved          DocumentStatus = "APPROVED"
	DocRejected          DocumentStatus = "REJECTED"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocPendingValidation, DocApproved, DocRejected:
		return true
	}

	return false
}

type Document struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Storage key of the blob, "{type}/{uuid}{ext}". Never changes after insert
	UniqueFileName string `gorm:"uniqueIndex;not null;size:255" json:"uniqueFileName"`
	// Name of the file on the uploader's machine
	OriginalName string         `json:"originalName"`
	MimeType     string         `json:"mimeType"`
	Size         int64          `json:"size"`
	Type         DocumentType   `gorm:"type:varchar(32);not null" json:"type"`
	Status       DocumentStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	UploadedByID string         `gorm:"index;not null" json:"uploadedById"`
	PropertyID   *uint          `gorm:"index" json:"propertyId"`
	// Canonical address of the blob. Empty until the upload is confirmed
	StorageURL string    `json:"storageUrl"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"-"`
}

// Confirmed reports whether the blob behind the document was seen in storage
func (d *Document) Confirmed() bool {
	return d.StorageURL != ""
}
