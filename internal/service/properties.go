package service

import (
	"context"
	"strings"

	"estate-api/internal/apperr"
	"estate-api/internal/model"
	"estate-api/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var (
	errNotPropertyOwner = apperr.New(apperr.Forbidden, "Unauthorized")
	errInvalidProperty  = apperr.New(apperr.InvalidArgument, "Invalid property data.")
	errInvalidPropState = apperr.New(apperr.InvalidArgument, "Invalid property status.")
)

type PropertyFilter struct {
	City     string
	Status   model.PropertyStatus
	MinPrice *float64
	MaxPrice *float64
	// Matched against title and description
	Q     string
	Page  int
	Limit int
}

type PropertyPage struct {
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int64            `json:"total"`
	Items []model.Property `json:"items"`
}

type PropertyInput struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=5000"`
	Address     string  `json:"address" binding:"max=300"`
	City        string  `json:"city" binding:"max=100"`
	Price       float64 `json:"price" binding:"gte=0"`
}

// PropertyPatch holds the fields an owner wants to change, nil means keep
type PropertyPatch struct {
	Title       *string               `json:"title" binding:"omitempty,max=200"`
	Description *string               `json:"description" binding:"omitempty,max=5000"`
	Address     *string               `json:"address" binding:"omitempty,max=300"`
	City        *string               `json:"city" binding:"omitempty,max=100"`
	Price       *float64              `json:"price" binding:"omitempty,gte=0"`
	Status      *model.PropertyStatus `json:"status"`
}

type PropertyService struct {
	DB      *gorm.DB
	Storage storage.Gateway
	Log     *zap.Logger
}

func NewPropertyService(db *gorm.DB, s storage.Gateway, log *zap.Logger) *PropertyService {
	return &PropertyService{DB: db, Storage: s, Log: orNop(log)}
}

func ownerPublic(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "created_at")
}

func documentSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "property_id", "storage_url", "type", "original_name")
}

// List returns one page of properties matching f, newest first
func (s *PropertyService) List(ctx context.Context, f PropertyFilter) (*PropertyPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	f.Limit = min(f.Limit, maxPageSize)

	if f.Status != "" && !f.Status.Valid() {
		return nil, fail(s.Log, "property.list", "", nil, errInvalidPropState)
	}

	q := s.DB.WithContext(ctx).Model(&model.Property{})

	if f.City != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(f.City))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Q != "" {
		like := "%" + strings.ToLower(f.Q) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	// Count and Find each get their own copy of the conditions
	q = q.Session(&gorm.Session{})

	page := PropertyPage{Page: f.Page, Limit: f.Limit, Items: []model.Property{}}

	if err := q.Count(&page.Total).Error; err != nil {
		return nil, fail(s.Log, "property.list", "", nil, dbErr(err))
	}

	err := q.
		Preload("Owner", ownerPublic).
		Preload("Documents", documentSummary).
		Order("created_at DESC").
		Order("id DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&page.Items).
		Error
	if err != nil {
		return nil, fail(s.Log, "property.list", "", nil, dbErr(err))
	}

	return &page, nil
}

// Get returns a property with its owner, rentals and documents
func (s *PropertyService) Get(ctx context.Context, id uint) (*model.Property, error) {
	var p model.Property

	err := s.DB.
		WithContext(ctx).
		Preload("Owner", ownerPublic).
		Preload("Rentals").
		Preload("Documents", documentSummary).
		First(&p, id).
		Error
	if err != nil {
		return nil, fail(s.Log, "property.get", "", id, notFound(err, errPropertyNotFound.Msg))
	}

	return &p, nil
}

func (s *PropertyService) Create(ctx context.Context, in PropertyInput, actor string) (*model.Property, error) {
	if strings.TrimSpace(in.Title) == "" || in.Price < 0 {
		return nil, fail(s.Log, "property.create", actor, nil, errInvalidProperty)
	}

	p := model.Property{
		OwnerID:     actor,
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		City:        in.City,
		Price:       in.Price,
		Status:      model.PropertyAvailable,
	}

	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fail(s.Log, "property.create", actor, nil, dbErr(err))
	}

	return &p, nil
}

// Update applies patch to a property actor owns
func (s *PropertyService) Update(ctx context.Context, id uint, patch PropertyPatch, actor string) (*model.Property, error) {
	const op = "property.update"

	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fail(s.Log, op, actor, id, errInvalidPropState)
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fail(s.Log, op, actor, id, errInvalidProperty)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fail(s.Log, op, actor, id, errInvalidProperty)
	}

	p, err := s.owned(ctx, id, actor)
	if err != nil {
		return nil, fail(s.Log, op, actor, id, err)
	}

	changes := map[string]any{}
	if patch.Title != nil {
		changes["title"] = *patch.Title
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	if patch.Address != nil {
		changes["address"] = *patch.Address
	}
	if patch.City != nil {
		changes["city"] = *patch.City
	}
	if patch.Price != nil {
		changes["price"] = *patch.Price
	}
	if patch.Status != nil {
		changes["status"] = *patch.Status
	}

	if len(changes) == 0 {
		return p, nil
	}

	if err := s.DB.WithContext(ctx).Model(p).Updates(changes).Error; err != nil {
		return nil, fail(s.Log, op, actor, id, dbErr(err))
	}

	if err := s.DB.WithContext(ctx).First(p, id).Error; err != nil {
		return nil, fail(s.Log, op, actor, id, dbErr(err))
	}

	return p, nil
}

// Delete removes a property with its contracts and rentals in one
// transaction. Documents stay with their uploader, unlinked.
func (s *PropertyService) Delete(ctx context.Context, id uint, actor string) error {
	const op = "property.delete"

	if _, err := s.owned(ctx, id, actor); err != nil {
		return fail(s.Log, op, actor, id, err)
	}

	var pdfKeys []string

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Model(&model.Contract{}).
			Where("property_id = ? AND pdf_key <> ''", id).
			Pluck("pdf_key", &pdfKeys).
			Error
		if err != nil {
			return err
		}

		if err := tx.Where("property_id = ?", id).Delete(&model.Contract{}).Error; err != nil {
			return err
		}

		if err := tx.Where("property_id = ?", id).Delete(&model.Rental{}).Error; err != nil {
			return err
		}

		err = tx.
			Model(&model.Document{}).
			Where("property_id = ?", id).
			Update("property_id", nil).
			Error
		if err != nil {
			return err
		}

		return tx.Delete(&model.Property{}, id).Error
	})
	if err != nil {
		return fail(s.Log, op, actor, id, dbErr(err))
	}

	for _, key := range pdfKeys {
		if err := s.Storage.Delete(ctx, key); err != nil {
			s.Log.Warn("Failed to delete contract pdf of removed property", zap.String("key", key), zap.Error(err))
		}
	}

	return nil
}

func (s *PropertyService) owned(ctx context.Context, id uint, actor string) (*model.Property, error) {
	var p model.Property
	if err := s.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, errPropertyNotFound.Msg)
	}

	if p.OwnerID != actor {
		return nil, errNotPropertyOwner
	}

	return &p, nil
}
