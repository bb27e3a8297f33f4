package service

import (
	"bytes"
	"context"

	"estate-api/internal/apperr"
	"estate-api/internal/authz"
	"estate-api/internal/model"
	"estate-api/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errContractNotFound = apperr.New(apperr.NotFound, "Contract not found.")
	errPdfNotGenerated  = apperr.New(apperr.NotFound, "PDF has not been generated yet.")
	errNotSigned        = apperr.New(apperr.InvalidArgument, "Contract must be signed before it can be notarized.")
)

type ContractService struct {
	DB       *gorm.DB
	Storage  storage.Gateway
	Renderer ContractRenderer
	Log      *zap.Logger
}

func NewContractService(db *gorm.DB, s storage.Gateway, r ContractRenderer, log *zap.Logger) *ContractService {
	if r == nil {
		r = PDFRenderer{}
	}

	return &ContractService{DB: db, Storage: s, Renderer: r, Log: orNop(log)}
}

// Get returns a contract to one of its parties
func (s *ContractService) Get(ctx context.Context, id uint, actor string) (*model.Contract, error) {
	c, err := s.load(ctx, id, authz.OpContractView, actor)
	if err != nil {
		return nil, fail(s.Log, "contract.get", actor, id, err)
	}

	return c, nil
}

// ListMine returns contracts actor is a party of, newest first
func (s *ContractService) ListMine(ctx context.Context, actor string) ([]model.Contract, error) {
	contracts := []model.Contract{}

	err := s.DB.
		WithContext(ctx).
		Where("owner_id = ? OR renter_id = ?", actor, actor).
		Order("created_at DESC").
		Order("id DESC").
		Find(&contracts).
		Error
	if err != nil {
		return nil, fail(s.Log, "contract.list_mine", actor, nil, dbErr(err))
	}

	return contracts, nil
}

func (s *ContractService) Sign(ctx context.Context, id uint, actor string) (*model.Contract, error) {
	const op = "contract.sign"

	c, err := s.load(ctx, id, authz.OpContractSign, actor)
	if err != nil {
		return nil, fail(s.Log, op, actor, id, err)
	}

	if err := s.DB.WithContext(ctx).Model(c).Update("is_signed", true).Error; err != nil {
		return nil, fail(s.Log, op, actor, id, dbErr(err))
	}
	c.IsSigned = true

	return c, nil
}

func (s *ContractService) Notarize(ctx context.Context, id uint, actor string) (*model.Contract, error) {
	const op = "contract.notarize"

	c, err := s.load(ctx, id, authz.OpContractNotarize, actor)
	if err != nil {
		return nil, fail(s.Log, op, actor, id, err)
	}

	if !c.IsSigned {
		return nil, fail(s.Log, op, actor, id, errNotSigned)
	}

	if err := s.DB.WithContext(ctx).Model(c).Update("is_notarized", true).Error; err != nil {
		return nil, fail(s.Log, op, actor, id, dbErr(err))
	}
	c.IsNotarized = true

	return c, nil
}

// GeneratePdf renders the contract, stores it and replaces the previous
// PDF if there was one.
func (s *ContractService) GeneratePdf(ctx context.Context, id uint, actor string) (*model.Contract, error) {
	const op = "contract.generate_pdf"

	c, err := s.load(ctx, id, authz.OpContractView, actor)
	if err != nil {
		return nil, fail(s.Log, op, actor, id, err)
	}

	sheet := ContractSheet{Contract: *c}
	db := s.DB.WithContext(ctx)

	if err := db.First(&sheet.Property, c.PropertyID).Error; err != nil {
		return nil, fail(s.Log, op, actor, id, notFound(err, errPropertyNotFound.Msg))
	}
	if err := db.Where("id = ?", c.OwnerID).First(&sheet.Owner).Error; err != nil {
		return nil, fail(s.Log, op, actor, id, notFound(err, "Owner not found."))
	}
	if err := db.Where("id = ?", c.RenterID).First(&sheet.Renter).Error; err != nil {
		return nil, fail(s.Log, op, actor, id, notFound(err, "Renter not found."))
	}

	pdf, err := s.Renderer.Render(sheet)
	if err != nil {
		return nil, fail(s.Log, op, actor, id, apperr.Wrap(apperr.Internal, "failed to render contract", err))
	}

	key := "contracts/" + uuid.NewString() + ".pdf"
	if err := s.Storage.Put(ctx, key, bytes.NewReader(pdf), int64(len(pdf)), "application/pdf"); err != nil {
		return nil, fail(s.Log, op, actor, id, apperr.Wrap(apperr.StorageError, "failed to upload contract", err))
	}

	oldKey := c.PdfKey
	url := s.Storage.URL(key)

	err = db.
		Model(c).
		Updates(map[string]any{"pdf_key": key, "pdf_url": url}).
		Error
	if err != nil {
		if derr := s.Storage.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.Log.Error("Failed to cleanup contract pdf", zap.String("key", key), zap.Error(derr))
		}

		return nil, fail(s.Log, op, actor, id, dbErr(err))
	}
	c.PdfKey = key
	c.PdfURL = url

	if oldKey != "" {
		if err := s.Storage.Delete(ctx, oldKey); err != nil {
			s.Log.Warn("Failed to delete previous contract pdf", zap.String("key", oldKey), zap.Error(err))
		}
	}

	return c, nil
}

// PdfDownloadURL mints a read URL for the generated PDF
func (s *ContractService) PdfDownloadURL(ctx context.Context, id uint, actor string) (string, error) {
	const op = "contract.pdf_url"

	c, err := s.load(ctx, id, authz.OpContractView, actor)
	if err != nil {
		return "", fail(s.Log, op, actor, id, err)
	}

	if c.PdfKey == "" {
		return "", fail(s.Log, op, actor, id, errPdfNotGenerated)
	}

	url, err := s.Storage.PresignGet(ctx, c.PdfKey, SignedURLTTL)
	if err != nil {
		return "", fail(s.Log, op, actor, id, apperr.Wrap(apperr.StorageError, "failed to create download url", err))
	}

	return url, nil
}

func (s *ContractService) load(ctx context.Context, id uint, op authz.Operation, actor string) (*model.Contract, error) {
	var c model.Contract
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, errContractNotFound.Msg)
	}

	err := authz.Check(op, actor, authz.Snapshot{
		PropertyID:      &c.PropertyID,
		PropertyOwnerID: c.OwnerID,
		RenterID:        c.RenterID,
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}
