package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"estate-api/internal/apperr"
	"estate-api/internal/authz"
	"estate-api/internal/model"
	"estate-api/internal/storage"
	"estate-api/pkg/validators"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

var (
	errDocumentNotFound   = apperr.New(apperr.NotFound, "Document not found.")
	errPropertyNotFound   = apperr.New(apperr.NotFound, "Property not found.")
	errUploadNotConfirmed = apperr.New(apperr.UploadNotConfirmed, "File was not uploaded to storage.")
	errInvalidDocStatus   = apperr.New(apperr.InvalidArgument, "Invalid status.")
)

// UploadRequest is the metadata a client declares about a file
type UploadRequest struct {
	OriginalName string
	Type         model.DocumentType
	Size         int64
	MimeType     string
	PropertyID   *uint
}

// PreparedUpload is handed back by PrepareUpload. The client PUTs the file
// to UploadURL with the declared content type and then confirms DocumentID.
type PreparedUpload struct {
	UploadURL  string `json:"uploadUrl"`
	DocumentID uint   `json:"documentId"`
}

type DocumentService struct {
	DB      *gorm.DB
	Storage storage.Gateway
	Log     *zap.Logger
}

func NewDocumentService(db *gorm.DB, s storage.Gateway, log *zap.Logger) *DocumentService {
	return &DocumentService{DB: db, Storage: s, Log: orNop(log)}
}

// StorageKey builds the immutable object key of a new document
func StorageKey(t model.DocumentType, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !safeExt.MatchString(ext) {
		ext = ""
	}

	return strings.ToLower(string(t)) + "/" + uuid.NewString() + ext
}

// PrepareUpload is the first step of the two step upload. The row is
// created before the client writes anything, ConfirmUpload settles it.
func (s *DocumentService) PrepareUpload(ctx context.Context, req UploadRequest, actor string) (*PreparedUpload, error) {
	const op = "document.prepare_upload"

	if err := validators.DocumentValidator(req.Type, req.Size, req.MimeType); err != nil {
		return nil, fail(s.Log, op, actor, req.PropertyID, err)
	}

	if err := s.authorizeProperty(ctx, req.PropertyID, actor); err != nil {
		return nil, fail(s.Log, op, actor, req.PropertyID, err)
	}

	doc := model.Document{
		UniqueFileName: StorageKey(req.Type, req.OriginalName),
		OriginalName:   req.OriginalName,
		MimeType:       req.MimeType,
		Size:           req.Size,
		Type:           req.Type,
		Status:         model.DocPendingValidation,
		UploadedByID:   actor,
		PropertyID:     req.PropertyID,
	}

	if err := s.DB.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, fail(s.Log, op, actor, req.PropertyID, dbErr(err))
	}

	url, err := s.Storage.PresignPut(ctx, doc.UniqueFileName, req.MimeType, SignedURLTTL)
	if err != nil {
		// Nothing was written yet, the row would only be an orphan
		if derr := s.DB.WithContext(ctx).Delete(&model.Document{}, doc.ID).Error; derr != nil {
			s.Log.Error("Failed to remove document after presign failure", zap.Uint("documentID", doc.ID), zap.Error(derr))
		}

		return nil, fail(s.Log, op, actor, doc.ID, apperr.Wrap(apperr.StorageError, "failed to create upload url", err))
	}

	return &PreparedUpload{UploadURL: url, DocumentID: doc.ID}, nil
}

// ConfirmUpload checks the blob of a prepared upload really landed in
// storage. A missing blob drops the row.
func (s *DocumentService) ConfirmUpload(ctx context.Context, id uint, actor string) (*model.Document, error) {
	const op = "document.confirm_upload"

	var doc model.Document
	err := s.DB.
		WithContext(ctx).
		Where("id = ? AND uploaded_by_id = ?", id, actor).
		First(&doc).
		Error
	if err != nil {
		return nil, fail(s.Log, op, actor, id, notFound(err, errDocumentNotFound.Msg))
	}

	if doc.Confirmed() {
		return &doc, nil
	}

	ok, err := s.Storage.Exists(ctx, doc.UniqueFileName)
	if err != nil {
		return nil, fail(s.Log, op, actor, id, apperr.Wrap(apperr.StorageError, "failed to check storage", err))
	}

	if !ok {
		if err := s.DB.WithContext(ctx).Delete(&doc).Error; err != nil {
			return nil, fail(s.Log, op, actor, id, dbErr(err))
		}

		return nil, fail(s.Log, op, actor, id, errUploadNotConfirmed)
	}

	doc.StorageURL = s.Storage.URL(doc.UniqueFileName)
	err = s.DB.
		WithContext(ctx).
		Model(&doc).
		Update("storage_url", doc.StorageURL).
		Error
	if err != nil {
		return nil, fail(s.Log, op, actor, id, dbErr(err))
	}

	return &doc, nil
}

// SuperUpload receives the file itself. The blob goes first, the row only
// after it was stored.
func (s *DocumentService) SuperUpload(ctx context.Context, req UploadRequest, body io.ReadSeeker, actor string) (*model.Document, error) {
	const op = "document.super_upload"

	if err := validators.DocumentValidator(req.Type, req.Size, req.MimeType); err != nil {
		return nil, fail(s.Log, op, actor, req.PropertyID, err)
	}

	if err := validators.ContentValidator(body, req.MimeType); err != nil {
		return nil, fail(s.Log, op, actor, req.PropertyID, err)
	}

	if err := s.authorizeProperty(ctx, req.PropertyID, actor); err != nil {
		return nil, fail(s.Log, op, actor, req.PropertyID, err)
	}

	key := StorageKey(req.Type, req.OriginalName)

	if err := s.Storage.Put(ctx, key, body, req.Size, req.MimeType); err != nil {
		return nil, fail(s.Log, op, actor, key, apperr.Wrap(apperr.StorageError, "failed to upload file", err))
	}

	doc := model.Document{
		UniqueFileName: key,
		OriginalName:   req.OriginalName,
		MimeType:       req.MimeType,
		Size:           req.Size,
		Type:           req.Type,
		Status:         model.DocPendingValidation,
		UploadedByID:   actor,
		PropertyID:     req.PropertyID,
		StorageURL:     s.Storage.URL(key),
	}

	if err := s.DB.WithContext(ctx).Create(&doc).Error; err != nil {
		if derr := s.Storage.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.Log.Error("Failed to cleanup blob after failed insert", zap.String("key", key), zap.Error(derr))
		}

		return nil, fail(s.Log, op, actor, key, dbErr(err))
	}

	return &doc, nil
}

// Review sets the validation status of a document. Any defined status can
// be set again, reviews aren't final.
func (s *DocumentService) Review(ctx context.Context, id uint, status model.DocumentStatus, actor string) (*model.Document, error) {
	const op = "document.review"

	if !status.Valid() {
		return nil, fail(s.Log, op, actor, id, errInvalidDocStatus)
	}

	doc, err := s.get(ctx, id)
	if err != nil {
		return nil, fail(s.Log, op, actor, id, err)
	}

	if err := s.authorize(ctx, authz.OpReview, doc, actor); err != nil {
		return nil, fail(s.Log, op, actor, id, err)
	}

	doc.Status = status
	err = s.DB.
		WithContext(ctx).
		Model(doc).
		Update("status", status).
		Error
	if err != nil {
		return nil, fail(s.Log, op, actor, id, dbErr(err))
	}

	return doc, nil
}

func (s *DocumentService) ListMine(ctx context.Context, actor string) ([]model.Document, error) {
	docs := []model.Document{}

	err := s.DB.
		WithContext(ctx).
		Where("uploaded_by_id = ?", actor).
		Order("created_at DESC").
		Order("id DESC").
		Find(&docs).
		Error
	if err != nil {
		return nil, fail(s.Log, "document.list_mine", actor, nil, dbErr(err))
	}

	return docs, nil
}

// DownloadURL mints a short lived read URL for a confirmed document
func (s *DocumentService) DownloadURL(ctx context.Context, id uint, actor string) (string, error) {
	const op = "document.download_url"

	doc, err := s.get(ctx, id)
	if err != nil {
		return "", fail(s.Log, op, actor, id, err)
	}

	if err := s.authorize(ctx, authz.OpDownload, doc, actor); err != nil {
		return "", fail(s.Log, op, actor, id, err)
	}

	if !doc.Confirmed() {
		return "", fail(s.Log, op, actor, id, errUploadNotConfirmed)
	}

	url, err := s.Storage.PresignGet(ctx, doc.UniqueFileName, SignedURLTTL)
	if err != nil {
		return "", fail(s.Log, op, actor, id, apperr.Wrap(apperr.StorageError, "failed to create download url", err))
	}

	return url, nil
}

// Delete removes the blob and then the row. If storage fails the row stays
// so the delete can be retried.
func (s *DocumentService) Delete(ctx context.Context, id uint, actor string) error {
	const op = "document.delete"

	doc, err := s.get(ctx, id)
	if err != nil {
		return fail(s.Log, op, actor, id, err)
	}

	if err := s.authorize(ctx, authz.OpDelete, doc, actor); err != nil {
		return fail(s.Log, op, actor, id, err)
	}

	if err := s.Storage.Delete(ctx, doc.UniqueFileName); err != nil {
		return fail(s.Log, op, actor, id, apperr.Wrap(apperr.StorageError, "failed to delete file", err))
	}

	if err := s.DB.WithContext(ctx).Delete(doc).Error; err != nil {
		return fail(s.Log, op, actor, id, dbErr(err))
	}

	return nil
}

func (s *DocumentService) get(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := s.DB.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, notFound(err, errDocumentNotFound.Msg)
	}

	return &doc, nil
}

// authorizeProperty lets only the owner attach a document to a property
func (s *DocumentService) authorizeProperty(ctx context.Context, propertyID *uint, actor string) error {
	if propertyID == nil {
		return nil
	}

	var p model.Property
	err := s.DB.
		WithContext(ctx).
		Select("id", "owner_id").
		First(&p, *propertyID).
		Error
	if err != nil {
		return notFound(err, errPropertyNotFound.Msg)
	}

	return authz.Check(authz.OpAttachToProperty, actor, authz.Snapshot{
		PropertyID:      propertyID,
		PropertyOwnerID: p.OwnerID,
	})
}

func (s *DocumentService) authorize(ctx context.Context, op authz.Operation, doc *model.Document, actor string) error {
	snap, err := s.snapshot(ctx, doc, actor)
	if err != nil {
		return err
	}

	d := authz.Decide(op, actor, snap)
	s.Log.Debug("Authorization decided",
		zap.String("operation", string(op)),
		zap.String("userID", actor),
		zap.Uint("documentID", doc.ID),
		zap.Bool("allowed", d.Allowed),
		zap.String("rule", d.Rule),
	)

	return authz.Check(op, actor, snap)
}

// snapshot loads what the resolver needs to know about doc
func (s *DocumentService) snapshot(ctx context.Context, doc *model.Document, actor string) (authz.Snapshot, error) {
	snap := authz.Snapshot{
		UploaderID: doc.UploadedByID,
		PropertyID: doc.PropertyID,
	}

	if doc.PropertyID != nil {
		var p model.Property
		err := s.DB.
			WithContext(ctx).
			Select("id", "owner_id").
			First(&p, *doc.PropertyID).
			Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return snap, dbErr(err)
		}

		snap.PropertyOwnerID = p.OwnerID
		return snap, nil
	}

	var n int64
	err := s.DB.
		WithContext(ctx).
		Model(&model.Rental{}).
		Joins("JOIN properties ON properties.id = rentals.property_id").
		Where("rentals.renter_id = ? AND properties.owner_id = ?", doc.UploadedByID, actor).
		Count(&n).
		Error
	if err != nil {
		return snap, dbErr(err)
	}

	snap.UploaderRentsFromActor = n > 0
	return snap, nil
}
