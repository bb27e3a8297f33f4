package validators

import (
	"estate-api/internal/apperr"
	"estate-api/internal/model"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimePDF  = "application/pdf"
)

// DocumentRule is the upload ceiling and the accepted content types for one
// document category.
type DocumentRule struct {
	MaxSize      int64
	AllowedMimes []string
}

var documentRules = map[model.DocumentType]DocumentRule{
	model.DocTenantIDFront:     {MaxSize: 5 << 20, AllowedMimes: []string{mimeJPEG, mimePNG}},
	model.DocTenantIDBack:      {MaxSize: 5 << 20, AllowedMimes: []string{mimeJPEG, mimePNG}},
	model.DocTenantIncomeProof: {MaxSize: 10 << 20, AllowedMimes: []string{mimePDF}},
	model.DocPropertyPhoto:     {MaxSize: 15 << 20, AllowedMimes: []string{mimeJPEG, mimePNG}},
	model.DocPropertyDeed:      {MaxSize: 20 << 20, AllowedMimes: []string{mimePDF}},
}

var (
	ErrInvalidCategory = apperr.New(apperr.InvalidArgument, "Invalid document type provided.")
	ErrInvalidSize     = apperr.New(apperr.InvalidArgument, "File size must be a positive number.")
)

// RuleFor returns the rule of a category. ok is false for unknown categories
func RuleFor(t model.DocumentType) (DocumentRule, bool) {
	r, ok := documentRules[t]
	return r, ok
}

// DocumentValidator checks a declared upload against the rule of its
// category. It has to pass before anything is written to storage.
func DocumentValidator(t model.DocumentType, size int64, mimeType string) error {
	rule, ok := RuleFor(t)
	if !ok {
		return ErrInvalidCategory
	}

	if size <= 0 {
		return ErrInvalidSize
	}

	if size > rule.MaxSize {
		return apperr.New(apperr.PayloadTooLarge, fmt.Sprintf("File size exceeds the limit of %dMB.", rule.MaxSize>>20))
	}

	if !slices.Contains(rule.AllowedMimes, normalizeMime(mimeType)) {
		return apperr.New(apperr.UnsupportedMediaType, "Invalid MIME type. Allowed: "+strings.Join(rule.AllowedMimes, ", "))
	}

	return nil
}

// ContentValidator sniffs the first bytes of r and makes sure the real type
// matches what the client declared. Headers are easy to spoof, the bytes
// aren't. r is rewound afterwards.
func ContentValidator(r io.ReadSeeker, declared string) error {
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to inspect file", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to rewind file", err)
	}

	if !detected.Is(normalizeMime(declared)) {
		return apperr.New(apperr.UnsupportedMediaType, "File content does not match its declared type.")
	}

	return nil
}

func normalizeMime(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}

	return strings.ToLower(strings.TrimSpace(m))
}
