package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := New(NotFound, "Document not found.")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)

	wrapped := fmt.Errorf("lookup, %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, NotFound, KindOf(wrapped))
}

func TestIsWithMessageIsStrict(t *testing.T) {
	target := New(InvalidArgument, "Invalid document type provided.")

	assert.ErrorIs(t, New(InvalidArgument, "Invalid document type provided."), target)
	assert.NotErrorIs(t, New(InvalidArgument, "Invalid document status."), target)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[*Error]int{
		ErrInvalidArgument:      http.StatusBadRequest,
		ErrPayloadTooLarge:      http.StatusRequestEntityTooLarge,
		ErrUnsupportedMediaType: http.StatusUnsupportedMediaType,
		ErrNotFound:             http.StatusNotFound,
		ErrForbidden:            http.StatusForbidden,
		ErrDuplicatePending:     http.StatusConflict,
		ErrSelfRentalForbidden:  http.StatusBadRequest,
		ErrUploadNotConfirmed:   http.StatusBadRequest,
		ErrStorage:              http.StatusInternalServerError,
	}

	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Kind.String())
	}

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestMessageHidesServerErrors(t *testing.T) {
	err := Wrap(StorageError, "Failed to delete file from storage.", errors.New("connection reset"))

	assert.Equal(t, "Internal server error", Message(err))
	assert.Equal(t, "Internal server error", Message(errors.New("raw")))
	assert.Equal(t, "Document not found.", Message(New(NotFound, "Document not found.")))
	assert.Contains(t, err.Error(), "connection reset")
}
