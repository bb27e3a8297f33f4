package service

import (
	"bytes"
	"errors"
	"testing"

	"estate-api/internal/apperr"
	"estate-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractVisibility(t *testing.T) {
	e := newEnv(t)
	_, c := e.acceptedContract(t)

	for _, actor := range []string{ownerID, renterID} {
		got, err := e.contracts.Get(e.ctx, c.ID, actor)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
	}

	_, err := e.contracts.Get(e.ctx, c.ID, strangerID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.contracts.Get(e.ctx, 555, ownerID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	mine, err := e.contracts.ListMine(e.ctx, renterID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := e.contracts.ListMine(e.ctx, strangerID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSignAndNotarize(t *testing.T) {
	e := newEnv(t)
	_, c := e.acceptedContract(t)

	_, err := e.contracts.Notarize(e.ctx, c.ID, ownerID)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = e.contracts.Sign(e.ctx, c.ID, strangerID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	signed, err := e.contracts.Sign(e.ctx, c.ID, renterID)
	require.NoError(t, err)
	assert.True(t, signed.IsSigned)

	_, err = e.contracts.Notarize(e.ctx, c.ID, renterID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	notarized, err := e.contracts.Notarize(e.ctx, c.ID, ownerID)
	require.NoError(t, err)
	assert.True(t, notarized.IsNotarized)

	var stored model.Contract
	require.NoError(t, e.db.First(&stored, c.ID).Error)
	assert.True(t, stored.IsSigned)
	assert.True(t, stored.IsNotarized)
}

func TestGeneratePdf(t *testing.T) {
	e := newEnv(t)
	_, c := e.acceptedContract(t)
	e.contracts.Renderer = PDFRenderer{Uncompressed: true}

	_, err := e.contracts.PdfDownloadURL(e.ctx, c.ID, renterID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	first, err := e.contracts.GeneratePdf(e.ctx, c.ID, renterID)
	require.NoError(t, err)
	assert.Regexp(t, `^contracts/[0-9a-f-]{36}\.pdf$`, first.PdfKey)
	assert.Equal(t, e.store.URL(first.PdfKey), first.PdfURL)

	data, ct, ok := e.store.Object(first.PdfKey)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", ct)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "Two room flat")

	second, err := e.contracts.GeneratePdf(e.ctx, c.ID, ownerID)
	require.NoError(t, err)
	assert.NotEqual(t, first.PdfKey, second.PdfKey)

	_, _, ok = e.store.Object(first.PdfKey)
	assert.False(t, ok, "previous pdf should be gone")
	assert.Equal(t, 1, e.store.Len())

	url, err := e.contracts.PdfDownloadURL(e.ctx, c.ID, ownerID)
	require.NoError(t, err)
	assert.Contains(t, url, second.PdfKey)

	_, err = e.contracts.GeneratePdf(e.ctx, c.ID, strangerID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

type brokenRenderer struct{}

func (brokenRenderer) Render(ContractSheet) ([]byte, error) {
	return nil, errors.New("no fonts")
}

func TestGeneratePdfFailures(t *testing.T) {
	e := newEnv(t)
	_, c := e.acceptedContract(t)

	e.contracts.Renderer = brokenRenderer{}
	_, err := e.contracts.GeneratePdf(e.ctx, c.ID, ownerID)
	assert.ErrorIs(t, err, apperr.ErrInternal)

	e.contracts.Renderer = PDFRenderer{}
	e.store.PutErr = errors.New("full")
	_, err = e.contracts.GeneratePdf(e.ctx, c.ID, ownerID)
	assert.ErrorIs(t, err, apperr.ErrStorage)

	var stored model.Contract
	require.NoError(t, e.db.First(&stored, c.ID).Error)
	assert.Empty(t, stored.PdfKey)
}

func TestPDFRendererKeepsAccents(t *testing.T) {
	pdf, err := PDFRenderer{Uncompressed: true}.Render(ContractSheet{
		Contract: model.Contract{ID: 7, Status: model.ContractDraft, Price: 850},
		Property: model.Property{Title: "Piso en Peñalolén (ático)", City: "Bogotá"},
		Owner:    model.User{Username: "José Muñoz"},
		Renter:   model.User{Username: "Ana", Email: "ana@example.com"},
	})
	require.NoError(t, err)

	// cp1252 bytes, as the core fonts expect them
	assert.Contains(t, string(pdf), "Owner: Jos\xe9 Mu\xf1oz")
	assert.Contains(t, string(pdf), "Piso en Pe\xf1alol\xe9n \\(\xe1tico\\)")
	assert.Contains(t, string(pdf), "Renter: Ana <ana@example.com>")
	assert.Contains(t, string(pdf), "Address: Bogot\xe1")
	assert.NotContains(t, string(pdf), "Address: ,")
	assert.NotContains(t, string(pdf), "Jos?")
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "Calle 1, Madrid", joinNonEmpty(", ", "Calle 1", "Madrid"))
	assert.Equal(t, "Madrid", joinNonEmpty(", ", "  ", "Madrid"))
	assert.Equal(t, "Calle 1", joinNonEmpty(", ", "Calle 1", ""))
	assert.Empty(t, joinNonEmpty(", ", "", ""))
}
