package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Gateway = (*Memory)(nil)
var _ Gateway = (*S3Gateway)(nil)

func TestMemoryPutExistsDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "tenant_id_front/a.png", strings.NewReader("png"), 3, "image/png"))

	ok, err := m.Exists(ctx, "tenant_id_front/a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	data, ct, ok := m.Object("tenant_id_front/a.png")
	assert.True(t, ok)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, "image/png", ct)

	require.NoError(t, m.Delete(ctx, "tenant_id_front/a.png"))
	// Deleting twice is fine
	require.NoError(t, m.Delete(ctx, "tenant_id_front/a.png"))

	ok, err = m.Exists(ctx, "tenant_id_front/a.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryPutSizeMismatch(t *testing.T) {
	err := NewMemory().Put(context.Background(), "k", strings.NewReader("abc"), 10, "application/pdf")
	assert.Error(t, err)
}

func TestMemoryPresign(t *testing.T) {
	m := NewMemory()

	raw, err := m.PresignPut(context.Background(), "property_deed/x.pdf", "application/pdf", 10*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "PUT", u.Query().Get("method"))
	assert.Equal(t, "application/pdf", u.Query().Get("content-type"))
	assert.True(t, strings.HasPrefix(raw, m.URL("property_deed/x.pdf")))

	_, err = m.PresignGet(context.Background(), "k", 0)
	assert.Error(t, err)
}

func TestMemoryInjectedErrors(t *testing.T) {
	boom := errors.New("boom")
	m := NewMemory()
	m.ExistsErr = boom

	_, err := m.Exists(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
}
