package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"estate-api/internal/model"
	"estate-api/internal/storage"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (e *env) pendingDoc(t *testing.T, key string, age time.Duration) *model.Document {
	t.Helper()

	d := &model.Document{
		UniqueFileName: key,
		OriginalName:   "scan.png",
		MimeType:       "image/png",
		Size:           int64(len(pngHeader)),
		Type:           model.DocTenantIDFront,
		Status:         model.DocPendingValidation,
		UploadedByID:   renterID,
		CreatedAt:      time.Now().Add(-age),
	}
	require.NoError(t, e.db.Create(d).Error)

	return d
}

func TestOrphanSweep(t *testing.T) {
	e := newEnv(t)
	sweeper := NewOrphanSweeper(e.db, e.store, time.Minute, zap.NewNop())
	assert.Equal(t, SignedURLTTL+time.Minute, sweeper.MaxAge)

	arrived := e.pendingDoc(t, "TENANT_ID_FRONT/arrived.png", time.Hour)
	require.NoError(t, e.store.Put(e.ctx, arrived.UniqueFileName, bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png"))

	lost := e.pendingDoc(t, "TENANT_ID_FRONT/lost.png", time.Hour)
	young := e.pendingDoc(t, "TENANT_ID_FRONT/young.png", time.Minute)

	done := e.pendingDoc(t, "TENANT_ID_FRONT/done.png", time.Hour)
	require.NoError(t, e.db.Model(done).Update("storage_url", "memory://bucket/done").Error)

	res, err := sweeper.Run(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Confirmed: 1, Removed: 1}, res)

	var got model.Document
	require.NoError(t, e.db.First(&got, arrived.ID).Error)
	assert.Equal(t, e.store.URL(arrived.UniqueFileName), got.StorageURL)

	assert.Zero(t, e.count(t, &model.Document{}, "id = ?", lost.ID))
	assert.EqualValues(t, 1, e.count(t, &model.Document{}, "id = ?", young.ID))
	assert.EqualValues(t, 1, e.count(t, &model.Document{}, "id = ? AND storage_url = ?", done.ID, "memory://bucket/done"))

	res, err = sweeper.Run(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)
}

func TestOrphanSweepSkipsOnStorageErrors(t *testing.T) {
	e := newEnv(t)
	sweeper := NewOrphanSweeper(e.db, e.store, 0, zap.NewNop())

	d := e.pendingDoc(t, "TENANT_ID_FRONT/unknown.png", time.Hour)
	e.store.ExistsErr = errors.New("bucket unreachable")

	res, err := sweeper.Run(e.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Skipped)
	assert.EqualValues(t, 1, e.count(t, &model.Document{}, "id = ?", d.ID))
}

func TestOrphanSweepSchedule(t *testing.T) {
	e := newEnv(t)
	sweeper := NewOrphanSweeper(e.db, e.store, 0, zap.NewNop())
	c := cron.New()

	_, err := sweeper.Schedule(c, "@every 15m")
	assert.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = sweeper.Schedule(c, "whenever")
	assert.Error(t, err)
}

// unreachableKeys fails Exists for some keys and defers the rest
type unreachableKeys struct {
	*storage.Memory
	keys map[string]bool
}

func (u unreachableKeys) Exists(ctx context.Context, key string) (bool, error) {
	if u.keys[key] {
		return false, errors.New("bucket unreachable")
	}

	return u.Memory.Exists(ctx, key)
}

func TestOrphanSweepMovesPastFailingRows(t *testing.T) {
	e := newEnv(t)

	a := e.pendingDoc(t, "TENANT_ID_FRONT/a.png", time.Hour)
	b := e.pendingDoc(t, "TENANT_ID_FRONT/b.png", time.Hour)
	lost := e.pendingDoc(t, "TENANT_ID_FRONT/lost.png", time.Hour)

	gw := unreachableKeys{Memory: e.store, keys: map[string]bool{a.UniqueFileName: true, b.UniqueFileName: true}}
	sweeper := NewOrphanSweeper(e.db, gw, 0, zap.NewNop())
	sweeper.Batch = 2

	res, err := sweeper.Run(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Skipped: 2}, res)

	// Next pass starts after b instead of retrying a and b first
	res, err = sweeper.Run(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Removed: 1}, res)
	assert.Zero(t, e.count(t, &model.Document{}, "id = ?", lost.ID))

	// Ran off the end, so it wraps around
	res, err = sweeper.Run(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Skipped: 2}, res)
}
