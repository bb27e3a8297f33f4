package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"estate-api/internal/model"
	"estate-api/internal/storage"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sweepBatch = 500

// OrphanSweeper settles prepared uploads nobody confirmed. Once the upload
// URL is long expired the blob either arrived, and the row gets confirmed,
// or it never will, and the row goes.
//
// Each pass picks up after the last row the previous one looked at and
// starts over once it runs off the end, so rows that keep failing can't
// starve the rest.
type OrphanSweeper struct {
	DB      *gorm.DB
	Storage storage.Gateway
	Log     *zap.Logger
	// Rows younger than this are left alone
	MaxAge  time.Duration
	Workers int
	Batch   int

	mu     sync.Mutex
	cursor uint
}

type SweepResult struct {
	Confirmed int64
	Removed   int64
	Skipped   int64
}

func NewOrphanSweeper(db *gorm.DB, s storage.Gateway, grace time.Duration, log *zap.Logger) *OrphanSweeper {
	return &OrphanSweeper{
		DB:      db,
		Storage: s,
		Log:     orNop(log),
		MaxAge:  SignedURLTTL + grace,
		Workers: 8,
		Batch:   sweepBatch,
	}
}

// Run does a single pass
func (o *OrphanSweeper) Run(ctx context.Context) (SweepResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var res SweepResult
	var docs []model.Document

	batch := o.Batch
	if batch <= 0 {
		batch = sweepBatch
	}

	err := o.DB.
		WithContext(ctx).
		Where("storage_url = ? AND status = ? AND created_at < ?", "", model.DocPendingValidation, time.Now().Add(-o.MaxAge)).
		Where("id > ?", o.cursor).
		Order("id").
		Limit(batch).
		Find(&docs).
		Error
	if err != nil {
		o.Log.Error("Failed to query db for unconfirmed documents", zap.Error(err))
		return res, err
	}

	if len(docs) < batch {
		o.cursor = 0
	} else {
		o.cursor = docs[len(docs)-1].ID
	}

	if len(docs) == 0 {
		return res, nil
	}

	var confirmed, removed, skipped atomic.Int64

	p := pool.New().WithContext(ctx).WithMaxGoroutines(max(o.Workers, 1))
	for _, d := range docs {
		d := d
		p.Go(func(ctx context.Context) error {
			ok, err := o.Storage.Exists(ctx, d.UniqueFileName)
			if err != nil {
				o.Log.Warn("Failed to check storage for document, skipping", zap.Uint("documentID", d.ID), zap.Error(err))
				skipped.Add(1)
				return nil
			}

			if ok {
				err = o.DB.
					WithContext(ctx).
					Model(&model.Document{}).
					Where("id = ? AND storage_url = ?", d.ID, "").
					Update("storage_url", o.Storage.URL(d.UniqueFileName)).
					Error
				if err != nil {
					return err
				}

				confirmed.Add(1)
				return nil
			}

			err = o.DB.
				WithContext(ctx).
				Where("id = ? AND storage_url = ?", d.ID, "").
				Delete(&model.Document{}).
				Error
			if err != nil {
				return err
			}

			removed.Add(1)
			return nil
		})
	}

	err = p.Wait()

	res = SweepResult{
		Confirmed: confirmed.Load(),
		Removed:   removed.Load(),
		Skipped:   skipped.Load(),
	}

	if err != nil {
		o.Log.Error("Orphan sweep finished with errors", zap.Error(err))
		return res, err
	}

	o.Log.Debug("Orphan sweep finished",
		zap.Int64("confirmed", res.Confirmed),
		zap.Int64("removed", res.Removed),
		zap.Int64("skipped", res.Skipped),
	)

	return res, nil
}

// Schedule registers the sweeper on c. spec is any robfig/cron expression,
// "@every 15m" included.
func (o *OrphanSweeper) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		o.Run(ctx)
	})
	if err != nil {
		return 0, err
	}

	o.Log.Debug("Orphan sweeper attached", zap.String("schedule", spec))
	return id, nil
}
