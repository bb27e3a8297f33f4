package service

import (
	"context"
	"errors"
	"testing"

	"estate-api/db"
	"estate-api/internal/model"
	"estate-api/internal/storage"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ownerID    = "owner"
	renterID   = "renter"
	strangerID = "stranger"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type env struct {
	ctx   context.Context
	db    *gorm.DB
	store *storage.Memory

	docs       *DocumentService
	rentals    *RentalService
	contracts  *ContractService
	properties *PropertyService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	database, err := db.New("sqlite", ":memory:")
	require.NoError(t, err)

	store := storage.NewMemory()
	log := zap.NewNop()

	for _, id := range []string{ownerID, renterID, strangerID} {
		require.NoError(t, database.Create(&model.User{
			ID:           id,
			Email:        id + "@example.com",
			Username:     id,
			PasswordHash: "x",
		}).Error)
	}

	return &env{
		ctx:        context.Background(),
		db:         database,
		store:      store,
		docs:       NewDocumentService(database, store, log),
		rentals:    NewRentalService(database, log),
		contracts:  NewContractService(database, store, nil, log),
		properties: NewPropertyService(database, store, log),
	}
}

func (e *env) property(t *testing.T, owner string) *model.Property {
	t.Helper()

	p := &model.Property{
		OwnerID: owner,
		Title:   "Two room flat",
		City:    "Lisbon",
		Price:   950,
		Status:  model.PropertyAvailable,
	}
	require.NoError(t, e.db.Create(p).Error)

	return p
}

func (e *env) rental(t *testing.T, propertyID uint, renter string, status model.RentalStatus) *model.Rental {
	t.Helper()

	r := &model.Rental{PropertyID: propertyID, RenterID: renter, Status: status}
	require.NoError(t, e.db.Create(r).Error)

	return r
}

// acceptedContract runs a rental through acceptance and returns its contract
func (e *env) acceptedContract(t *testing.T) (*model.Property, *model.Contract) {
	t.Helper()

	p := e.property(t, ownerID)
	r, err := e.rentals.Create(e.ctx, p.ID, renterID)
	require.NoError(t, err)

	_, err = e.rentals.UpdateStatus(e.ctx, r.ID, model.RentalAccepted, ownerID)
	require.NoError(t, err)

	var c model.Contract
	require.NoError(t, e.db.Where("rental_id = ?", r.ID).First(&c).Error)

	return p, &c
}

func uintPtr(v uint) *uint {
	return &v
}

func (e *env) count(t *testing.T, m any, query string, args ...any) int64 {
	t.Helper()

	var n int64
	q := e.db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)

	return n
}

var errWriteRefused = errors.New("write refused")

// refuse makes every op ("create", "update" or "delete") on table fail
// before it reaches the database
func (e *env) refuse(t *testing.T, op, table string) {
	t.Helper()

	fn := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errWriteRefused)
		}
	}

	cb := e.db.Callback()
	name := "test:refuse_" + op + "_" + table

	var err error
	switch op {
	case "create":
		err = cb.Create().Before("gorm:create").Register(name, fn)
	case "update":
		err = cb.Update().Before("gorm:update").Register(name, fn)
	case "delete":
		err = cb.Delete().Before("gorm:delete").Register(name, fn)
	default:
		t.Fatalf("unknown op %q", op)
	}
	require.NoError(t, err)
}

func (e *env) statuses(t *testing.T, rentalID, propertyID uint) (model.RentalStatus, model.PropertyStatus) {
	t.Helper()

	var r model.Rental
	require.NoError(t, e.db.First(&r, rentalID).Error)

	var p model.Property
	require.NoError(t, e.db.First(&p, propertyID).Error)

	return r.Status, p.Status
}
