package service

import (
	"context"
	"errors"

	"estate-api/internal/apperr"
	"estate-api/internal/authz"
	"estate-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errRentalNotFound    = apperr.New(apperr.NotFound, "Rental not found.")
	errSelfRental        = apperr.New(apperr.SelfRentalForbidden, "You cannot rent your own property.")
	errDuplicatePending  = apperr.New(apperr.DuplicatePending, "You already have a pending request for this property.")
	errInvalidRentStatus = apperr.New(apperr.InvalidArgument, "Invalid status.")
	errInvalidTransition = apperr.New(apperr.InvalidArgument, "Invalid status transition.")
)

// transitions lists where a rental may go from each status. REJECTED and
// CANCELLED have no way out.
var transitions = map[model.RentalStatus][]model.RentalStatus{
	model.RentalPending:  {model.RentalAccepted, model.RentalRejected, model.RentalCancelled},
	model.RentalAccepted: {model.RentalRejected, model.RentalCancelled},
}

// CanTransition reports whether a rental in from may be moved to to.
// Staying in the same status is always allowed.
func CanTransition(from, to model.RentalStatus) bool {
	if from == to {
		return true
	}

	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

type RentalService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewRentalService(db *gorm.DB, log *zap.Logger) *RentalService {
	return &RentalService{DB: db, Log: orNop(log)}
}

// Create files a PENDING application of actor for a property
func (s *RentalService) Create(ctx context.Context, propertyID uint, actor string) (*model.Rental, error) {
	const op = "rental.create"

	var rental model.Rental

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Property
		if err := tx.Select("id", "owner_id").First(&p, propertyID).Error; err != nil {
			return notFound(err, errPropertyNotFound.Msg)
		}

		if p.OwnerID == actor {
			return errSelfRental
		}

		var n int64
		err := tx.
			Model(&model.Rental{}).
			Where("property_id = ? AND renter_id = ? AND status = ?", propertyID, actor, model.RentalPending).
			Count(&n).
			Error
		if err != nil {
			return dbErr(err)
		}

		if n > 0 {
			return errDuplicatePending
		}

		rental = model.Rental{
			PropertyID: propertyID,
			RenterID:   actor,
			Status:     model.RentalPending,
		}

		if err := tx.Create(&rental).Error; err != nil {
			// Lost a race against a concurrent create, the partial index caught it
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicatePending
			}

			return dbErr(err)
		}

		return nil
	})
	if err != nil {
		return nil, fail(s.Log, op, actor, propertyID, err)
	}

	return &rental, nil
}

// UpdateStatus moves a rental to status and applies what comes with it.
// Accepting puts the property in process and drafts the contract, backing
// out of an accepted rental frees the property again.
func (s *RentalService) UpdateStatus(ctx context.Context, id uint, status model.RentalStatus, actor string) (*model.Rental, error) {
	const op = "rental.update_status"

	if !status.Valid() {
		return nil, fail(s.Log, op, actor, id, errInvalidRentStatus)
	}

	var rental model.Rental

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The cascade depends on the status before the change, so read it
		// under lock. SQLite ignores the clause and serializes writers.
		err := tx.
			Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			First(&rental, id).
			Error
		if err != nil {
			return notFound(err, errRentalNotFound.Msg)
		}

		var p model.Property
		if err := tx.First(&p, rental.PropertyID).Error; err != nil {
			return notFound(err, errPropertyNotFound.Msg)
		}

		err = authz.Check(authz.OpRentalStatus, actor, authz.Snapshot{
			PropertyID:      &p.ID,
			PropertyOwnerID: p.OwnerID,
			RenterID:        rental.RenterID,
		})
		if err != nil {
			return err
		}

		from := rental.Status
		if from == status {
			return nil
		}

		if !CanTransition(from, status) {
			return errInvalidTransition
		}

		err = tx.
			Model(&rental).
			Update("status", status).
			Error
		if err != nil {
			return dbErr(err)
		}
		rental.Status = status

		switch {
		case status == model.RentalAccepted:
			if err := setPropertyStatus(tx, p.ID, model.PropertyInProcess); err != nil {
				return err
			}

			draft := model.Contract{
				PropertyID: p.ID,
				OwnerID:    p.OwnerID,
				RenterID:   rental.RenterID,
				Status:     model.ContractDraft,
				Price:      p.Price,
			}

			err = tx.
				Where(model.Contract{RentalID: rental.ID}).
				Attrs(draft).
				FirstOrCreate(&model.Contract{}).
				Error
			if err != nil {
				return dbErr(err)
			}
		case from == model.RentalAccepted:
			if err := setPropertyStatus(tx, p.ID, model.PropertyAvailable); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fail(s.Log, op, actor, id, err)
	}

	return &rental, nil
}

func setPropertyStatus(tx *gorm.DB, id uint, status model.PropertyStatus) error {
	err := tx.
		Model(&model.Property{}).
		Where("id = ?", id).
		Update("status", status).
		Error
	if err != nil {
		return dbErr(err)
	}

	return nil
}

// ListMine returns the applications actor made, with their property
func (s *RentalService) ListMine(ctx context.Context, actor string) ([]model.Rental, error) {
	rentals := []model.Rental{}

	err := s.DB.
		WithContext(ctx).
		Preload("Property").
		Where("renter_id = ?", actor).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rentals).
		Error
	if err != nil {
		return nil, fail(s.Log, "rental.list_mine", actor, nil, dbErr(err))
	}

	return rentals, nil
}

// ListForOwner returns applications on properties owned by actor
func (s *RentalService) ListForOwner(ctx context.Context, actor string) ([]model.Rental, error) {
	rentals := []model.Rental{}

	err := s.DB.
		WithContext(ctx).
		Preload("Property").
		Preload("Renter").
		Joins("JOIN properties ON properties.id = rentals.property_id").
		Where("properties.owner_id = ?", actor).
		Order("rentals.created_at DESC").
		Order("rentals.id DESC").
		Find(&rentals).
		Error
	if err != nil {
		return nil, fail(s.Log, "rental.list_for_owner", actor, nil, dbErr(err))
	}

	return rentals, nil
}
