package app

import (
	"estate-api/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidators adds the domain tags to gin's validator
func registerValidators() error {
	vd, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := vd.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
		return model.DocumentType(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}

	if err := vd.RegisterValidation("docstatus", func(fl validator.FieldLevel) bool {
		return model.DocumentStatus(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}

	return vd.RegisterValidation("rentalstatus", func(fl validator.FieldLevel) bool {
		return model.RentalStatus(fl.Field().String()).Valid()
	})
}
