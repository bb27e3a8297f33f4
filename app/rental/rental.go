// Package rental has the handlers of the rental endpoints
package rental

import (
	"net/http"

	"estate-api/app/common"
	"estate-api/internal"
	"estate-api/internal/model"

	"github.com/gin-gonic/gin"
)

type createBody struct {
	PropertyID uint `json:"propertyId" binding:"required"`
}

type statusBody struct {
	Status model.RentalStatus `json:"status" binding:"required,rentalstatus"`
}

// RentalCreate applies for a property
func RentalCreate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data createBody
	if err := c.ShouldBindJSON(&data); err != nil {
		common.BindError(c, err)
		return
	}

	r, err := d.Rentals.Create(c.Request.Context(), data.PropertyID, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, r)
}

func RentalListMine(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	rentals, err := d.Rentals.ListMine(c.Request.Context(), userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, rentals)
}

func RentalListOwner(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	rentals, err := d.Rentals.ListForOwner(c.Request.Context(), userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, rentals)
}

// RentalUpdateStatus is how an owner accepts, rejects or cancels
func RentalUpdateStatus(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}

	var data statusBody
	if err := c.ShouldBindJSON(&data); err != nil {
		common.BindError(c, err)
		return
	}

	r, err := d.Rentals.UpdateStatus(c.Request.Context(), id, data.Status, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}
