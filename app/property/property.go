// Package property has the handlers of the property endpoints
package property

import (
	"net/http"

	"estate-api/app/common"
	"estate-api/internal"
	"estate-api/internal/model"
	"estate-api/internal/service"

	"github.com/gin-gonic/gin"
)

type listQuery struct {
	Page     int      `form:"page" binding:"omitempty,min=1"`
	Limit    int      `form:"limit" binding:"omitempty,min=1"`
	City     string   `form:"city"`
	Status   string   `form:"status"`
	MinPrice *float64 `form:"minPrice"`
	MaxPrice *float64 `form:"maxPrice"`
	Q        string   `form:"q"`
}

func PropertyList(c *gin.Context, d *internal.Deps) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.BindError(c, err)
		return
	}

	page, err := d.Properties.List(c.Request.Context(), service.PropertyFilter{
		City:     q.City,
		Status:   model.PropertyStatus(q.Status),
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Q:        q.Q,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func PropertyGet(c *gin.Context, d *internal.Deps) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := d.Properties.Get(c.Request.Context(), id)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func PropertyCreate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.PropertyInput
	if err := c.ShouldBindJSON(&data); err != nil {
		common.BindError(c, err)
		return
	}

	p, err := d.Properties.Create(c.Request.Context(), data, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func PropertyUpdate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}

	var data service.PropertyPatch
	if err := c.ShouldBindJSON(&data); err != nil {
		common.BindError(c, err)
		return
	}

	p, err := d.Properties.Update(c.Request.Context(), id, data, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func PropertyDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}

	if err := d.Properties.Delete(c.Request.Context(), id, userID); err != nil {
		common.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
