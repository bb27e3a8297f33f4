package document

import (
	"net/http"

	"estate-api/app/common"
	"estate-api/internal"
	"estate-api/internal/model"

	"github.com/gin-gonic/gin"
)

type reviewBody struct {
	Status model.DocumentStatus `json:"status" binding:"required,docstatus"`
}

func DocumentReview(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}

	var data reviewBody
	if err := c.ShouldBindJSON(&data); err != nil {
		common.BindError(c, err)
		return
	}

	doc, err := d.Documents.Review(c.Request.Context(), id, data.Status, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func DocumentListMine(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	docs, err := d.Documents.ListMine(c.Request.Context(), userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

func DocumentDownloadURL(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}

	url, err := d.Documents.DownloadURL(c.Request.Context(), id, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"downloadUrl": url,
	})
}

func DocumentDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}

	if err := d.Documents.Delete(c.Request.Context(), id, userID); err != nil {
		common.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
