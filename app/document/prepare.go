// Package document has the handlers of the document endpoints
package document

import (
	"net/http"

	"estate-api/app/common"
	"estate-api/internal"
	"estate-api/internal/model"
	"estate-api/internal/service"

	"github.com/gin-gonic/gin"
)

type prepareBody struct {
	OriginalName string             `json:"originalName" binding:"required,max=255"`
	Type         model.DocumentType `json:"type" binding:"required,doctype"`
	Size         int64              `json:"size"`
	MimeType     string             `json:"mimeType"`
	PropertyID   *uint              `json:"propertyId"`
}

// DocumentPrepareUpload registers a document and returns a signed URL the
// client uploads the file to
func DocumentPrepareUpload(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data prepareBody
	if err := c.ShouldBindJSON(&data); err != nil {
		common.BindError(c, err)
		return
	}

	up, err := d.Documents.PrepareUpload(c.Request.Context(), service.UploadRequest{
		OriginalName: data.OriginalName,
		Type:         data.Type,
		Size:         data.Size,
		MimeType:     data.MimeType,
		PropertyID:   data.PropertyID,
	}, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, up)
}

// DocumentConfirm settles a prepared upload once the client is done
func DocumentConfirm(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}

	doc, err := d.Documents.ConfirmUpload(c.Request.Context(), id, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}
