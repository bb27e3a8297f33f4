package document

import (
	"net/http"
	"strconv"

	"estate-api/app/common"
	"estate-api/internal"
	"estate-api/internal/model"
	"estate-api/internal/service"
	"estate-api/pkg/middleware"
	"estate-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DocumentUpload takes the file in a multipart form and stores it right away
func DocumentUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	header, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "Request body size exceeds limit",
				"requestID": requestID,
			})
			return
		}

		common.BadRequest(c, "No file provided")
		return
	}

	docType := model.DocumentType(c.PostForm("type"))
	if !docType.Valid() {
		common.Error(c, validators.ErrInvalidCategory)
		return
	}

	var propertyID *uint
	if raw := c.PostForm("propertyId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			common.BadRequest(c, "Invalid propertyId")
			return
		}

		pid := uint(id)
		propertyID = &pid
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open multipart file", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer file.Close()

	doc, err := d.Documents.SuperUpload(c.Request.Context(), service.UploadRequest{
		OriginalName: header.Filename,
		Type:         docType,
		Size:         header.Size,
		MimeType:     header.Header.Get("Content-Type"),
		PropertyID:   propertyID,
	}, file, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}
