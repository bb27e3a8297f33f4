// Package contract has the handlers of the contract endpoints
package contract

import (
	"context"
	"net/http"

	"estate-api/app/common"
	"estate-api/internal"
	"estate-api/internal/model"

	"github.com/gin-gonic/gin"
)

func ContractListMine(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	contracts, err := d.Contracts.ListMine(c.Request.Context(), userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts)
}

func ContractGet(c *gin.Context, d *internal.Deps) {
	withContract(c, d.Contracts.Get)
}

func ContractSign(c *gin.Context, d *internal.Deps) {
	withContract(c, d.Contracts.Sign)
}

func ContractNotarize(c *gin.Context, d *internal.Deps) {
	withContract(c, d.Contracts.Notarize)
}

// ContractGeneratePdf renders the contract and stores the PDF
func ContractGeneratePdf(c *gin.Context, d *internal.Deps) {
	withContract(c, d.Contracts.GeneratePdf)
}

func ContractPdfURL(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}

	url, err := d.Contracts.PdfDownloadURL(c.Request.Context(), id, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"downloadUrl": url,
	})
}

func withContract(c *gin.Context, fn func(ctx context.Context, id uint, actor string) (*model.Contract, error)) {
	userID := c.MustGet("userID").(string)

	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}

	contract, err := fn(c.Request.Context(), id, userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}
