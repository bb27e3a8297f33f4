// Package user has the handlers of the user endpoints
package user

import (
	"net/http"

	"estate-api/app/common"
	"estate-api/internal"
	"estate-api/internal/service"

	"github.com/gin-gonic/gin"
)

func UserRegister(c *gin.Context, d *internal.Deps) {
	var data service.RegisterInput
	if err := c.ShouldBindJSON(&data); err != nil {
		common.BindError(c, err)
		return
	}

	u, err := d.Users.Register(c.Request.Context(), data)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, u)
}
