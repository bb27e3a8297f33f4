package user

import (
	"net/http"

	"estate-api/app/common"
	"estate-api/internal"

	"github.com/gin-gonic/gin"
)

func UserMe(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	u, err := d.Users.Me(c.Request.Context(), userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// UserFetch returns the public profile of any user
func UserFetch(c *gin.Context, d *internal.Deps) {
	u, err := d.Users.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}
