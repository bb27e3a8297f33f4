package user

import (
	"net/http"

	"estate-api/app/common"
	"estate-api/internal"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLogin returns a JWT in the body and sets it as the auth_token cookie
func UserLogin(c *gin.Context, d *internal.Deps) {
	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		common.BindError(c, err)
		return
	}

	token, u, err := d.Users.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.SetCookie("auth_token", token, int(d.TokenTTL), "/", "", d.SecureCookies, true)
	c.SetCookie("logged_in", "1", int(d.TokenTTL), "/", "", d.SecureCookies, false)
	c.JSON(http.StatusOK, gin.H{
		"message": "Successful login",
		"token":   token,
		"user":    u,
	})
}
