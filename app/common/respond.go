// Package common has the response helpers shared by all handlers
package common

import (
	"errors"
	"net/http"
	"strconv"

	"estate-api/internal/apperr"
	"estate-api/pkg/middleware"
	"estate-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Error writes err as the JSON error body. Server side failures are
// already logged by the services and never leak their cause.
func Error(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error":     apperr.Message(err),
		"requestID": c.GetString("requestID"),
	})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":     msg,
		"requestID": c.GetString("requestID"),
	})
}

// ParamID reads a numeric path parameter, writing a 400 when it isn't one
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "Invalid "+name)
		return 0, false
	}

	return uint(id), true
}

// BindError answers a request whose body or query didn't bind
func BindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		switch ve[0].Tag() {
		case "doctype":
			Error(c, validators.ErrInvalidCategory)
			return
		case "docstatus", "rentalstatus":
			BadRequest(c, "Invalid status.")
			return
		case "required":
			BadRequest(c, "Missing field "+ve[0].Field())
			return
		}

		BadRequest(c, "Invalid field "+ve[0].Field())
		return
	}

	if middleware.IsBodyTooLarge(err) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     "Request body size exceeds limit",
			"requestID": c.GetString("requestID"),
		})
		return
	}

	BadRequest(c, "Invalid request body")
}
