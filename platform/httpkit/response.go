// Package httpkit holds the gin plumbing shared by every module: response
// writers, request middleware and the authenticated identity.
package httpkit

import (
	"errors"
	"net/http"

	"enquiry_intake_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

const msgInternal = "internal server error"

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func OK(c *gin.Context, payload any)      { c.JSON(http.StatusOK, payload) }
func Created(c *gin.Context, payload any) { c.JSON(http.StatusCreated, payload) }

// BadRequest answers 400 with an optional per-field details map.
func BadRequest(c *gin.Context, message string, details any) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Details: details})
}

// HandleError writes err and reports whether there was one to write.
// *apperr.Error anywhere in the chain picks the status; any other error is
// logged through c.Errors and answered with a bare 500.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	_ = c.Error(err)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
		return true
	}
	c.JSON(appErr.HTTPStatus(), ErrorResponse{Error: appErr.Message, Details: appErr.Details})
	return true
}
