package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes a failure response with the status mapped from the
// error's kind. Unknown errors become 500s.
func Error(c *gin.Context, err error) {
	appErr := apperrors.FromError(err)
	c.JSON(appErr.HTTPStatus(), gin.H{"status": "error", "message": appErr.Message})
	_ = c.Error(err)
}
