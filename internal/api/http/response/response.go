// Package response writes the JSON envelopes shared by every HTTP endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/videotube-server/internal/apierror"
)

// MessageInternal is the message sent for errors that carry no API kind.
const MessageInternal = "internal server error"

// Envelope is the body of a successful response.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorEnvelope is the body of a failed response.
type ErrorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
}

// JSON writes data wrapped in the success envelope.
func JSON(c *gin.Context, status int, data any, message string) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// Abort stops the handler chain and writes the error envelope.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		StatusCode: status,
		Success:    false,
		Message:    message,
	})
}

// Error translates err into the error envelope. An *apierror.Error keeps
// its status and message; anything else is reported as a bare 500.
func Error(c *gin.Context, err error) {
	if apiErr, ok := apierror.As(err); ok {
		Abort(c, apiErr.StatusCode(), apiErr.Message)
		return
	}
	Abort(c, http.StatusInternalServerError, MessageInternal)
}
