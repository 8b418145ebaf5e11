package response

import (
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope every endpoint answers with.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorBody tells clients which class of failure occurred. Details is only
// filled where the body is diagnostic, e.g. per-component health.
type ErrorBody struct {
	Kind    apperror.Kind `json:"kind"`
	Details interface{}   `json:"details,omitempty"`
}

func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(string(domain.KeyRequestID)),
	})
}

// Fail renders an AppError. The wrapped cause is never written to the client.
func Fail(c *gin.Context, err *apperror.AppError) {
	Error(c, err.Code, err.Message, err.Kind, nil)
}

func Error(c *gin.Context, code int, message string, kind apperror.Kind, details interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     &ErrorBody{Kind: kind, Details: details},
		RequestID: c.GetString(string(domain.KeyRequestID)),
	})
}
