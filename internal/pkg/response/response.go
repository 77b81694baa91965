// internal/pkg/response/response.go
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the JSON body shape every endpoint replies with.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error aborts the request and sends a standardized error body. The message
// is always safe for clients; err, when non-nil, is surfaced verbatim and
// must not carry backend detail on unauthenticated routes.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	c.Abort()

	body := Envelope{
		Success: false,
		Message: message,
	}

	if err != nil {
		body.Error = err.Error()
	}

	if len(data) > 0 {
		body.Data = data[0]
	}

	c.JSON(code, body)
}

// Unauthorized sends a 401 response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}
