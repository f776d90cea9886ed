package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
)

// The JSON bodies here reproduce the wire contract the React front-end was
// built against: bare payloads for data, `{"message": ...}` for outcomes and
// `{"errors": {field: msg}}` for validation failures.

// JSON sends a success response with the given payload.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Message sends a `{"message": ...}` body.
func Message(c *gin.Context, status int, message string) {
	JSON(c, status, gin.H{"message": message})
}

// Error sends an error response converting the error to the legacy structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	if len(appErr.Fields) > 0 {
		c.JSON(appErr.Status, gin.H{"errors": appErr.Fields})
		return
	}
	c.JSON(appErr.Status, gin.H{"message": appErr.Message, "code": appErr.Code})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
