package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
	"github.com/devstorm/docstorm-api/pkg/response"
)

// RequireAdmin allows only admin sessions through. Must run after Session.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrNotAuthenticated)
			c.Abort()
			return
		}
		if session.Role != models.RoleAdmin {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
