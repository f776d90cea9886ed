package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devstorm/docstorm-api/internal/middleware"
	"github.com/devstorm/docstorm-api/internal/models"
	"github.com/devstorm/docstorm-api/internal/service"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
	"github.com/devstorm/docstorm-api/pkg/response"
)

// DashboardHandler serves GET /api/dashboard.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Dashboard returns the admin flag and the user's favorites.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}

	payload, err := h.service.Dashboard(c.Request.Context(), session.UserID, session.Role == models.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload)
}
