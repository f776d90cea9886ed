package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/middleware"
	"github.com/devstorm/docstorm-api/internal/models"
	"github.com/devstorm/docstorm-api/internal/service"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
	"github.com/devstorm/docstorm-api/pkg/response"
)

// AdminUserHandler serves the admin user management endpoints.
type AdminUserHandler struct {
	service *service.UserService
}

// NewAdminUserHandler creates a new handler.
func NewAdminUserHandler(svc *service.UserService) *AdminUserHandler {
	return &AdminUserHandler{service: svc}
}

// List handles GET /api/admin/users.
func (h *AdminUserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := models.UserFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: size,
	}
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}

	users, pagination, err := h.service.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.JSON(c, http.StatusOK, gin.H{"utilisateurs": users, "pagination": pagination})
}

// UpdateRole handles PUT /api/admin/users/:id/role.
func (h *AdminUserHandler) UpdateRole(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}

	if err := h.service.SetRole(c.Request.Context(), session.UserID, c.Param("id"), req.Admin); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Rôle mis à jour")
}

// Delete handles DELETE /api/admin/users/:id.
func (h *AdminUserHandler) Delete(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}

	if err := h.service.RemoveUser(c.Request.Context(), session.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Utilisateur supprimé")
}
