package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/middleware"
	"github.com/devstorm/docstorm-api/internal/service"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
	"github.com/devstorm/docstorm-api/pkg/response"
)

// ProgressionHandler serves the per-course progress endpoints.
type ProgressionHandler struct {
	service *service.ProgressionService
}

// NewProgressionHandler creates a new handler.
func NewProgressionHandler(svc *service.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{service: svc}
}

// List handles GET /api/progression.
func (h *ProgressionHandler) List(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}

	rows, err := h.service.List(c.Request.Context(), session.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Get handles GET /api/progression/:id.
func (h *ProgressionHandler) Get(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}
	courseID, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	p, err := h.service.Get(c.Request.Context(), session.UserID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p)
}

// Set handles POST /api/progression/:id.
func (h *ProgressionHandler) Set(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}
	courseID, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateProgressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}

	p, err := h.service.Set(c.Request.Context(), session.UserID, courseID, req.Percent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p)
}
