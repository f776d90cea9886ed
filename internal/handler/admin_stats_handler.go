package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/service"
	"github.com/devstorm/docstorm-api/pkg/response"
)

// AdminStatsHandler serves the admin analytics endpoints.
type AdminStatsHandler struct {
	service *service.StatsService
}

// NewAdminStatsHandler creates a new handler.
func NewAdminStatsHandler(svc *service.StatsService) *AdminStatsHandler {
	return &AdminStatsHandler{service: svc}
}

// Overview handles GET /api/admin/stats.
func (h *AdminStatsHandler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview)
}

// TopCourses handles GET /api/admin/top-courses.
func (h *AdminStatsHandler) TopCourses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.service.TopCourses(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rows == nil {
		rows = []dto.TopCourse{}
	}
	response.JSON(c, http.StatusOK, rows)
}

// CoursesActivity handles GET /api/admin/courses-activity.
func (h *AdminStatsHandler) CoursesActivity(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	rows, err := h.service.CoursesActivity(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rows == nil {
		rows = []dto.ActivityPoint{}
	}
	response.JSON(c, http.StatusOK, rows)
}

// UsersActivity handles GET /api/admin/users-activity.
func (h *AdminStatsHandler) UsersActivity(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	rows, err := h.service.UsersActivity(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rows == nil {
		rows = []dto.ActivityPoint{}
	}
	response.JSON(c, http.StatusOK, rows)
}

// Export handles GET /api/admin/stats/export?format=csv|pdf, streaming the
// rendered file as an attachment.
func (h *AdminStatsHandler) Export(c *gin.Context) {
	export, err := h.service.Export(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Content)
}
