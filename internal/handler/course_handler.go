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

// CourseHandler serves the catalog endpoints.
type CourseHandler struct {
	service *service.CourseService
}

// NewCourseHandler creates a new handler.
func NewCourseHandler(svc *service.CourseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// Browse handles GET /api/cours. With no query parameters the response is the
// personalized recommendation feed; otherwise it is a filtered search. The
// body is a bare JSON array, as the dashboard consumes it.
func (h *CourseHandler) Browse(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}

	var req dto.CourseSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}

	courses, err := h.service.Browse(c.Request.Context(), session.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	response.JSON(c, http.StatusOK, courses)
}

// Detail handles GET /api/cours/details/:id.
func (h *CourseHandler) Detail(c *gin.Context) {
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

	detail, err := h.service.Detail(c.Request.Context(), session.UserID, session.Role == models.RoleAdmin, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Review handles POST /api/cours/avis/:id.
func (h *CourseHandler) Review(c *gin.Context) {
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

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}

	if _, err := h.service.SubmitReview(c.Request.Context(), session.UserID, courseID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Avis enregistré")
}

func courseIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "identifiant de cours invalide")
	}
	return id, nil
}
