package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/models"
	"github.com/devstorm/docstorm-api/internal/service"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
	"github.com/devstorm/docstorm-api/pkg/response"
)

// documentFormField is the multipart field carrying the course document.
const documentFormField = "fichier"

// AdminCourseHandler serves the admin catalog management endpoints.
type AdminCourseHandler struct {
	service *service.CourseService
}

// NewAdminCourseHandler creates a new handler.
func NewAdminCourseHandler(svc *service.CourseService) *AdminCourseHandler {
	return &AdminCourseHandler{service: svc}
}

// List handles GET /api/admin/cours with the same filters as the public
// search plus pagination.
func (h *AdminCourseHandler) List(c *gin.Context) {
	var req dto.CourseSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := models.CourseFilter{
		Search:       req.Search,
		Domain:       req.Domain,
		ResourceType: req.ResourceType,
		Level:        req.Level,
		Page:         page,
		PageSize:     size,
	}
	courses, pagination, err := h.service.ListAdmin(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	response.JSON(c, http.StatusOK, gin.H{"cours": courses, "pagination": pagination})
}

// Create handles POST /api/admin/cours/ajouter (multipart).
func (h *AdminCourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}

	upload, closeFn, err := formUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if closeFn != nil {
		defer closeFn()
	}

	course, err := h.service.CreateCourse(c.Request.Context(), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, course)
}

// Update handles POST /api/admin/cours/update/:id (multipart, file optional).
func (h *AdminCourseHandler) Update(c *gin.Context) {
	courseID, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}

	upload, closeFn, err := formUpload(c)
	if err != nil && err != appErrors.ErrFileRequired {
		response.Error(c, err)
		return
	}
	if closeFn != nil {
		defer closeFn()
	}

	course, err := h.service.UpdateCourse(c.Request.Context(), courseID, req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete handles DELETE /api/admin/cours/delete/:id.
func (h *AdminCourseHandler) Delete(c *gin.Context) {
	courseID, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeleteCourse(c.Request.Context(), courseID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Cours supprimé")
}

// formUpload extracts the multipart document. Returns ErrFileRequired when
// the field is absent, which Update treats as "keep the current file".
func formUpload(c *gin.Context) (*service.CourseUpload, func(), error) {
	header, err := c.FormFile(documentFormField)
	if err != nil {
		return nil, nil, appErrors.ErrFileRequired
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	upload := &service.CourseUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   file,
	}
	return upload, func() { closeMultipart(file) }, nil
}

func closeMultipart(f multipart.File) {
	_ = f.Close()
}
