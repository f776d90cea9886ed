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

// ProfileHandler serves the favorites and history endpoints.
type ProfileHandler struct {
	favorites *service.FavoriteService
	history   *service.HistoryService
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(favorites *service.FavoriteService, history *service.HistoryService) *ProfileHandler {
	return &ProfileHandler{favorites: favorites, history: history}
}

// ToggleFavorite handles POST /api/profil/favoris/ajouter/:id. Adding returns
// 201, removing 200, both with the new state in the body.
func (h *ProfileHandler) ToggleFavorite(c *gin.Context) {
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

	resp, err := h.favorites.Toggle(c.Request.Context(), session.UserID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if resp.Favorite {
		status = http.StatusCreated
	}
	response.JSON(c, status, resp)
}

// Favorites handles GET /api/profil/favoris.
func (h *ProfileHandler) Favorites(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}

	courses, err := h.favorites.List(c.Request.Context(), session.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	response.JSON(c, http.StatusOK, courses)
}

// History handles GET /api/profil/historique.
func (h *ProfileHandler) History(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}

	courses, err := h.history.List(c.Request.Context(), session.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if courses == nil {
		courses = []models.HistoryCourse{}
	}
	response.JSON(c, http.StatusOK, courses)
}

// ClearHistory handles POST /api/profil/historique/clear.
func (h *ProfileHandler) ClearHistory(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}

	if err := h.history.Clear(c.Request.Context(), session.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Historique effacé")
}
