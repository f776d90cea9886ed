package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/internal/middleware"
	"github.com/devstorm/docstorm-api/internal/models"
	"github.com/devstorm/docstorm-api/internal/service"
)

type favoriteRepoStub struct {
	set map[int64]bool
}

func (s *favoriteRepoStub) Exists(ctx context.Context, userID string, courseID int64) (bool, error) {
	return s.set[courseID], nil
}

func (s *favoriteRepoStub) Add(ctx context.Context, userID string, courseID int64) error {
	s.set[courseID] = true
	return nil
}

func (s *favoriteRepoStub) Remove(ctx context.Context, userID string, courseID int64) error {
	delete(s.set, courseID)
	return nil
}

func (s *favoriteRepoStub) ListCourses(ctx context.Context, userID string) ([]models.Course, error) {
	return nil, nil
}

type courseFinderStub struct {
	known map[int64]bool
}

func (s *courseFinderStub) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if !s.known[id] {
		return nil, sql.ErrNoRows
	}
	return &models.Course{ID: id}, nil
}

type historyRepoStub struct {
	entries []models.HistoryCourse
	cleared bool
}

func (s *historyRepoStub) RecordOnce(ctx context.Context, userID string, courseID int64, at time.Time) (bool, error) {
	return true, nil
}

func (s *historyRepoStub) ListCourses(ctx context.Context, userID string) ([]models.HistoryCourse, error) {
	return s.entries, nil
}

func (s *historyRepoStub) Clear(ctx context.Context, userID string) error {
	s.cleared = true
	return nil
}

type viewCounterStub struct{}

func (viewCounterStub) IncrementViewCount(ctx context.Context, id int64) error { return nil }

func withSession(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextSessionKey, &models.Session{
			Token:  "tok",
			UserID: "R000000001",
			Role:   role,
		})
		c.Next()
	}
}

func newProfileRig(t *testing.T) (*gin.Engine, *favoriteRepoStub, *historyRepoStub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	favorites := &favoriteRepoStub{set: make(map[int64]bool)}
	history := &historyRepoStub{}
	favSvc := service.NewFavoriteService(favorites, &courseFinderStub{known: map[int64]bool{3: true}}, nil, zap.NewNop())
	histSvc := service.NewHistoryService(history, viewCounterStub{}, zap.NewNop())
	h := NewProfileHandler(favSvc, histSvc)

	r := gin.New()
	authed := r.Group("/", withSession(models.RoleUser))
	authed.POST("/api/profil/favoris/ajouter/:id", h.ToggleFavorite)
	authed.GET("/api/profil/favoris", h.Favorites)
	authed.GET("/api/profil/historique", h.History)
	authed.POST("/api/profil/historique/clear", h.ClearHistory)
	return r, favorites, history
}

func TestToggleFavoriteAddReturns201(t *testing.T) {
	r, favorites, _ := newProfileRig(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/profil/favoris/ajouter/3", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Cours ajouté aux favoris", body["message"])
	assert.Equal(t, true, body["favori"])
	assert.True(t, favorites.set[3])
}

func TestToggleFavoriteRemoveReturns200(t *testing.T) {
	r, favorites, _ := newProfileRig(t)
	favorites.set[3] = true

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/profil/favoris/ajouter/3", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Cours retiré des favoris", body["message"])
	assert.Equal(t, false, body["favori"])
	assert.False(t, favorites.set[3])
}

func TestToggleFavoriteBadID(t *testing.T) {
	r, _, _ := newProfileRig(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/profil/favoris/ajouter/abc", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleFavoriteUnknownCourse(t *testing.T) {
	r, _, _ := newProfileRig(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/profil/favoris/ajouter/99", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoritesEmptyListIsArray(t *testing.T) {
	r, _, _ := newProfileRig(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/profil/favoris", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String(), "an empty list serializes as [], not null")
}

func TestClearHistory(t *testing.T) {
	r, _, history := newProfileRig(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/profil/historique/clear", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, history.cleared)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Historique effacé", body["message"])
}
