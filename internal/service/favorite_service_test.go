package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
)

type mockFavoriteRepo struct {
	set     map[string]map[int64]bool
	courses []models.Course
}

func newMockFavoriteRepo() *mockFavoriteRepo {
	return &mockFavoriteRepo{set: make(map[string]map[int64]bool)}
}

func (m *mockFavoriteRepo) Exists(ctx context.Context, userID string, courseID int64) (bool, error) {
	return m.set[userID][courseID], nil
}

func (m *mockFavoriteRepo) Add(ctx context.Context, userID string, courseID int64) error {
	if m.set[userID] == nil {
		m.set[userID] = make(map[int64]bool)
	}
	m.set[userID][courseID] = true
	return nil
}

func (m *mockFavoriteRepo) Remove(ctx context.Context, userID string, courseID int64) error {
	delete(m.set[userID], courseID)
	return nil
}

func (m *mockFavoriteRepo) ListCourses(ctx context.Context, userID string) ([]models.Course, error) {
	return m.courses, nil
}

type mockCourseFinder struct {
	known map[int64]bool
}

func (m *mockCourseFinder) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if !m.known[id] {
		return nil, sql.ErrNoRows
	}
	return &models.Course{ID: id}, nil
}

type mockCacheInvalidator struct {
	patterns []string
}

func (m *mockCacheInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func TestFavoriteToggleAddThenRemove(t *testing.T) {
	repo := newMockFavoriteRepo()
	cache := &mockCacheInvalidator{}
	svc := NewFavoriteService(repo, &mockCourseFinder{known: map[int64]bool{3: true}}, cache, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.Toggle(ctx, "R000000001", 3)
	require.NoError(t, err)
	assert.True(t, resp.Favorite)
	assert.Equal(t, "Cours ajouté aux favoris", resp.Message)
	assert.True(t, repo.set["R000000001"][3])

	resp, err = svc.Toggle(ctx, "R000000001", 3)
	require.NoError(t, err)
	assert.False(t, resp.Favorite)
	assert.Equal(t, "Cours retiré des favoris", resp.Message)
	assert.False(t, repo.set["R000000001"][3])

	assert.Equal(t, []string{"dashboard:user:R000000001*", "dashboard:user:R000000001*"}, cache.patterns,
		"each toggle invalidates the dashboard cache")
}

func TestFavoriteToggleUnknownCourse(t *testing.T) {
	svc := NewFavoriteService(newMockFavoriteRepo(), &mockCourseFinder{known: map[int64]bool{}}, nil, zap.NewNop())

	_, err := svc.Toggle(context.Background(), "R000000001", 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
