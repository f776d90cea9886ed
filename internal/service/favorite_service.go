package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
)

type favoriteRepository interface {
	Exists(ctx context.Context, userID string, courseID int64) (bool, error)
	Add(ctx context.Context, userID string, courseID int64) error
	Remove(ctx context.Context, userID string, courseID int64) error
	ListCourses(ctx context.Context, userID string) ([]models.Course, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// FavoriteService toggles and lists course bookmarks.
type FavoriteService struct {
	favorites favoriteRepository
	courses   courseFinder
	cache     cacheInvalidator
	logger    *zap.Logger
}

// NewFavoriteService constructs a FavoriteService.
func NewFavoriteService(favorites favoriteRepository, courses courseFinder, cache cacheInvalidator, logger *zap.Logger) *FavoriteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoriteService{favorites: favorites, courses: courses, cache: cache, logger: logger}
}

// Toggle flips the favorite state of a course for the user: a second call on
// the same course undoes the first. Returns the new state.
func (s *FavoriteService) Toggle(ctx context.Context, userID string, courseID int64) (*dto.FavoriteToggleResponse, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cours introuvable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	exists, err := s.favorites.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check favorite")
	}

	var resp dto.FavoriteToggleResponse
	if exists {
		if err := s.favorites.Remove(ctx, userID, courseID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove favorite")
		}
		resp = dto.FavoriteToggleResponse{Message: "Cours retiré des favoris", Favorite: false}
	} else {
		if err := s.favorites.Add(ctx, userID, courseID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add favorite")
		}
		resp = dto.FavoriteToggleResponse{Message: "Cours ajouté aux favoris", Favorite: true}
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("dashboard:user:%s*", userID)); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err), zap.String("user_id", userID))
		}
	}
	return &resp, nil
}

// List returns the user's favorited courses.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]models.Course, error) {
	courses, err := s.favorites.ListCourses(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list favorites")
	}
	return courses, nil
}
