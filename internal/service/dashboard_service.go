package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
)

type favoriteLister interface {
	ListCourses(ctx context.Context, userID string) ([]models.Course, error)
}

// DashboardService composes the dashboard payload, cached per user.
type DashboardService struct {
	favorites favoriteLister
	cache     *CacheService
	logger    *zap.Logger
	ttl       time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(favorites favoriteLister, cache *CacheService, logger *zap.Logger, ttl time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{favorites: favorites, cache: cache, logger: logger, ttl: ttl}
}

// Dashboard returns the admin flag and the user's favorites. The favorites
// part is served from Redis when fresh; favorite toggles invalidate it.
func (s *DashboardService) Dashboard(ctx context.Context, userID string, isAdmin bool) (*dto.DashboardResponse, error) {
	key := fmt.Sprintf("dashboard:user:%s", userID)

	if s.cache != nil {
		var cached []models.Course
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &dto.DashboardResponse{Admin: isAdmin, Favorites: cached}, nil
		}
	}

	favorites, err := s.favorites.ListCourses(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list favorites")
	}
	if favorites == nil {
		favorites = []models.Course{}
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, favorites, s.ttl)
	}
	return &dto.DashboardResponse{Admin: isAdmin, Favorites: favorites}, nil
}
