package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
)

type progressionRepository interface {
	Upsert(ctx context.Context, p *models.Progression) error
	Find(ctx context.Context, userID string, courseID int64) (*models.Progression, error)
	ListByUser(ctx context.Context, userID string) ([]models.ProgressionWithCourse, error)
}

// ProgressionService tracks per-course completion percentages.
type ProgressionService struct {
	repo    progressionRepository
	courses courseFinder
	logger  *zap.Logger
}

// NewProgressionService constructs a ProgressionService.
func NewProgressionService(repo progressionRepository, courses courseFinder, logger *zap.Logger) *ProgressionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressionService{repo: repo, courses: courses, logger: logger}
}

// List returns every progression of the user with the course names.
func (s *ProgressionService) List(ctx context.Context, userID string) ([]dto.ProgressionResponse, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list progressions")
	}
	out := make([]dto.ProgressionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.ProgressionResponse{
			CourseID: row.CourseID,
			Name:     row.Name,
			Percent:  row.Percent,
		})
	}
	return out, nil
}

// Get returns the progression for one course; zero when none was recorded.
func (s *ProgressionService) Get(ctx context.Context, userID string, courseID int64) (*models.Progression, error) {
	p, err := s.repo.Find(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Progression{UserID: userID, CourseID: courseID, Percent: 0}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch progression")
	}
	return p, nil
}

// Set stores the completion percentage for a course.
func (s *ProgressionService) Set(ctx context.Context, userID string, courseID int64, percent int) (*models.Progression, error) {
	if percent < 0 || percent > 100 {
		return nil, appErrors.Validation(map[string]string{"pourcentage": "doit être compris entre 0 et 100"})
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cours introuvable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	p := &models.Progression{UserID: userID, CourseID: courseID, Percent: percent}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save progression")
	}
	return p, nil
}
