package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
)

type historyRepository interface {
	RecordOnce(ctx context.Context, userID string, courseID int64, at time.Time) (bool, error)
	ListCourses(ctx context.Context, userID string) ([]models.HistoryCourse, error)
	Clear(ctx context.Context, userID string) error
}

type viewCounter interface {
	IncrementViewCount(ctx context.Context, id int64) error
}

// HistoryService records and lists course consultations. RecordView runs on
// the jobs queue, off the detail request path.
type HistoryService struct {
	history historyRepository
	courses viewCounter
	logger  *zap.Logger
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(history historyRepository, courses viewCounter, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{history: history, courses: courses, logger: logger}
}

// RecordView stores the consultation and, when it is the first for this user,
// course and UTC day, bumps the course view counter. Repeat visits within the
// same day change nothing.
func (s *HistoryService) RecordView(ctx context.Context, userID string, courseID int64, at time.Time) error {
	inserted, err := s.history.RecordOnce(ctx, userID, courseID, at)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}
	if err := s.courses.IncrementViewCount(ctx, courseID); err != nil {
		return err
	}
	s.logger.Debug("consultation recorded",
		zap.String("user_id", userID), zap.Int64("course_id", courseID))
	return nil
}

// List returns the consultation history, most recent first.
func (s *HistoryService) List(ctx context.Context, userID string) ([]models.HistoryCourse, error) {
	courses, err := s.history.ListCourses(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list history")
	}
	return courses, nil
}

// Clear wipes the user's consultation history.
func (s *HistoryService) Clear(ctx context.Context, userID string) error {
	if err := s.history.Clear(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear history")
	}
	return nil
}
