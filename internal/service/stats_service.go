package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/internal/dto"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
	"github.com/devstorm/docstorm-api/pkg/export"
)

type statsRepository interface {
	Overview(ctx context.Context) (*dto.StatsOverview, error)
	TopCourses(ctx context.Context, limit int) ([]dto.TopCourse, error)
	CoursesActivity(ctx context.Context, days int) ([]dto.ActivityPoint, error)
	UsersActivity(ctx context.Context, days int) ([]dto.ActivityPoint, error)
}

// StatsExport is a rendered statistics file ready to stream to the admin.
type StatsExport struct {
	Filename    string
	ContentType string
	Content     []byte
}

// StatsService serves the admin analytics screens, cached in Redis, and
// renders the CSV/PDF exports.
type StatsService struct {
	repo   statsRepository
	cache  *CacheService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
	ttl    time.Duration
}

// NewStatsService constructs a StatsService.
func NewStatsService(repo statsRepository, cache *CacheService, logger *zap.Logger, ttl time.Duration) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StatsService{
		repo:   repo,
		cache:  cache,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
		ttl:    ttl,
	}
}

// Overview returns the global counters.
func (s *StatsService) Overview(ctx context.Context) (*dto.StatsOverview, error) {
	const key = "stats:overview"
	if s.cache != nil {
		var cached dto.StatsOverview
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}
	overview, err := s.repo.Overview(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute stats")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, overview, s.ttl)
	}
	return overview, nil
}

// TopCourses returns the most consulted courses.
func (s *StatsService) TopCourses(ctx context.Context, limit int) ([]dto.TopCourse, error) {
	key := fmt.Sprintf("stats:top-courses:%d", limit)
	if s.cache != nil {
		var cached []dto.TopCourse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}
	rows, err := s.repo.TopCourses(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute top courses")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, rows, s.ttl)
	}
	return rows, nil
}

// CoursesActivity returns consultation counts per day.
func (s *StatsService) CoursesActivity(ctx context.Context, days int) ([]dto.ActivityPoint, error) {
	key := fmt.Sprintf("stats:courses-activity:%d", days)
	if s.cache != nil {
		var cached []dto.ActivityPoint
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}
	rows, err := s.repo.CoursesActivity(ctx, days)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute courses activity")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, rows, s.ttl)
	}
	return rows, nil
}

// UsersActivity returns registrations per day.
func (s *StatsService) UsersActivity(ctx context.Context, days int) ([]dto.ActivityPoint, error) {
	key := fmt.Sprintf("stats:users-activity:%d", days)
	if s.cache != nil {
		var cached []dto.ActivityPoint
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}
	rows, err := s.repo.UsersActivity(ctx, days)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute users activity")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, rows, s.ttl)
	}
	return rows, nil
}

// Export renders the top-courses table as CSV or PDF.
func (s *StatsService) Export(ctx context.Context, format string) (*StatsExport, error) {
	rows, err := s.TopCourses(ctx, 50)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Cours", "Domaine", "Vues", "Favoris", "Note moyenne"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Cours":        row.Name,
			"Domaine":      row.Domain,
			"Vues":         strconv.Itoa(row.ViewCount),
			"Favoris":      strconv.Itoa(row.Favorites),
			"Note moyenne": strconv.FormatFloat(row.AvgNote, 'f', 2, 64),
		})
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	switch format {
	case "csv", "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &StatsExport{
			Filename:    fmt.Sprintf("statistiques-%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "Statistiques DocStorm")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &StatsExport{
			Filename:    fmt.Sprintf("statistiques-%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Validation(map[string]string{"format": "format inconnu (csv ou pdf)"})
	}
}
