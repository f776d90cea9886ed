package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/devstorm/docstorm-api/internal/dto"
)

// StatsRepository aggregates platform counters for the admin screens.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview returns the global platform counters.
func (r *StatsRepository) Overview(ctx context.Context) (*dto.StatsOverview, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM utilisateurs) AS total_users,
        (SELECT COUNT(*) FROM cours) AS total_courses,
        (SELECT COUNT(*) FROM favoris) AS total_favorites,
        (SELECT COUNT(*) FROM avis) AS total_reviews,
        (SELECT COALESCE(SUM(nombre_vues), 0) FROM cours) AS total_views`
	var overview struct {
		TotalUsers     int `db:"total_users"`
		TotalCourses   int `db:"total_courses"`
		TotalFavorites int `db:"total_favorites"`
		TotalReviews   int `db:"total_reviews"`
		TotalViews     int `db:"total_views"`
	}
	if err := r.db.GetContext(ctx, &overview, query); err != nil {
		return nil, fmt.Errorf("stats overview: %w", err)
	}
	return &dto.StatsOverview{
		TotalUsers:     overview.TotalUsers,
		TotalCourses:   overview.TotalCourses,
		TotalFavorites: overview.TotalFavorites,
		TotalReviews:   overview.TotalReviews,
		TotalViews:     overview.TotalViews,
	}, nil
}

// TopCourses returns the most viewed courses with their favorite counts and
// average ratings.
func (r *StatsRepository) TopCourses(ctx context.Context, limit int) ([]dto.TopCourse, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT c.id_cours, c.nom, c.domaine, c.nombre_vues,
        COALESCE(fv.total, 0) AS favoris,
        COALESCE(av.note_moyenne, 0) AS note_moyenne
        FROM cours c
        LEFT JOIN (SELECT id_cours, COUNT(*) AS total FROM favoris GROUP BY id_cours) fv ON fv.id_cours = c.id_cours
        LEFT JOIN (SELECT id_cours, ROUND(AVG(note)::numeric, 2) AS note_moyenne FROM avis GROUP BY id_cours) av ON av.id_cours = c.id_cours
        ORDER BY c.nombre_vues DESC, favoris DESC
        LIMIT $1`
	var rows []dto.TopCourse
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("top courses: %w", err)
	}
	return rows, nil
}

// CoursesActivity returns consultation counts per day over the trailing
// window.
func (r *StatsRepository) CoursesActivity(ctx context.Context, days int) ([]dto.ActivityPoint, error) {
	if days <= 0 {
		days = 30
	}
	const query = `SELECT TO_CHAR(date_consultation::date, 'YYYY-MM-DD') AS jour, COUNT(*) AS total
        FROM historique_consultation
        WHERE date_consultation >= NOW() - ($1 || ' days')::interval
        GROUP BY date_consultation::date
        ORDER BY date_consultation::date`
	var rows []dto.ActivityPoint
	if err := r.db.SelectContext(ctx, &rows, query, days); err != nil {
		return nil, fmt.Errorf("courses activity: %w", err)
	}
	return rows, nil
}

// UsersActivity returns registrations per day over the trailing window.
func (r *StatsRepository) UsersActivity(ctx context.Context, days int) ([]dto.ActivityPoint, error) {
	if days <= 0 {
		days = 30
	}
	const query = `SELECT TO_CHAR(date_inscription::date, 'YYYY-MM-DD') AS jour, COUNT(*) AS total
        FROM utilisateurs
        WHERE date_inscription >= NOW() - ($1 || ' days')::interval
        GROUP BY date_inscription::date
        ORDER BY date_inscription::date`
	var rows []dto.ActivityPoint
	if err := r.db.SelectContext(ctx, &rows, query, days); err != nil {
		return nil, fmt.Errorf("users activity: %w", err)
	}
	return rows, nil
}
