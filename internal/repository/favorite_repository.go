package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devstorm/docstorm-api/internal/models"
)

// FavoriteRepository manages the favoris join table.
type FavoriteRepository struct {
	db *sqlx.DB
}

// NewFavoriteRepository constructs a FavoriteRepository.
func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Exists reports whether the user already favorited the course.
func (r *FavoriteRepository) Exists(ctx context.Context, userID string, courseID int64) (bool, error) {
	const query = `SELECT 1 FROM favoris WHERE id_utilisateur = $1 AND id_cours = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, userID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return true, nil
}

// Add stores the favorite. The unique constraint keeps repeated adds from
// duplicating rows.
func (r *FavoriteRepository) Add(ctx context.Context, userID string, courseID int64) error {
	const query = `INSERT INTO favoris (id_utilisateur, id_cours, date_ajout)
        VALUES ($1, $2, $3) ON CONFLICT (id_utilisateur, id_cours) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove deletes the favorite if present.
func (r *FavoriteRepository) Remove(ctx context.Context, userID string, courseID int64) error {
	const query = `DELETE FROM favoris WHERE id_utilisateur = $1 AND id_cours = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// ListCourses returns the user's favorited courses, most recent first.
func (r *FavoriteRepository) ListCourses(ctx context.Context, userID string) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM favoris f
        JOIN cours c ON c.id_cours = f.id_cours
        WHERE f.id_utilisateur = $1
        ORDER BY f.date_ajout DESC`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, userID); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return courses, nil
}
