package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devstorm/docstorm-api/internal/models"
)

// ProgressionRepository manages per-course completion percentages.
type ProgressionRepository struct {
	db *sqlx.DB
}

// NewProgressionRepository constructs a ProgressionRepository.
func NewProgressionRepository(db *sqlx.DB) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

// Upsert stores the completion percentage for a (user, course) pair.
func (r *ProgressionRepository) Upsert(ctx context.Context, p *models.Progression) error {
	p.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO progressions (id_utilisateur, id_cours, pourcentage, date_maj)
        VALUES (:id_utilisateur, :id_cours, :pourcentage, :date_maj)
        ON CONFLICT (id_utilisateur, id_cours)
        DO UPDATE SET pourcentage = EXCLUDED.pourcentage, date_maj = EXCLUDED.date_maj`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("upsert progression: %w", err)
	}
	return nil
}

// Find returns the progression for a (user, course) pair.
func (r *ProgressionRepository) Find(ctx context.Context, userID string, courseID int64) (*models.Progression, error) {
	const query = `SELECT id_utilisateur, id_cours, pourcentage, date_maj
        FROM progressions WHERE id_utilisateur = $1 AND id_cours = $2`
	var p models.Progression
	if err := r.db.GetContext(ctx, &p, query, userID, courseID); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns all progressions with the course name for display.
func (r *ProgressionRepository) ListByUser(ctx context.Context, userID string) ([]models.ProgressionWithCourse, error) {
	const query = `SELECT p.id_utilisateur, p.id_cours, p.pourcentage, p.date_maj, c.nom
        FROM progressions p
        JOIN cours c ON c.id_cours = p.id_cours
        WHERE p.id_utilisateur = $1
        ORDER BY p.date_maj DESC`
	var rows []models.ProgressionWithCourse
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list progressions: %w", err)
	}
	return rows, nil
}
