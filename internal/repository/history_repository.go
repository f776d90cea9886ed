package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devstorm/docstorm-api/internal/models"
)

// HistoryRepository manages the historique_consultation table.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs a HistoryRepository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// RecordOnce inserts a consultation entry unless one already exists for the
// same user, course and UTC day. Returns true when a row was inserted, which
// is the signal to also bump the course view count.
func (r *HistoryRepository) RecordOnce(ctx context.Context, userID string, courseID int64, at time.Time) (bool, error) {
	const query = `INSERT INTO historique_consultation (id_utilisateur, id_cours, date_consultation)
        SELECT $1, $2, $3
        WHERE NOT EXISTS (
            SELECT 1 FROM historique_consultation
            WHERE id_utilisateur = $1 AND id_cours = $2
              AND date_consultation::date = ($3::timestamptz)::date
        )`
	res, err := r.db.ExecContext(ctx, query, userID, courseID, at.UTC())
	if err != nil {
		return false, fmt.Errorf("record consultation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record consultation result: %w", err)
	}
	return affected > 0, nil
}

// ListCourses returns the user's consulted courses, most recent first.
func (r *HistoryRepository) ListCourses(ctx context.Context, userID string) ([]models.HistoryCourse, error) {
	query := fmt.Sprintf(`SELECT %s, h.date_consultation FROM historique_consultation h
        JOIN cours c ON c.id_cours = h.id_cours
        WHERE h.id_utilisateur = $1
        ORDER BY h.date_consultation DESC`, courseColumns)
	var courses []models.HistoryCourse
	if err := r.db.SelectContext(ctx, &courses, query, userID); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return courses, nil
}

// Clear removes the user's whole consultation history.
func (r *HistoryRepository) Clear(ctx context.Context, userID string) error {
	const query = `DELETE FROM historique_consultation WHERE id_utilisateur = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
