package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devstorm/docstorm-api/internal/models"
)

// ReviewRepository manages course ratings in the avis table.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs a ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert stores the review, overwriting a previous one from the same user on
// the same course.
func (r *ReviewRepository) Upsert(ctx context.Context, review *models.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO avis (id_utilisateur, id_cours, note, commentaire, date_avis)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id_utilisateur, id_cours)
        DO UPDATE SET note = EXCLUDED.note, commentaire = EXCLUDED.commentaire, date_avis = EXCLUDED.date_avis
        RETURNING id_avis`
	if err := r.db.GetContext(ctx, &review.ID, query,
		review.UserID, review.CourseID, review.Note, review.Comment, review.CreatedAt); err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	return nil
}

// ListByCourse returns the reviews of a course with author names, most recent
// first.
func (r *ReviewRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.ReviewWithAuthor, error) {
	const query = `SELECT a.id_avis, a.id_utilisateur, a.id_cours, a.note, a.commentaire, a.date_avis, u.nom, u.prenom
        FROM avis a
        JOIN utilisateurs u ON u.id_utilisateur = a.id_utilisateur
        WHERE a.id_cours = $1
        ORDER BY a.date_avis DESC`
	var reviews []models.ReviewWithAuthor
	if err := r.db.SelectContext(ctx, &reviews, query, courseID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
