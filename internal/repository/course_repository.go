package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devstorm/docstorm-api/internal/models"
)

// CourseRepository manages persistence for learning resources.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `c.id_cours, c.nom, c.type_ressource, c.domaine, c.langue, c.niveau, c.objectifs, c.duree, c.chemin_source, c.nombre_vues, c.date_ajout`

// Search returns courses matching the filter: ILIKE on the name, exact match
// on the taxonomy columns.
func (r *CourseRepository) Search(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM cours c"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("c.nom ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Domain != "" {
		conditions = append(conditions, fmt.Sprintf("c.domaine = $%d", len(args)+1))
		args = append(args, filter.Domain)
	}
	if filter.ResourceType != "" {
		conditions = append(conditions, fmt.Sprintf("c.type_ressource = $%d", len(args)+1))
		args = append(args, filter.ResourceType)
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("c.niveau = $%d", len(args)+1))
		args = append(args, filter.Level)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s ORDER BY c.nom ASC LIMIT %d OFFSET %d`, courseColumns, base, size, offset)

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID fetches a single course.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM cours c WHERE c.id_cours = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a new course and fills in the generated ID.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.AddedAt.IsZero() {
		course.AddedAt = time.Now().UTC()
	}
	const query = `INSERT INTO cours (nom, type_ressource, domaine, langue, niveau, objectifs, duree, chemin_source, nombre_vues, date_ajout)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9) RETURNING id_cours`
	if err := r.db.GetContext(ctx, &course.ID, query,
		course.Name, course.ResourceType, course.Domain, course.Language,
		course.Level, course.Objective, course.Duration, course.SourcePath, course.AddedAt); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE cours SET nom = :nom, type_ressource = :type_ressource, domaine = :domaine,
        langue = :langue, niveau = :niveau, objectifs = :objectifs, duree = :duree, chemin_source = :chemin_source
        WHERE id_cours = :id_cours`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course. Dependent favorites, reviews, history entries and
// progressions cascade.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM cours WHERE id_cours = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// IncrementViewCount bumps nombre_vues by one.
func (r *CourseRepository) IncrementViewCount(ctx context.Context, id int64) error {
	const query = `UPDATE cours SET nombre_vues = nombre_vues + 1 WHERE id_cours = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// Recommend scores courses for the user's profile and returns the best
// matches. Profile preferences constrain conjunctively, each only when set.
// Courses the user already consulted, favorited or reviewed are excluded so
// the feed keeps surfacing new material.
func (r *CourseRepository) Recommend(ctx context.Context, userID string, profile *models.UserProfile, limit int) ([]models.ScoredCourse, error) {
	if limit <= 0 {
		limit = 30
	}

	args := []interface{}{}
	conditions := []string{}
	if profile.Domain != "" {
		args = append(args, profile.Domain)
		conditions = append(conditions, fmt.Sprintf("c.domaine = $%d", len(args)))
	}
	if profile.Objective != "" {
		args = append(args, profile.Objective)
		conditions = append(conditions, fmt.Sprintf("c.objectifs = $%d", len(args)))
	}
	args = append(args, userID)
	seen := len(args)
	conditions = append(conditions,
		fmt.Sprintf("c.id_cours NOT IN (SELECT id_cours FROM favoris WHERE id_utilisateur = $%d)", seen),
		fmt.Sprintf("c.id_cours NOT IN (SELECT id_cours FROM historique_consultation WHERE id_utilisateur = $%d)", seen),
		fmt.Sprintf("c.id_cours NOT IN (SELECT id_cours FROM avis WHERE id_utilisateur = $%d)", seen),
	)
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s,
        (0.3 * c.nombre_vues
         + 0.3 * COALESCE(av.note_moyenne, 0) * 20
         + 0.2 * COALESCE(fv.total, 0)
         + 0.2 * COALESCE(hs.total, 0)) AS score
        FROM cours c
        LEFT JOIN (SELECT id_cours, AVG(note) AS note_moyenne FROM avis GROUP BY id_cours) av ON av.id_cours = c.id_cours
        LEFT JOIN (SELECT id_cours, COUNT(*) AS total FROM favoris GROUP BY id_cours) fv ON fv.id_cours = c.id_cours
        LEFT JOIN (SELECT id_cours, COUNT(*) AS total FROM historique_consultation GROUP BY id_cours) hs ON hs.id_cours = c.id_cours
        WHERE %s
        ORDER BY score DESC, c.date_ajout DESC
        LIMIT $%d`, courseColumns, strings.Join(conditions, " AND "), len(args))

	var courses []models.ScoredCourse
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("recommend courses: %w", err)
	}
	return courses, nil
}
