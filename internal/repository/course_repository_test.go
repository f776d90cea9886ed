package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devstorm/docstorm-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var courseRowColumns = []string{
	"id_cours", "nom", "type_ressource", "domaine", "langue", "niveau",
	"objectifs", "duree", "chemin_source", "nombre_vues", "date_ajout",
}

func courseRow(id int64, name string) []driver.Value {
	return []driver.Value{
		id, name, models.ResourceTutorial, models.DomainComputerScience, models.LanguageFrench,
		models.LevelBeginner, models.ObjectiveLearning, nil, "cours/doc.pdf", 3, time.Now(),
	}
}

func TestCourseSearchWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows(courseRowColumns).AddRow(courseRow(1, "Introduction à Python")...)
	mock.ExpectQuery(regexp.QuoteMeta("c.nom ILIKE $1 AND c.domaine = $2")).
		WithArgs("%python%", models.DomainComputerScience).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cours c WHERE 1=1 AND c.nom ILIKE $1 AND c.domaine = $2")).
		WithArgs("%python%", models.DomainComputerScience).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.Search(context.Background(), models.CourseFilter{
		Search: "python",
		Domain: models.DomainComputerScience,
	})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Introduction à Python", courses[0].Name)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseSearchNoFilterListsAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows(courseRowColumns).
		AddRow(courseRow(1, "Algèbre")...).
		AddRow(courseRow(2, "Chimie")...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM cours c WHERE 1=1 ORDER BY c.nom ASC LIMIT 100 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cours c WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	courses, total, err := repo.Search(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM cours c WHERE c.id_cours = $1")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestCourseCreateFillsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("INSERT INTO cours").
		WillReturnRows(sqlmock.NewRows([]string{"id_cours"}).AddRow(42))

	course := &models.Course{
		Name:         "Introduction à Go",
		ResourceType: models.ResourceTutorial,
		Domain:       models.DomainComputerScience,
		Language:     models.LanguageFrench,
		Level:        models.LevelBeginner,
		Objective:    models.ObjectiveLearning,
		SourcePath:   "cours/go.pdf",
	}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, int64(42), course.ID)
	assert.False(t, course.AddedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementViewCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cours SET nombre_vues = nombre_vues + 1 WHERE id_cours = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementViewCount(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendFiltersAndScores(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	columns := append(append([]string{}, courseRowColumns...), "score")
	rows := sqlmock.NewRows(columns).
		AddRow(append(courseRow(7, "Structures de données"), 58.4)...)
	mock.ExpectQuery(regexp.QuoteMeta("c.domaine = $1 AND c.objectifs = $2")).
		WithArgs(models.DomainComputerScience, models.ObjectiveLearning, "R000000001", 30).
		WillReturnRows(rows)

	profile := &models.UserProfile{
		UserID:    "R000000001",
		Domain:    models.DomainComputerScience,
		Objective: models.ObjectiveLearning,
	}
	scored, err := repo.Recommend(context.Background(), "R000000001", profile, 0)
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, "Structures de données", scored[0].Name)
	assert.InDelta(t, 58.4, scored[0].Score, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendSkipsUnsetPreferences(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	columns := append(append([]string{}, courseRowColumns...), "score")
	rows := sqlmock.NewRows(columns).
		AddRow(append(courseRow(9, "Thermodynamique"), 12.0)...)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.domaine = $1 AND c.id_cours NOT IN")).
		WithArgs(models.DomainPhysics, "R000000001", 30).
		WillReturnRows(rows)

	profile := &models.UserProfile{UserID: "R000000001", Domain: models.DomainPhysics}
	scored, err := repo.Recommend(context.Background(), "R000000001", profile, 0)
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, "Thermodynamique", scored[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
