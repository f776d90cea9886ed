package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOnceInsertsFirstVisit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	at := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO historique_consultation").
		WithArgs("R000000001", int64(5), at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.RecordOnce(context.Background(), "R000000001", 5, at)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOnceSkipsRepeatVisitSameDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	at := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO historique_consultation").
		WithArgs("R000000001", int64(5), at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.RecordOnce(context.Background(), "R000000001", 5, at)
	require.NoError(t, err)
	assert.False(t, inserted, "a second visit the same day inserts nothing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryListCourses(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	columns := append(append([]string{}, courseRowColumns...), "date_consultation")
	rows := sqlmock.NewRows(columns).
		AddRow(append(courseRow(3, "Thermodynamique"), time.Now())...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM historique_consultation h")).
		WithArgs("R000000001").
		WillReturnRows(rows)

	courses, err := repo.ListCourses(context.Background(), "R000000001")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Thermodynamique", courses[0].Name)
}

func TestHistoryClear(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM historique_consultation WHERE id_utilisateur = $1")).
		WithArgs("R000000001").
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.Clear(context.Background(), "R000000001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
