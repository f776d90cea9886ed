package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devstorm/docstorm-api/internal/models"
)

func TestUserCreateRunsInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO utilisateurs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO profils_utilisateurs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &models.User{
		ID:           "R000000001",
		LastName:     "Martin",
		FirstName:    "Claire",
		Email:        "claire@example.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
	}
	profile := &models.UserProfile{
		UserID:    "R000000001",
		Domain:    models.DomainComputerScience,
		Objective: models.ObjectiveLearning,
	}
	require.NoError(t, repo.Create(context.Background(), user, profile))
	assert.False(t, user.RegisteredAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateRollsBackOnProfileFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO utilisateurs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO profils_utilisateurs").WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	user := &models.User{ID: "R000000001", Email: "claire@example.com", Role: models.RoleUser}
	profile := &models.UserProfile{UserID: "R000000001"}
	require.Error(t, repo.Create(context.Background(), user, profile))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByEmailIsCaseInsensitive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id_utilisateur", "nom", "prenom", "email", "mot_de_passe", "role", "date_inscription"}).
		AddRow("R000000001", "Martin", "Claire", "claire@example.com", "hash", string(models.RoleUser), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
		WithArgs("Claire@Example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "Claire@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "claire@example.com", user.Email)
}

func TestUserEmailExistsExcludesAccount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND id_utilisateur <> $2")).
		WithArgs("claire@example.com", "R000000001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	taken, err := repo.EmailExists(context.Background(), "claire@example.com", "R000000001")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUserListWithSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id_utilisateur", "nom", "prenom", "email", "mot_de_passe", "role", "date_inscription"}).
		AddRow("R000000001", "Martin", "Claire", "claire@example.com", "hash", string(models.RoleUser), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("LOWER(u.nom) LIKE $1")).
		WithArgs("%martin%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM utilisateurs u")).
		WithArgs("%martin%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{Search: "Martin"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE utilisateurs SET role = $2 WHERE id_utilisateur = $1")).
		WithArgs("R000000001", string(models.RoleAdmin)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateRole(context.Background(), "R000000001", models.RoleAdmin))
	assert.NoError(t, mock.ExpectationsWereMet())
}
