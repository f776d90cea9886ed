package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devstorm/docstorm-api/internal/models"
)

// UserRepository manages persistence for user accounts and their learning
// profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and its profile in a single transaction.
func (r *UserRepository) Create(ctx context.Context, user *models.User, profile *models.UserProfile) error {
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const userQuery = `INSERT INTO utilisateurs (id_utilisateur, nom, prenom, email, mot_de_passe, role, date_inscription)
        VALUES (:id_utilisateur, :nom, :prenom, :email, :mot_de_passe, :role, :date_inscription)`
	if _, err := tx.NamedExecContext(ctx, userQuery, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	const profileQuery = `INSERT INTO profils_utilisateurs (id_utilisateur, domaine_interet, objectifs)
        VALUES (:id_utilisateur, :domaine_interet, :objectifs)`
	if _, err := tx.NamedExecContext(ctx, profileQuery, profile); err != nil {
		return fmt.Errorf("create user profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

// FindByEmail fetches a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id_utilisateur, nom, prenom, email, mot_de_passe, role, date_inscription
        FROM utilisateurs WHERE LOWER(email) = LOWER($1)`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID fetches a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id_utilisateur, nom, prenom, email, mot_de_passe, role, date_inscription
        FROM utilisateurs WHERE id_utilisateur = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists checks if the email is already registered, optionally excluding
// an account (for profile updates).
func (r *UserRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT 1 FROM utilisateurs WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id_utilisateur <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// GetProfile returns the learning profile for a user.
func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	const query = `SELECT id_utilisateur, domaine_interet, objectifs FROM profils_utilisateurs WHERE id_utilisateur = $1`
	var profile models.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateIdentity modifies name and email fields.
func (r *UserRepository) UpdateIdentity(ctx context.Context, user *models.User) error {
	const query = `UPDATE utilisateurs SET nom = :nom, prenom = :prenom, email = :email WHERE id_utilisateur = :id_utilisateur`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateProfile modifies the learning preferences.
func (r *UserRepository) UpdateProfile(ctx context.Context, profile *models.UserProfile) error {
	const query = `UPDATE profils_utilisateurs SET domaine_interet = :domaine_interet, objectifs = :objectifs
        WHERE id_utilisateur = :id_utilisateur`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// UpdatePassword stores a new bcrypt hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const query = `UPDATE utilisateurs SET mot_de_passe = $2 WHERE id_utilisateur = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateRole changes the account role.
func (r *UserRepository) UpdateRole(ctx context.Context, userID string, role models.UserRole) error {
	const query = `UPDATE utilisateurs SET role = $2 WHERE id_utilisateur = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

// Delete removes the user. Dependent rows (profile, favorites, reviews,
// history, progressions) are removed by ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM utilisateurs WHERE id_utilisateur = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// List returns users matching the provided filters for the admin screen.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	base := "FROM utilisateurs u"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.nom) LIKE $%d OR LOWER(u.prenom) LIKE $%d OR LOWER(u.email) LIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT u.id_utilisateur, u.nom, u.prenom, u.email, u.mot_de_passe, u.role, u.date_inscription
        %s ORDER BY u.date_inscription DESC LIMIT %d OFFSET %d`, base, size, offset)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}
