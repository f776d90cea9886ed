package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateIdentity(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, profile *models.UserProfile) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateRole(ctx context.Context, userID string, role models.UserRole) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

// UserService covers the account screens plus the admin user management.
type UserService struct {
	repo      userRepository
	sessions  sessionStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, sessions sessionStore, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &UserService{repo: repo, sessions: sessions, validator: validate, logger: logger}
}

// Profile returns the account identity and learning preferences.
func (s *UserService) Profile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	resp := &dto.ProfileResponse{
		ID:        user.ID,
		LastName:  user.LastName,
		FirstName: user.FirstName,
		Email:     user.Email,
		Admin:     user.IsAdmin(),
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	if err == nil {
		resp.Domain = profile.Domain
		resp.Objective = profile.Objective
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch profile")
	}
	return resp, nil
}

// UpdateProfile applies partial changes to identity and preferences.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(fieldErrors(err))
	}

	fields := map[string]string{}
	if req.Domain != "" && !oneOf(req.Domain, models.Domains()) {
		fields["domaine_interet"] = "valeur invalide"
	}
	if req.Objective != "" && !oneOf(req.Objective, models.Objectives()) {
		fields["objectifs"] = "valeur invalide"
	}
	if len(fields) > 0 {
		return nil, appErrors.Validation(fields)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if req.Email != "" && req.Email != user.Email {
		taken, err := s.repo.EmailExists(ctx, req.Email, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
		if taken {
			return nil, appErrors.Validation(map[string]string{"email": appErrors.ErrEmailTaken.Message})
		}
		user.Email = req.Email
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if err := s.repo.UpdateIdentity(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	if req.Domain != "" || req.Objective != "" {
		profile, err := s.repo.GetProfile(ctx, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch profile")
		}
		if profile == nil {
			profile = &models.UserProfile{UserID: userID}
		}
		if req.Domain != "" {
			profile.Domain = req.Domain
		}
		if req.Objective != "" {
			profile.Objective = req.Objective
		}
		if err := s.repo.UpdateProfile(ctx, profile); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
		}
	}

	return s.Profile(ctx, userID)
}

// ChangePassword verifies the current password before storing the new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(fieldErrors(err))
	}
	if req.NewPassword != req.ConfirmPassword {
		return appErrors.Validation(map[string]string{"confirm_password": "les mots de passe ne correspondent pas"})
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "mot de passe actuel incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

// DeleteAccount removes the account after a password confirmation and revokes
// its sessions.
func (s *UserService) DeleteAccount(ctx context.Context, userID string, password string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "mot de passe incorrect")
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	if s.sessions != nil {
		if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
			s.logger.Warn("failed to revoke sessions", zap.Error(err), zap.String("user_id", userID))
		}
	}
	s.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}

// ListUsers returns the paginated admin user listing.
func (s *UserService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// SetRole promotes or demotes an account. Admins cannot demote themselves, so
// the platform always keeps at least the acting admin.
func (s *UserService) SetRole(ctx context.Context, actingUserID, targetUserID string, admin bool) error {
	if actingUserID == targetUserID && !admin {
		return appErrors.Clone(appErrors.ErrForbidden, "impossible de retirer ses propres droits")
	}
	if _, err := s.repo.FindByID(ctx, targetUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "utilisateur introuvable")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	role := models.RoleUser
	if admin {
		role = models.RoleAdmin
	}
	if err := s.repo.UpdateRole(ctx, targetUserID, role); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	s.logger.Info("role updated", zap.String("user_id", targetUserID), zap.Bool("admin", admin))
	return nil
}

// RemoveUser deletes another account (admin action) and revokes its sessions.
func (s *UserService) RemoveUser(ctx context.Context, actingUserID, targetUserID string) error {
	if actingUserID == targetUserID {
		return appErrors.Clone(appErrors.ErrForbidden, "impossible de supprimer son propre compte ici")
	}
	if _, err := s.repo.FindByID(ctx, targetUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "utilisateur introuvable")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if err := s.repo.Delete(ctx, targetUserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	if s.sessions != nil {
		if err := s.sessions.DeleteByUser(ctx, targetUserID); err != nil {
			s.logger.Warn("failed to revoke sessions", zap.Error(err), zap.String("user_id", targetUserID))
		}
	}
	return nil
}
