package service

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
)

type mockAuthRepo struct {
	users       map[string]*models.User
	profiles    map[string]*models.UserProfile
	emailTaken  bool
	findErr     error
	lastNewHash string
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		users:    make(map[string]*models.User),
		profiles: make(map[string]*models.UserProfile),
	}
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User, profile *models.UserProfile) error {
	m.users[user.ID] = user
	m.profiles[user.ID] = profile
	return nil
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAuthRepo) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	m.lastNewHash = passwordHash
	if user, ok := m.users[userID]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

type mockSessionStore struct {
	sessions map[string]*models.Session
	revoked  []string
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*models.Session)}
}

func (m *mockSessionStore) Save(ctx context.Context, session *models.Session) error {
	m.sessions[session.Token] = session
	return nil
}

func (m *mockSessionStore) Find(ctx context.Context, token string) (*models.Session, error) {
	session, ok := m.sessions[token]
	if !ok {
		return nil, appErrors.ErrNotAuthenticated
	}
	return session, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *mockSessionStore) DeleteByUser(ctx context.Context, userID string) error {
	m.revoked = append(m.revoked, userID)
	for token, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}

func newAuthService(repo *mockAuthRepo, sessions *mockSessionStore) *AuthService {
	return NewAuthService(repo, sessions, NewValidator(), zap.NewNop(), AuthConfig{
		SessionTTL:  time.Hour,
		ResetSecret: "test-secret",
		ResetTTL:    time.Hour,
	})
}

func seedUser(repo *mockAuthRepo, password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &models.User{
		ID:           "R000000001",
		LastName:     "Martin",
		FirstName:    "Claire",
		Email:        "claire@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	repo.users[user.ID] = user
	return user
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newMockAuthRepo()
	sessions := newMockSessionStore()
	user := seedUser(repo, "password123")
	svc := newAuthService(repo, sessions)

	session, got, err := svc.Login(context.Background(), dto.LoginRequest{Email: "claire@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Len(t, session.Token, 64)
	assert.Contains(t, sessions.sessions, session.Token)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, "password123")
	svc := newAuthService(repo, newMockSessionStore())

	_, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "claire@example.com", Password: "autre"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, "identifiants invalides", appErr.Message)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(newMockAuthRepo(), newMockSessionStore())

	_, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterSuccess(t *testing.T) {
	repo := newMockAuthRepo()
	sessions := newMockSessionStore()
	svc := newAuthService(repo, sessions)

	session, user, err := svc.Register(context.Background(), dto.RegisterRequest{
		LastName:        "Durand",
		FirstName:       "Paul",
		Email:           "paul@example.com",
		Password:        "motdepasse",
		ConfirmPassword: "motdepasse",
		Domain:          models.DomainComputerScience,
		Objective:       models.ObjectiveLearning,
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^R\d{9}$`), user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "motdepasse", user.PasswordHash)
	assert.Contains(t, sessions.sessions, session.Token, "registration opens a session right away")
	assert.Equal(t, models.DomainComputerScience, repo.profiles[user.ID].Domain)
}

func TestAuthServiceRegisterPasswordMismatch(t *testing.T) {
	svc := newAuthService(newMockAuthRepo(), newMockSessionStore())

	_, _, err := svc.Register(context.Background(), dto.RegisterRequest{
		LastName:        "Durand",
		FirstName:       "Paul",
		Email:           "paul@example.com",
		Password:        "motdepasse",
		ConfirmPassword: "autrechose",
		Domain:          models.DomainComputerScience,
		Objective:       models.ObjectiveLearning,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "confirm_password")
}

func TestAuthServiceRegisterInvalidDomain(t *testing.T) {
	svc := newAuthService(newMockAuthRepo(), newMockSessionStore())

	_, _, err := svc.Register(context.Background(), dto.RegisterRequest{
		LastName:        "Durand",
		FirstName:       "Paul",
		Email:           "paul@example.com",
		Password:        "motdepasse",
		ConfirmPassword: "motdepasse",
		Domain:          "Astrologie",
		Objective:       models.ObjectiveLearning,
	})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "domaine_interet")
}

func TestAuthServiceRegisterEmailTaken(t *testing.T) {
	repo := newMockAuthRepo()
	repo.emailTaken = true
	svc := newAuthService(repo, newMockSessionStore())

	_, _, err := svc.Register(context.Background(), dto.RegisterRequest{
		LastName:        "Durand",
		FirstName:       "Paul",
		Email:           "paul@example.com",
		Password:        "motdepasse",
		ConfirmPassword: "motdepasse",
		Domain:          models.DomainComputerScience,
		Objective:       models.ObjectiveLearning,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEmailTaken.Message, appErr.Fields["email"])
}

func TestAuthServiceAuthenticate(t *testing.T) {
	repo := newMockAuthRepo()
	sessions := newMockSessionStore()
	seedUser(repo, "password123")
	svc := newAuthService(repo, sessions)

	session, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "claire@example.com", Password: "password123"})
	require.NoError(t, err)

	found, err := svc.Authenticate(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, found.UserID)

	_, err = svc.Authenticate(context.Background(), "")
	assert.Equal(t, appErrors.ErrNotAuthenticated.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceForgotPasswordUnknownEmail(t *testing.T) {
	svc := newAuthService(newMockAuthRepo(), newMockSessionStore())

	token, err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.NoError(t, err, "unknown addresses must not be distinguishable")
	assert.Empty(t, token)
}

func TestAuthServiceResetPasswordRoundTrip(t *testing.T) {
	repo := newMockAuthRepo()
	sessions := newMockSessionStore()
	user := seedUser(repo, "ancien-mdp")
	oldHash := user.PasswordHash
	svc := newAuthService(repo, sessions)

	token, err := svc.ForgotPassword(context.Background(), user.Email)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	err = svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{
		Token:           token,
		Password:        "nouveau-mdp",
		ConfirmPassword: "nouveau-mdp",
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.Contains(t, sessions.revoked, user.ID, "a reset revokes every open session")
}

func TestAuthServiceResetPasswordBadToken(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, "ancien-mdp")
	svc := newAuthService(repo, newMockSessionStore())

	err := svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{
		Token:           "not-a-jwt",
		Password:        "nouveau-mdp",
		ConfirmPassword: "nouveau-mdp",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrResetToken.Code, appErrors.FromError(err).Code)
}
