package browse

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devstorm/docstorm-api/pkg/client"
)

type mockSessionChecker struct {
	status   *client.AuthStatus
	authErr  error
	adminErr error
	calls    []string
}

func (m *mockSessionChecker) CheckAuth(ctx context.Context) (*client.AuthStatus, error) {
	m.calls = append(m.calls, "auth")
	if m.authErr != nil {
		return nil, m.authErr
	}
	return m.status, nil
}

func (m *mockSessionChecker) CheckAdmin(ctx context.Context) error {
	m.calls = append(m.calls, "admin")
	return m.adminErr
}

func TestGateAuthenticatedUser(t *testing.T) {
	api := &mockSessionChecker{status: &client.AuthStatus{Authenticated: true}}
	outcome, err := NewGate(api).Check(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, Proceed, outcome)
	assert.Equal(t, []string{"auth"}, api.calls, "no role check on regular pages")
}

func TestGateExpiredSession(t *testing.T) {
	api := &mockSessionChecker{authErr: &client.APIError{Status: http.StatusUnauthorized}}
	outcome, err := NewGate(api).Check(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, RedirectLogin, outcome)
	assert.Equal(t, []string{"auth"}, api.calls, "role check never runs without a session")
}

func TestGateUnauthenticatedStatus(t *testing.T) {
	api := &mockSessionChecker{status: &client.AuthStatus{Authenticated: false}}
	outcome, err := NewGate(api).Check(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, RedirectLogin, outcome)
}

func TestGateNonAdminOnAdminPage(t *testing.T) {
	api := &mockSessionChecker{
		status:   &client.AuthStatus{Authenticated: true},
		adminErr: &client.APIError{Status: http.StatusForbidden},
	}
	outcome, err := NewGate(api).Check(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, RedirectHome, outcome)
	assert.Equal(t, []string{"auth", "admin"}, api.calls, "session first, role second")
}

func TestGateAdminOnAdminPage(t *testing.T) {
	api := &mockSessionChecker{status: &client.AuthStatus{Authenticated: true, Admin: true}}
	outcome, err := NewGate(api).Check(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, Proceed, outcome)
}

func TestGateNetworkFailure(t *testing.T) {
	api := &mockSessionChecker{authErr: errors.New("connection refused")}
	outcome, err := NewGate(api).Check(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, RedirectLogin, outcome)
}
