package browse

import (
	"context"
	"net/http"

	"github.com/devstorm/docstorm-api/pkg/client"
)

// Outcome is the auth gate verdict for a page load.
type Outcome int

const (
	// Proceed allows the page and its data fetches.
	Proceed Outcome = iota
	// RedirectLogin sends the visitor to the login page.
	RedirectLogin
	// RedirectHome sends an authenticated non-admin away from admin pages.
	RedirectHome
)

// SessionChecker is the slice of the API client the gate needs.
type SessionChecker interface {
	CheckAuth(ctx context.Context) (*client.AuthStatus, error)
	CheckAdmin(ctx context.Context) error
}

// Gate decides whether a page may load. The checks run sequentially: first
// the session, then (for admin pages) the role. No data fetch belongs before
// a Proceed.
type Gate struct {
	api SessionChecker
}

// NewGate constructs a Gate.
func NewGate(api SessionChecker) *Gate {
	return &Gate{api: api}
}

// Check runs the gate for a page. adminPage asks for the extra role check.
func (g *Gate) Check(ctx context.Context, adminPage bool) (Outcome, error) {
	status, err := g.api.CheckAuth(ctx)
	if err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			return RedirectLogin, nil
		}
		return RedirectLogin, err
	}
	if !status.Authenticated {
		return RedirectLogin, nil
	}

	if !adminPage {
		return Proceed, nil
	}

	if err := g.api.CheckAdmin(ctx); err != nil {
		if client.IsStatus(err, http.StatusForbidden) {
			return RedirectHome, nil
		}
		if client.IsStatus(err, http.StatusUnauthorized) {
			return RedirectLogin, nil
		}
		return RedirectHome, err
	}
	return Proceed, nil
}
