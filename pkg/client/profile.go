package client

import (
	"context"

	"go.uber.org/zap"
)

// GetFavorites lists the bookmarked courses. Failures degrade to an empty
// slice with a logged warning, keeping the profile page up.
func (c *Client) GetFavorites(ctx context.Context) ([]Course, error) {
	var out []Course
	if err := c.get(ctx, "/api/profil/favoris", nil, &out); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("favorites fetch failed", zap.Error(err))
		return []Course{}, nil
	}
	if out == nil {
		out = []Course{}
	}
	return out, nil
}

// GetHistory lists the consultation history, degrading like GetFavorites.
func (c *Client) GetHistory(ctx context.Context) ([]HistoryCourse, error) {
	var out []HistoryCourse
	if err := c.get(ctx, "/api/profil/historique", nil, &out); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("history fetch failed", zap.Error(err))
		return []HistoryCourse{}, nil
	}
	if out == nil {
		out = []HistoryCourse{}
	}
	return out, nil
}

// ClearHistory wipes the consultation history.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.postJSON(ctx, "POST", "/api/profil/historique/clear", nil, nil)
}

// GetProfile fetches the account screen payload.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.get(ctx, "/api/user/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfilePayload carries partial account changes.
type UpdateProfilePayload struct {
	LastName  string `json:"nom,omitempty"`
	FirstName string `json:"prenom,omitempty"`
	Email     string `json:"email,omitempty"`
	Domain    string `json:"domaine_interet,omitempty"`
	Objective string `json:"objectifs,omitempty"`
}

// UpdateProfile applies account changes and returns the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, payload UpdateProfilePayload) (*Profile, error) {
	var out Profile
	if err := c.postJSON(ctx, "PUT", "/api/user/profile", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, current, next, confirm string) error {
	payload := map[string]string{
		"current_password": current,
		"new_password":     next,
		"confirm_password": confirm,
	}
	return c.postJSON(ctx, "POST", "/api/user/password", payload, nil)
}

// DeleteAccount removes the account after a password confirmation.
func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	return c.postJSON(ctx, "POST", "/api/user/delete", map[string]string{"password": password}, nil)
}
