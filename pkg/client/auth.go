package client

import "context"

// RegisterPayload is the signup form.
type RegisterPayload struct {
	LastName        string `json:"nom"`
	FirstName       string `json:"prenom"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Domain          string `json:"domaine_interet"`
	Objective       string `json:"objectifs"`
}

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.postJSON(ctx, "POST", "/api/connexion", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account; the backend opens a session right away.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*LoginResult, error) {
	var out LoginResult
	if err := c.postJSON(ctx, "POST", "/api/inscription", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout closes the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "POST", "/api/deconnexion", nil, nil)
}

// CheckAuth probes the session. A 401 comes back as an *APIError.
func (c *Client) CheckAuth(ctx context.Context) (*AuthStatus, error) {
	var out AuthStatus
	if err := c.get(ctx, "/api/auth/check", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckAdmin probes the admin role; 403 for regular accounts.
func (c *Client) CheckAdmin(ctx context.Context) error {
	return c.get(ctx, "/api/admin/check", nil, nil)
}

// ForgotPassword requests a reset token for the address.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.postJSON(ctx, "POST", "/api/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword consumes a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password, confirm string) error {
	payload := map[string]string{
		"token":            token,
		"password":         password,
		"confirm_password": confirm,
	}
	return c.postJSON(ctx, "POST", "/api/reset-password", payload, nil)
}
