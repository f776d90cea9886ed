package dto

// LoginRequest carries the /api/connexion credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse mirrors the body the front-end login form expects.
type LoginResponse struct {
	Message string `json:"message"`
	Admin   bool   `json:"admin"`
}

// RegisterRequest carries the /api/inscription payload. Enum fields are
// checked against the course taxonomy, not with struct tags, because the
// accepted values contain spaces.
type RegisterRequest struct {
	LastName        string `json:"nom" validate:"required"`
	FirstName       string `json:"prenom" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Domain          string `json:"domaine_interet" validate:"required"`
	Objective       string `json:"objectifs" validate:"required"`
}

// AuthCheckResponse is returned by /api/auth/check for a live session.
type AuthCheckResponse struct {
	Authenticated bool `json:"authenticated"`
	Admin         bool `json:"admin"`
}

// ForgotPasswordRequest asks for a reset token by email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}
