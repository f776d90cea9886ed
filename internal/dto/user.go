package dto

// ProfileResponse is the /api/user/profile payload.
type ProfileResponse struct {
	ID        string `json:"id"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Email     string `json:"email"`
	Domain    string `json:"domaine_interet"`
	Objective string `json:"objectifs"`
	Admin     bool   `json:"admin"`
}

// UpdateProfileRequest updates identity and preference fields. Empty fields
// are left unchanged.
type UpdateProfileRequest struct {
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Email     string `json:"email" validate:"omitempty,email"`
	Domain    string `json:"domaine_interet"`
	Objective string `json:"objectifs"`
}

// ChangePasswordRequest carries the /api/user/password payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// DeleteAccountRequest confirms account deletion with the password.
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// UpdateRoleRequest is the admin role-change payload.
type UpdateRoleRequest struct {
	Admin bool `json:"admin"`
}
