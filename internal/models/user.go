package models

import "time"

// UserRole mirrors the role column of the utilisateurs table.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User represents an application user stored in the utilisateurs table.
// IDs are short opaque strings ("U" + 8 hex for users, "R" + 9 digits for
// accounts created through registration), kept for compatibility with
// existing data.
type User struct {
	ID           string    `db:"id_utilisateur" json:"id"`
	LastName     string    `db:"nom" json:"nom"`
	FirstName    string    `db:"prenom" json:"prenom"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"mot_de_passe" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	RegisteredAt time.Time `db:"date_inscription" json:"date_inscription"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserProfile stores the learning preferences gathered at registration and
// used to scope recommendations.
type UserProfile struct {
	UserID    string `db:"id_utilisateur" json:"id_utilisateur"`
	Domain    string `db:"domaine_interet" json:"domaine_interet"`
	Objective string `db:"objectifs" json:"objectifs"`
}

// UserFilter captures filtering criteria for the admin user listing.
type UserFilter struct {
	Role     *UserRole
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
