package models

import "time"

// Favorite links a user to a bookmarked course. The (user, course) pair is
// unique in the favoris table.
type Favorite struct {
	UserID   string    `db:"id_utilisateur" json:"id_utilisateur"`
	CourseID int64     `db:"id_cours" json:"id_cours"`
	AddedAt  time.Time `db:"date_ajout" json:"date_ajout"`
}
