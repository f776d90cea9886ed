package models

import "time"

// Progression tracks how far a user got through a course, as a percentage.
type Progression struct {
	UserID    string    `db:"id_utilisateur" json:"id_utilisateur"`
	CourseID  int64     `db:"id_cours" json:"id_cours"`
	Percent   int       `db:"pourcentage" json:"pourcentage"`
	UpdatedAt time.Time `db:"date_maj" json:"date_maj"`
}

// ProgressionWithCourse carries the course name for the progression listing.
type ProgressionWithCourse struct {
	Progression
	Name string `db:"nom" json:"nom"`
}
