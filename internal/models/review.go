package models

import "time"

// Review represents a rating left on a course (avis table). One review per
// (user, course); submitting again overwrites note and comment.
type Review struct {
	ID        int64     `db:"id_avis" json:"id_avis"`
	UserID    string    `db:"id_utilisateur" json:"id_utilisateur"`
	CourseID  int64     `db:"id_cours" json:"id_cours"`
	Note      int       `db:"note" json:"note"`
	Comment   string    `db:"commentaire" json:"commentaire"`
	CreatedAt time.Time `db:"date_avis" json:"date_avis"`
}

// ReviewWithAuthor carries the reviewer's display name for the course detail
// page.
type ReviewWithAuthor struct {
	Review
	AuthorLastName  string `db:"nom" json:"nom"`
	AuthorFirstName string `db:"prenom" json:"prenom"`
}
