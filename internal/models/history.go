package models

import "time"

// HistoryEntry records a course consultation (historique_consultation table).
// At most one entry is stored per user, course and UTC day; the same rule
// guards the view-count increment.
type HistoryEntry struct {
	ID          int64     `db:"id_historique" json:"id_historique"`
	UserID      string    `db:"id_utilisateur" json:"id_utilisateur"`
	CourseID    int64     `db:"id_cours" json:"id_cours"`
	ConsultedAt time.Time `db:"date_consultation" json:"date_consultation"`
}

// HistoryCourse is a consulted course with its consultation date, as listed
// on the profile history page.
type HistoryCourse struct {
	Course
	ConsultedAt time.Time `db:"date_consultation" json:"date_consultation"`
}
