package dto

// StatsOverview is the /api/admin/stats payload.
type StatsOverview struct {
	TotalUsers     int `json:"total_users"`
	TotalCourses   int `json:"total_courses"`
	TotalFavorites int `json:"total_favorites"`
	TotalReviews   int `json:"total_reviews"`
	TotalViews     int `json:"total_views"`
}

// TopCourse is one row of /api/admin/top-courses.
type TopCourse struct {
	CourseID  int64   `db:"id_cours" json:"id_cours"`
	Name      string  `db:"nom" json:"nom"`
	Domain    string  `db:"domaine" json:"domaine"`
	ViewCount int     `db:"nombre_vues" json:"nombre_vues"`
	Favorites int     `db:"favoris" json:"favoris"`
	AvgNote   float64 `db:"note_moyenne" json:"note_moyenne"`
}

// ActivityPoint is one day of activity for the admin charts.
type ActivityPoint struct {
	Day   string `db:"jour" json:"jour"`
	Count int    `db:"total" json:"total"`
}

// ProgressionResponse is one row of /api/progression.
type ProgressionResponse struct {
	CourseID int64  `json:"id_cours"`
	Name     string `json:"nom"`
	Percent  int    `json:"pourcentage"`
}

// UpdateProgressionRequest sets the completion percentage for a course.
type UpdateProgressionRequest struct {
	Percent int `json:"pourcentage" validate:"min=0,max=100"`
}
