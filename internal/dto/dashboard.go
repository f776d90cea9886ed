package dto

import "github.com/devstorm/docstorm-api/internal/models"

// DashboardResponse is the /api/dashboard payload: the admin flag plus the
// user's favorite courses, used to mark cards on first paint.
type DashboardResponse struct {
	Admin     bool            `json:"admin"`
	Favorites []models.Course `json:"favoris"`
}
