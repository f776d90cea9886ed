package dto

import (
	"time"

	"github.com/devstorm/docstorm-api/internal/models"
)

// CourseSearchRequest captures the /api/cours query parameters. Empty values
// mean the criterion is absent.
type CourseSearchRequest struct {
	Search       string `form:"search"`
	Domain       string `form:"domaine"`
	ResourceType string `form:"type_ressource"`
	Level        string `form:"niveau"`
}

// DetailCourse is the nested course of the detail payload. The detail route
// keys the identifier "id" where the list endpoints use "id_cours".
type DetailCourse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nom"`
	ResourceType string    `json:"type_ressource"`
	Domain       string    `json:"domaine"`
	Language     string    `json:"langue"`
	Level        string    `json:"niveau"`
	Objective    string    `json:"objectifs"`
	Duration     *int      `json:"duree,omitempty"`
	SourcePath   string    `json:"chemin_source"`
	ViewCount    int       `json:"nombre_vues"`
	AddedAt      time.Time `json:"date_ajout"`
}

// NewDetailCourse maps a course record onto the detail wire shape.
func NewDetailCourse(c models.Course) DetailCourse {
	return DetailCourse{
		ID:           c.ID,
		Name:         c.Name,
		ResourceType: c.ResourceType,
		Domain:       c.Domain,
		Language:     c.Language,
		Level:        c.Level,
		Objective:    c.Objective,
		Duration:     c.Duration,
		SourcePath:   c.SourcePath,
		ViewCount:    c.ViewCount,
		AddedAt:      c.AddedAt,
	}
}

// CourseDetailResponse is the /api/cours/details/:id payload.
type CourseDetailResponse struct {
	Course     DetailCourse              `json:"cours"`
	Reviews    []models.ReviewWithAuthor `json:"avis"`
	IsFavorite bool                      `json:"est_favori"`
	Admin      bool                      `json:"admin"`
}

// ReviewRequest carries a note and optional comment for a course.
type ReviewRequest struct {
	Note    int    `json:"note" validate:"required,min=1,max=5"`
	Comment string `json:"commentaire"`
}

// FavoriteToggleResponse mirrors the original toggle body: 201 with
// favori=true on add, 200 with favori=false on remove.
type FavoriteToggleResponse struct {
	Message  string `json:"message"`
	Favorite bool   `json:"favori"`
}

// CreateCourseRequest carries the multipart metadata for an admin course
// upload. The document itself travels as the "fichier" form file.
type CreateCourseRequest struct {
	Name         string `form:"nom" validate:"required"`
	ResourceType string `form:"type_ressource" validate:"required"`
	Domain       string `form:"domaine" validate:"required"`
	Language     string `form:"langue" validate:"required"`
	Level        string `form:"niveau" validate:"required"`
	Objective    string `form:"objectifs" validate:"required"`
	Duration     *int   `form:"duree"`
}

// UpdateCourseRequest carries the metadata for an admin course update. All
// fields optional; a new file replaces the stored document.
type UpdateCourseRequest struct {
	Name         string `form:"nom"`
	ResourceType string `form:"type_ressource"`
	Domain       string `form:"domaine"`
	Language     string `form:"langue"`
	Level        string `form:"niveau"`
	Objective    string `form:"objectifs"`
	Duration     *int   `form:"duree"`
}
