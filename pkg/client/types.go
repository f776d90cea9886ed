package client

import (
	"encoding/json"
	"net/url"
	"time"
)

// Course mirrors the catalog payloads. EstFavori is not sent by the search
// endpoint; list composition fills it in from the favorites.
type Course struct {
	ID           int64     `json:"id_cours"`
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
	EstFavori    bool      `json:"est_favori,omitempty"`
}

// Review is one rating on a course detail page.
type Review struct {
	ID              int64     `json:"id_avis"`
	UserID          string    `json:"id_utilisateur"`
	CourseID        int64     `json:"id_cours"`
	Note            int       `json:"note"`
	Comment         string    `json:"commentaire"`
	CreatedAt       time.Time `json:"date_avis"`
	AuthorLastName  string    `json:"nom"`
	AuthorFirstName string    `json:"prenom"`
}

// CourseDetail is the detail page payload.
type CourseDetail struct {
	Course     Course
	Reviews    []Review
	IsFavorite bool
	Admin      bool
}

// detailCourse matches the nested course of the detail payload, whose
// identifier is keyed "id" where the list endpoints use "id_cours".
type detailCourse struct {
	Course
	ID int64 `json:"id"`
}

func (d *CourseDetail) UnmarshalJSON(data []byte) error {
	var wire struct {
		Course     detailCourse `json:"cours"`
		Reviews    []Review     `json:"avis"`
		IsFavorite bool         `json:"est_favori"`
		Admin      bool         `json:"admin"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	d.Course = wire.Course.Course
	d.Course.ID = wire.Course.ID
	d.Reviews = wire.Reviews
	d.IsFavorite = wire.IsFavorite
	d.Admin = wire.Admin
	return nil
}

// HistoryCourse is a consulted course with its consultation date.
type HistoryCourse struct {
	Course
	ConsultedAt time.Time `json:"date_consultation"`
}

// AuthStatus is the session probe result.
type AuthStatus struct {
	Authenticated bool `json:"authenticated"`
	Admin         bool `json:"admin"`
}

// LoginResult is the login/registration response.
type LoginResult struct {
	Message string `json:"message"`
	Admin   bool   `json:"admin"`
}

// FavoriteState is the favorite toggle response.
type FavoriteState struct {
	Message  string `json:"message"`
	Favorite bool   `json:"favori"`
}

// Dashboard is the dashboard payload.
type Dashboard struct {
	Admin     bool     `json:"admin"`
	Favorites []Course `json:"favoris"`
}

// Profile is the account payload.
type Profile struct {
	ID        string `json:"id"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Email     string `json:"email"`
	Domain    string `json:"domaine_interet"`
	Objective string `json:"objectifs"`
	Admin     bool   `json:"admin"`
}

// Progression is a per-course completion percentage.
type Progression struct {
	CourseID int64  `json:"id_cours"`
	Name     string `json:"nom,omitempty"`
	Percent  int    `json:"pourcentage"`
}

// Filters captures the four optional search criteria. The zero value means
// "no constraint" for every field.
type Filters struct {
	Search       string
	Domain       string
	ResourceType string
	Level        string
}

// IsEmpty reports whether no criterion is set.
func (f Filters) IsEmpty() bool {
	return f.Search == "" && f.Domain == "" && f.ResourceType == "" && f.Level == ""
}

// Values encodes the filters as query parameters. Empty fields are omitted
// entirely rather than sent as empty strings.
func (f Filters) Values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Domain != "" {
		v.Set("domaine", f.Domain)
	}
	if f.ResourceType != "" {
		v.Set("type_ressource", f.ResourceType)
	}
	if f.Level != "" {
		v.Set("niveau", f.Level)
	}
	return v
}
