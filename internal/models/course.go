package models

import "time"

// Enum values enforced by CHECK constraints on the cours table. The French
// labels are part of the wire contract with the front-end and must not be
// translated.
const (
	DomainComputerScience = "Informatique"
	DomainMathematics     = "Mathématiques"
	DomainPhysics         = "Physique"
	DomainChemistry       = "Chimie"
	DomainLanguages       = "Langues"

	ResourceTutorial = "Tutoriel"
	ResourceCourse   = "Cours"
	ResourceBook     = "Livre"
	ResourceExercise = "TD"

	LevelBeginner     = "Débutant"
	LevelIntermediate = "Intermédiaire"
	LevelAdvanced     = "Avancé"

	LanguageFrench  = "Français"
	LanguageEnglish = "Anglais"
	LanguageArabic  = "Arabe"

	ObjectiveRevision  = "Révision"
	ObjectiveExamPrep  = "Préparation examen"
	ObjectiveLearning  = "Apprentissage"
	ObjectiveDeepening = "Approfondissement"
)

// Domains lists the accepted values for the domaine column.
func Domains() []string {
	return []string{DomainComputerScience, DomainMathematics, DomainPhysics, DomainChemistry, DomainLanguages}
}

// ResourceTypes lists the accepted values for the type_ressource column.
func ResourceTypes() []string {
	return []string{ResourceTutorial, ResourceCourse, ResourceBook, ResourceExercise}
}

// Levels lists the accepted values for the niveau column.
func Levels() []string {
	return []string{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// Languages lists the accepted values for the langue column.
func Languages() []string {
	return []string{LanguageFrench, LanguageEnglish, LanguageArabic}
}

// Objectives lists the accepted values for the objectifs column.
func Objectives() []string {
	return []string{ObjectiveRevision, ObjectiveExamPrep, ObjectiveLearning, ObjectiveDeepening}
}

// Course represents a learning resource stored in the cours table. JSON keys
// match the payloads the front-end consumes.
type Course struct {
	ID           int64     `db:"id_cours" json:"id_cours"`
	Name         string    `db:"nom" json:"nom"`
	ResourceType string    `db:"type_ressource" json:"type_ressource"`
	Domain       string    `db:"domaine" json:"domaine"`
	Language     string    `db:"langue" json:"langue"`
	Level        string    `db:"niveau" json:"niveau"`
	Objective    string    `db:"objectifs" json:"objectifs"`
	Duration     *int      `db:"duree" json:"duree,omitempty"`
	SourcePath   string    `db:"chemin_source" json:"chemin_source"`
	ViewCount    int       `db:"nombre_vues" json:"nombre_vues"`
	AddedAt      time.Time `db:"date_ajout" json:"date_ajout"`
}

// CourseFilter captures the course search criteria. Empty fields mean "no
// constraint"; a filter with no constraints at all routes the request to the
// recommendation engine instead of a plain listing.
type CourseFilter struct {
	Search       string
	Domain       string
	ResourceType string
	Level        string
	Page         int
	PageSize     int
}

// IsEmpty reports whether no search criterion is set.
func (f CourseFilter) IsEmpty() bool {
	return f.Search == "" && f.Domain == "" && f.ResourceType == "" && f.Level == ""
}

// ScoredCourse is a course annotated with its recommendation score.
type ScoredCourse struct {
	Course
	Score float64 `db:"score" json:"-"`
}
