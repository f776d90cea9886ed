package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
	"github.com/devstorm/docstorm-api/pkg/jobs"
)

type mockCourseRepo struct {
	courses        map[int64]*models.Course
	searchResult   []models.Course
	searchCalls    []models.CourseFilter
	recommendation []models.ScoredCourse
	recommendCalls int
	created        *models.Course
	updated        *models.Course
	deleted        []int64
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[int64]*models.Course)}
}

func (m *mockCourseRepo) Search(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	m.searchCalls = append(m.searchCalls, filter)
	return m.searchResult, len(m.searchResult), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *course
	return &copied, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = int64(len(m.courses) + 1)
	m.courses[course.ID] = course
	m.created = course
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = course
	m.updated = course
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id int64) error {
	delete(m.courses, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCourseRepo) Recommend(ctx context.Context, userID string, profile *models.UserProfile, limit int) ([]models.ScoredCourse, error) {
	m.recommendCalls++
	return m.recommendation, nil
}

type mockReviewRepo struct {
	reviews []models.Review
	listed  []models.ReviewWithAuthor
}

func (m *mockReviewRepo) Upsert(ctx context.Context, review *models.Review) error {
	review.ID = int64(len(m.reviews) + 1)
	m.reviews = append(m.reviews, *review)
	return nil
}

func (m *mockReviewRepo) ListByCourse(ctx context.Context, courseID int64) ([]models.ReviewWithAuthor, error) {
	return m.listed, nil
}

type mockFavoriteReader struct {
	favorite bool
}

func (m *mockFavoriteReader) Exists(ctx context.Context, userID string, courseID int64) (bool, error) {
	return m.favorite, nil
}

type mockProfileReader struct {
	profile *models.UserProfile
}

func (m *mockProfileReader) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if m.profile == nil {
		return nil, sql.ErrNoRows
	}
	return m.profile, nil
}

type mockDocumentStore struct {
	saved   []string
	deleted []string
	content map[string]string
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{content: make(map[string]string)}
}

func (m *mockDocumentStore) SaveStream(filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.saved = append(m.saved, filename)
	m.content[filename] = string(data)
	return filename, nil
}

func (m *mockDocumentStore) Delete(filename string) error {
	m.deleted = append(m.deleted, filename)
	delete(m.content, filename)
	return nil
}

type mockViewQueue struct {
	jobs []jobs.Job
}

func (m *mockViewQueue) Enqueue(job jobs.Job) error {
	m.jobs = append(m.jobs, job)
	return nil
}

type courseServiceFixture struct {
	svc       *CourseService
	courses   *mockCourseRepo
	reviews   *mockReviewRepo
	favorites *mockFavoriteReader
	profiles  *mockProfileReader
	store     *mockDocumentStore
	queue     *mockViewQueue
}

func newCourseFixture() *courseServiceFixture {
	f := &courseServiceFixture{
		courses:   newMockCourseRepo(),
		reviews:   &mockReviewRepo{},
		favorites: &mockFavoriteReader{},
		profiles:  &mockProfileReader{},
		store:     newMockDocumentStore(),
		queue:     &mockViewQueue{},
	}
	f.svc = NewCourseService(f.courses, f.reviews, f.favorites, f.profiles, f.store, f.queue,
		NewValidator(), zap.NewNop(), CourseConfig{})
	return f
}

func TestCourseBrowseEmptyFiltersUsesRecommendations(t *testing.T) {
	f := newCourseFixture()
	f.profiles.profile = &models.UserProfile{UserID: "R000000001", Domain: models.DomainComputerScience, Objective: models.ObjectiveLearning}
	f.courses.recommendation = []models.ScoredCourse{
		{Course: models.Course{ID: 1, Name: "Introduction à Go"}, Score: 42},
	}

	courses, err := f.svc.Browse(context.Background(), "R000000001", dto.CourseSearchRequest{})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Introduction à Go", courses[0].Name)
	assert.Equal(t, 1, f.courses.recommendCalls)
	assert.Empty(t, f.courses.searchCalls, "no plain search when recommendations apply")
}

func TestCourseBrowseNoProfileFallsBackToCatalog(t *testing.T) {
	f := newCourseFixture()
	f.courses.searchResult = []models.Course{{ID: 2, Name: "Algèbre"}}

	courses, err := f.svc.Browse(context.Background(), "R000000002", dto.CourseSearchRequest{})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, 0, f.courses.recommendCalls)
	require.Len(t, f.courses.searchCalls, 1)
	assert.True(t, f.courses.searchCalls[0].IsEmpty())
}

func TestCourseBrowseWithFiltersSearches(t *testing.T) {
	f := newCourseFixture()
	f.courses.searchResult = []models.Course{{ID: 3, Name: "Python avancé"}}

	_, err := f.svc.Browse(context.Background(), "R000000001", dto.CourseSearchRequest{
		Search: "  python  ",
		Domain: models.DomainComputerScience,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.courses.recommendCalls)
	require.Len(t, f.courses.searchCalls, 1)
	assert.Equal(t, "python", f.courses.searchCalls[0].Search, "search terms are trimmed")
	assert.Equal(t, models.DomainComputerScience, f.courses.searchCalls[0].Domain)
}

func TestCourseDetailEnqueuesViewJob(t *testing.T) {
	f := newCourseFixture()
	f.courses.courses[5] = &models.Course{ID: 5, Name: "Chimie organique"}
	f.favorites.favorite = true

	detail, err := f.svc.Detail(context.Background(), "R000000001", false, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), detail.Course.ID)
	assert.Equal(t, "Chimie organique", detail.Course.Name)
	assert.True(t, detail.IsFavorite)

	encoded, err := json.Marshal(detail.Course)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"id":5`, "the nested course keys its identifier as id")
	assert.NotContains(t, string(encoded), `"id_cours"`)

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, JobCourseViewed, f.queue.jobs[0].Type)
	payload, ok := f.queue.jobs[0].Payload.(CourseViewJob)
	require.True(t, ok)
	assert.Equal(t, int64(5), payload.CourseID)
	assert.Equal(t, "R000000001", payload.UserID)
}

func TestCourseDetailNotFound(t *testing.T) {
	f := newCourseFixture()

	_, err := f.svc.Detail(context.Background(), "R000000001", false, 99)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "cours introuvable", appErr.Message)
	assert.Empty(t, f.queue.jobs, "no consultation recorded for a missing course")
}

func TestSubmitReviewRejectsOutOfRangeNote(t *testing.T) {
	f := newCourseFixture()
	f.courses.courses[1] = &models.Course{ID: 1}

	for _, note := range []int{0, 6, -1} {
		_, err := f.svc.SubmitReview(context.Background(), "R000000001", 1, dto.ReviewRequest{Note: note})
		require.Error(t, err, "note %d must be rejected", note)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
		assert.Equal(t, "la note doit être comprise entre 1 et 5", appErr.Fields["note"])
	}
	assert.Empty(t, f.reviews.reviews)
}

func TestSubmitReviewUpserts(t *testing.T) {
	f := newCourseFixture()
	f.courses.courses[1] = &models.Course{ID: 1}

	review, err := f.svc.SubmitReview(context.Background(), "R000000001", 1, dto.ReviewRequest{Note: 4, Comment: "  très clair  "})
	require.NoError(t, err)
	assert.Equal(t, 4, review.Note)
	assert.Equal(t, "très clair", review.Comment)
	require.Len(t, f.reviews.reviews, 1)
}

func TestCreateCourseStoresDocument(t *testing.T) {
	f := newCourseFixture()

	course, err := f.svc.CreateCourse(context.Background(), dto.CreateCourseRequest{
		Name:         "Introduction à Go",
		ResourceType: models.ResourceTutorial,
		Domain:       models.DomainComputerScience,
		Language:     models.LanguageFrench,
		Level:        models.LevelBeginner,
		Objective:    models.ObjectiveLearning,
	}, &CourseUpload{Filename: "support.pdf", Size: 1024, Reader: strings.NewReader("%PDF-fake")})
	require.NoError(t, err)

	require.Len(t, f.store.saved, 1)
	assert.True(t, strings.HasPrefix(f.store.saved[0], "cours/Informatique/Français/Débutant/Tutoriel/"))
	assert.True(t, strings.HasSuffix(f.store.saved[0], ".pdf"))
	assert.Equal(t, f.store.saved[0], course.SourcePath)
	assert.NotZero(t, course.ID)
}

func TestCreateCourseRejectsBadExtension(t *testing.T) {
	f := newCourseFixture()

	_, err := f.svc.CreateCourse(context.Background(), dto.CreateCourseRequest{
		Name:         "Script",
		ResourceType: models.ResourceTutorial,
		Domain:       models.DomainComputerScience,
		Language:     models.LanguageFrench,
		Level:        models.LevelBeginner,
		Objective:    models.ObjectiveLearning,
	}, &CourseUpload{Filename: "malware.exe", Size: 10, Reader: strings.NewReader("MZ")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFileNotAllowed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.store.saved)
}

func TestCreateCourseRejectsOversizedFile(t *testing.T) {
	f := newCourseFixture()

	_, err := f.svc.CreateCourse(context.Background(), dto.CreateCourseRequest{
		Name:         "Gros fichier",
		ResourceType: models.ResourceTutorial,
		Domain:       models.DomainComputerScience,
		Language:     models.LanguageFrench,
		Level:        models.LevelBeginner,
		Objective:    models.ObjectiveLearning,
	}, &CourseUpload{Filename: "support.pdf", Size: 17 << 20, Reader: strings.NewReader("x")})
	require.Error(t, err)
	assert.Equal(t, "fichier trop volumineux (16 Mo maximum)", appErrors.FromError(err).Message)
}

func TestCreateCourseRequiresFile(t *testing.T) {
	f := newCourseFixture()

	_, err := f.svc.CreateCourse(context.Background(), dto.CreateCourseRequest{
		Name:         "Sans document",
		ResourceType: models.ResourceTutorial,
		Domain:       models.DomainComputerScience,
		Language:     models.LanguageFrench,
		Level:        models.LevelBeginner,
		Objective:    models.ObjectiveLearning,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFileRequired.Code, appErrors.FromError(err).Code)
}

func TestCreateCourseRejectsUnknownTaxonomy(t *testing.T) {
	f := newCourseFixture()

	_, err := f.svc.CreateCourse(context.Background(), dto.CreateCourseRequest{
		Name:         "Astrologie appliquée",
		ResourceType: models.ResourceTutorial,
		Domain:       "Astrologie",
		Language:     models.LanguageFrench,
		Level:        models.LevelBeginner,
		Objective:    models.ObjectiveLearning,
	}, &CourseUpload{Filename: "support.pdf", Size: 10, Reader: strings.NewReader("x")})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "domaine")
}

func TestUpdateCourseReplacesDocument(t *testing.T) {
	f := newCourseFixture()
	f.courses.courses[4] = &models.Course{
		ID:           4,
		Name:         "Ancien nom",
		ResourceType: models.ResourceCourse,
		Domain:       models.DomainMathematics,
		Language:     models.LanguageFrench,
		Level:        models.LevelAdvanced,
		Objective:    models.ObjectiveRevision,
		SourcePath:   "cours/ancien.pdf",
	}

	course, err := f.svc.UpdateCourse(context.Background(), 4, dto.UpdateCourseRequest{Name: "Nouveau nom"},
		&CourseUpload{Filename: "nouveau.pdf", Size: 10, Reader: strings.NewReader("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "Nouveau nom", course.Name)
	assert.NotEqual(t, "cours/ancien.pdf", course.SourcePath)
	assert.Contains(t, f.store.deleted, "cours/ancien.pdf", "the replaced document is removed")
}

func TestUpdateCourseKeepsDocumentWithoutUpload(t *testing.T) {
	f := newCourseFixture()
	f.courses.courses[4] = &models.Course{
		ID:           4,
		Name:         "Ancien nom",
		ResourceType: models.ResourceCourse,
		Domain:       models.DomainMathematics,
		Language:     models.LanguageFrench,
		Level:        models.LevelAdvanced,
		Objective:    models.ObjectiveRevision,
		SourcePath:   "cours/ancien.pdf",
	}

	course, err := f.svc.UpdateCourse(context.Background(), 4, dto.UpdateCourseRequest{Name: "Nouveau nom"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "cours/ancien.pdf", course.SourcePath)
	assert.Empty(t, f.store.deleted)
}

func TestDeleteCourseRemovesDocument(t *testing.T) {
	f := newCourseFixture()
	f.courses.courses[9] = &models.Course{ID: 9, SourcePath: "cours/doc.pdf"}

	require.NoError(t, f.svc.DeleteCourse(context.Background(), 9))
	assert.Equal(t, []int64{9}, f.courses.deleted)
	assert.Equal(t, []string{"cours/doc.pdf"}, f.store.deleted)
}
