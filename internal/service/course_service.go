package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/models"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
	"github.com/devstorm/docstorm-api/pkg/jobs"
)

// JobCourseViewed is enqueued after a detail fetch; the worker records the
// consultation and bumps the view counter off the request path.
const JobCourseViewed = "course.viewed"

// CourseViewJob is the payload of a JobCourseViewed job.
type CourseViewJob struct {
	UserID   string
	CourseID int64
	At       time.Time
}

type courseRepository interface {
	Search(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
	Recommend(ctx context.Context, userID string, profile *models.UserProfile, limit int) ([]models.ScoredCourse, error)
}

type courseReviewRepository interface {
	Upsert(ctx context.Context, review *models.Review) error
	ListByCourse(ctx context.Context, courseID int64) ([]models.ReviewWithAuthor, error)
}

type courseFavoriteReader interface {
	Exists(ctx context.Context, userID string, courseID int64) (bool, error)
}

type profileReader interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

type documentStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

type viewQueue interface {
	Enqueue(job jobs.Job) error
}

// CourseUpload wraps the multipart document of an admin create/update.
type CourseUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// CourseConfig bounds uploaded documents.
type CourseConfig struct {
	MaxFileSizeBytes  int64
	AllowedExtensions []string
	RecommendLimit    int
}

// CourseService provides the course catalog use cases: search, personalized
// recommendations, detail composition, reviews and the admin CRUD.
type CourseService struct {
	courses   courseRepository
	reviews   courseReviewRepository
	favorites courseFavoriteReader
	profiles  profileReader
	store     documentStore
	queue     viewQueue
	validator *validator.Validate
	logger    *zap.Logger
	config    CourseConfig
}

// NewCourseService constructs a CourseService.
func NewCourseService(
	courses courseRepository,
	reviews courseReviewRepository,
	favorites courseFavoriteReader,
	profiles profileReader,
	store documentStore,
	queue viewQueue,
	validate *validator.Validate,
	logger *zap.Logger,
	config CourseConfig,
) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if config.MaxFileSizeBytes <= 0 {
		config.MaxFileSizeBytes = 16 << 20
	}
	if len(config.AllowedExtensions) == 0 {
		config.AllowedExtensions = []string{"pdf", "docx", "pptx", "txt"}
	}
	if config.RecommendLimit <= 0 {
		config.RecommendLimit = 30
	}
	return &CourseService{
		courses:   courses,
		reviews:   reviews,
		favorites: favorites,
		profiles:  profiles,
		store:     store,
		queue:     queue,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// Browse serves GET /api/cours. A request without any criterion returns the
// personalized recommendation feed; otherwise it is a filtered search.
func (s *CourseService) Browse(ctx context.Context, userID string, req dto.CourseSearchRequest) ([]models.Course, error) {
	filter := models.CourseFilter{
		Search:       strings.TrimSpace(req.Search),
		Domain:       req.Domain,
		ResourceType: req.ResourceType,
		Level:        req.Level,
	}

	if filter.IsEmpty() {
		return s.recommended(ctx, userID)
	}

	courses, _, err := s.courses.Search(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search courses")
	}
	return courses, nil
}

func (s *CourseService) recommended(ctx context.Context, userID string) ([]models.Course, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
		}
		// No profile row: fall back to the plain catalog.
		courses, _, serr := s.courses.Search(ctx, models.CourseFilter{})
		if serr != nil {
			return nil, appErrors.Wrap(serr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
		}
		return courses, nil
	}

	scored, err := s.courses.Recommend(ctx, userID, profile, s.config.RecommendLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute recommendations")
	}
	courses := make([]models.Course, 0, len(scored))
	for _, sc := range scored {
		courses = append(courses, sc.Course)
	}
	return courses, nil
}

// Detail composes the course page payload and schedules the consultation
// recording in the background.
func (s *CourseService) Detail(ctx context.Context, userID string, isAdmin bool, courseID int64) (*dto.CourseDetailResponse, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cours introuvable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	reviews, err := s.reviews.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch reviews")
	}

	isFavorite, err := s.favorites.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check favorite")
	}

	if s.queue != nil {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobCourseViewed,
			Payload: CourseViewJob{UserID: userID, CourseID: courseID, At: time.Now().UTC()},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue view recording", zap.Error(err), zap.Int64("course_id", courseID))
		}
	}

	return &dto.CourseDetailResponse{
		Course:     dto.NewDetailCourse(*course),
		Reviews:    reviews,
		IsFavorite: isFavorite,
		Admin:      isAdmin,
	}, nil
}

// SubmitReview upserts the user's note and comment on a course. Notes are
// restricted to 1..5 before anything touches the database.
func (s *CourseService) SubmitReview(ctx context.Context, userID string, courseID int64, req dto.ReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(map[string]string{"note": "la note doit être comprise entre 1 et 5"})
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cours introuvable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	review := &models.Review{
		UserID:   userID,
		CourseID: courseID,
		Note:     req.Note,
		Comment:  strings.TrimSpace(req.Comment),
	}
	if err := s.reviews.Upsert(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save review")
	}
	return review, nil
}

// ListAdmin returns the paginated catalog for the admin table.
func (s *CourseService) ListAdmin(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.courses.Search(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// CreateCourse validates metadata, stores the uploaded document and inserts
// the course. The document lands under
// cours/<domaine>/<langue>/<niveau>/<type>/ with a generated name.
func (s *CourseService) CreateCourse(ctx context.Context, req dto.CreateCourseRequest, upload *CourseUpload) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(fieldErrors(err))
	}
	if err := s.validateTaxonomy(req.Domain, req.ResourceType, req.Level, req.Language, req.Objective); err != nil {
		return nil, err
	}
	if upload == nil {
		return nil, appErrors.ErrFileRequired
	}
	ext, err := s.checkUpload(upload)
	if err != nil {
		return nil, err
	}

	relPath := path.Join("cours", req.Domain, req.Language, req.Level, req.ResourceType,
		fmt.Sprintf("%s.%s", uuid.NewString(), ext))
	if _, err := s.store.SaveStream(relPath, upload.Reader); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}

	course := &models.Course{
		Name:         req.Name,
		ResourceType: req.ResourceType,
		Domain:       req.Domain,
		Language:     req.Language,
		Level:        req.Level,
		Objective:    req.Objective,
		Duration:     req.Duration,
		SourcePath:   relPath,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		if derr := s.store.Delete(relPath); derr != nil {
			s.logger.Warn("failed to remove orphan document", zap.Error(derr), zap.String("path", relPath))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.logger.Info("course created", zap.Int64("course_id", course.ID), zap.String("path", relPath))
	return course, nil
}

// UpdateCourse applies partial metadata changes and optionally replaces the
// stored document.
func (s *CourseService) UpdateCourse(ctx context.Context, courseID int64, req dto.UpdateCourseRequest, upload *CourseUpload) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cours introuvable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	if req.Name != "" {
		course.Name = req.Name
	}
	if req.ResourceType != "" {
		course.ResourceType = req.ResourceType
	}
	if req.Domain != "" {
		course.Domain = req.Domain
	}
	if req.Language != "" {
		course.Language = req.Language
	}
	if req.Level != "" {
		course.Level = req.Level
	}
	if req.Objective != "" {
		course.Objective = req.Objective
	}
	if req.Duration != nil {
		course.Duration = req.Duration
	}
	if err := s.validateTaxonomy(course.Domain, course.ResourceType, course.Level, course.Language, course.Objective); err != nil {
		return nil, err
	}

	oldPath := ""
	if upload != nil {
		ext, err := s.checkUpload(upload)
		if err != nil {
			return nil, err
		}
		relPath := path.Join("cours", course.Domain, course.Language, course.Level, course.ResourceType,
			fmt.Sprintf("%s.%s", uuid.NewString(), ext))
		if _, err := s.store.SaveStream(relPath, upload.Reader); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
		}
		oldPath = course.SourcePath
		course.SourcePath = relPath
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	if oldPath != "" {
		if err := s.store.Delete(oldPath); err != nil {
			s.logger.Warn("failed to remove replaced document", zap.Error(err), zap.String("path", oldPath))
		}
	}
	return course, nil
}

// DeleteCourse removes the course row and its stored document.
func (s *CourseService) DeleteCourse(ctx context.Context, courseID int64) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "cours introuvable")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}
	if err := s.courses.Delete(ctx, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	if course.SourcePath != "" {
		if err := s.store.Delete(course.SourcePath); err != nil {
			s.logger.Warn("failed to remove document", zap.Error(err), zap.String("path", course.SourcePath))
		}
	}
	s.logger.Info("course deleted", zap.Int64("course_id", courseID))
	return nil
}

func (s *CourseService) validateTaxonomy(domain, resourceType, level, language, objective string) error {
	fields := map[string]string{}
	if !oneOf(domain, models.Domains()) {
		fields["domaine"] = "valeur invalide"
	}
	if !oneOf(resourceType, models.ResourceTypes()) {
		fields["type_ressource"] = "valeur invalide"
	}
	if !oneOf(level, models.Levels()) {
		fields["niveau"] = "valeur invalide"
	}
	if !oneOf(language, models.Languages()) {
		fields["langue"] = "valeur invalide"
	}
	if !oneOf(objective, models.Objectives()) {
		fields["objectifs"] = "valeur invalide"
	}
	if len(fields) > 0 {
		return appErrors.Validation(fields)
	}
	return nil
}

func (s *CourseService) checkUpload(upload *CourseUpload) (string, error) {
	if upload.Size > s.config.MaxFileSizeBytes {
		return "", appErrors.Clone(appErrors.ErrFileNotAllowed, "fichier trop volumineux (16 Mo maximum)")
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(upload.Filename)), ".")
	if !oneOf(ext, s.config.AllowedExtensions) {
		return "", appErrors.ErrFileNotAllowed
	}
	return ext, nil
}
