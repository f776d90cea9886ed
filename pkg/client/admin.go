package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// CourseForm is the metadata of an admin course create/update.
type CourseForm struct {
	Name         string
	ResourceType string
	Domain       string
	Language     string
	Level        string
	Objective    string
	Duration     *int
}

// Document is an uploaded course file.
type Document struct {
	Filename string
	Reader   io.Reader
}

// AdminCourseList is the paginated admin catalog payload.
type AdminCourseList struct {
	Courses    []Course `json:"cours"`
	Pagination struct {
		Page       int `json:"page"`
		PageSize   int `json:"page_size"`
		TotalCount int `json:"total_count"`
	} `json:"pagination"`
}

// AdminUser is one row of the admin user table.
type AdminUser struct {
	ID           string `json:"id"`
	LastName     string `json:"nom"`
	FirstName    string `json:"prenom"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RegisteredAt string `json:"date_inscription"`
}

// AdminUserList is the paginated admin user payload.
type AdminUserList struct {
	Users      []AdminUser `json:"utilisateurs"`
	Pagination struct {
		Page       int `json:"page"`
		PageSize   int `json:"page_size"`
		TotalCount int `json:"total_count"`
	} `json:"pagination"`
}

// StatsOverview is the admin counters payload.
type StatsOverview struct {
	TotalUsers     int `json:"total_users"`
	TotalCourses   int `json:"total_courses"`
	TotalFavorites int `json:"total_favorites"`
	TotalReviews   int `json:"total_reviews"`
	TotalViews     int `json:"total_views"`
}

// TopCourse is one row of the admin top-courses table.
type TopCourse struct {
	CourseID  int64   `json:"id_cours"`
	Name      string  `json:"nom"`
	Domain    string  `json:"domaine"`
	ViewCount int     `json:"nombre_vues"`
	Favorites int     `json:"favoris"`
	AvgNote   float64 `json:"note_moyenne"`
}

// ActivityPoint is one day of an admin activity chart.
type ActivityPoint struct {
	Day   string `json:"jour"`
	Count int    `json:"total"`
}

// AdminListCourses fetches the paginated admin catalog.
func (c *Client) AdminListCourses(ctx context.Context, filters Filters, page, pageSize int) (*AdminCourseList, error) {
	query := filters.Values()
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	var out AdminCourseList
	if err := c.get(ctx, "/api/admin/cours", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCourse uploads a new course with its document. The request runs on
// the long-timeout client.
func (c *Client) CreateCourse(ctx context.Context, form CourseForm, doc Document) (*Course, error) {
	body, contentType, err := encodeCourseForm(form, &doc)
	if err != nil {
		return nil, err
	}
	var out Course
	if err := c.upload(ctx, "/api/admin/cours/ajouter", contentType, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCourse applies metadata changes; doc may be nil to keep the stored
// document.
func (c *Client) UpdateCourse(ctx context.Context, courseID int64, form CourseForm, doc *Document) (*Course, error) {
	body, contentType, err := encodeCourseForm(form, doc)
	if err != nil {
		return nil, err
	}
	var out Course
	if err := c.upload(ctx, fmt.Sprintf("/api/admin/cours/update/%d", courseID), contentType, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCourse removes a course and its stored document.
func (c *Client) DeleteCourse(ctx context.Context, courseID int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/admin/cours/delete/%d", courseID), nil)
}

// AdminListUsers fetches the paginated user table.
func (c *Client) AdminListUsers(ctx context.Context, search string, page, pageSize int) (*AdminUserList, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	var out AdminUserList
	if err := c.get(ctx, "/api/admin/users", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetUserRole promotes or demotes an account.
func (c *Client) SetUserRole(ctx context.Context, userID string, admin bool) error {
	return c.postJSON(ctx, "PUT", "/api/admin/users/"+userID+"/role", map[string]bool{"admin": admin}, nil)
}

// DeleteUser removes another account.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.delete(ctx, "/api/admin/users/"+userID, nil)
}

// Stats fetches the admin counters.
func (c *Client) Stats(ctx context.Context) (*StatsOverview, error) {
	var out StatsOverview
	if err := c.get(ctx, "/api/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TopCourses fetches the most consulted courses.
func (c *Client) TopCourses(ctx context.Context, limit int) ([]TopCourse, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out []TopCourse
	if err := c.get(ctx, "/api/admin/top-courses", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CoursesActivity fetches consultations per day.
func (c *Client) CoursesActivity(ctx context.Context, days int) ([]ActivityPoint, error) {
	query := url.Values{}
	if days > 0 {
		query.Set("days", strconv.Itoa(days))
	}
	var out []ActivityPoint
	if err := c.get(ctx, "/api/admin/courses-activity", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UsersActivity fetches registrations per day.
func (c *Client) UsersActivity(ctx context.Context, days int) ([]ActivityPoint, error) {
	query := url.Values{}
	if days > 0 {
		query.Set("days", strconv.Itoa(days))
	}
	var out []ActivityPoint
	if err := c.get(ctx, "/api/admin/users-activity", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportStats downloads the statistics export in the given format.
func (c *Client) ExportStats(ctx context.Context, format string) ([]byte, error) {
	query := url.Values{}
	if format != "" {
		query.Set("format", format)
	}
	u := c.baseURL + "/api/admin/stats/export?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET /api/admin/stats/export: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

func encodeCourseForm(form CourseForm, doc *Document) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := map[string]string{
		"nom":            form.Name,
		"type_ressource": form.ResourceType,
		"domaine":        form.Domain,
		"langue":         form.Language,
		"niveau":         form.Level,
		"objectifs":      form.Objective,
	}
	if form.Duration != nil {
		fields["duree"] = strconv.Itoa(*form.Duration)
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("encode form field %s: %w", name, err)
		}
	}

	if doc != nil && doc.Reader != nil {
		part, err := w.CreateFormFile("fichier", doc.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("encode form file: %w", err)
		}
		if _, err := io.Copy(part, doc.Reader); err != nil {
			return nil, "", fmt.Errorf("copy form file: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
