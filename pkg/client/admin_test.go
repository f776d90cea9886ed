package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseSendsMultipart(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Introduction à Go", r.FormValue("nom"))
		assert.Equal(t, "Informatique", r.FormValue("domaine"))
		assert.Equal(t, "Tutoriel", r.FormValue("type_ressource"))

		file, header, err := r.FormFile("fichier")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cours-go.pdf", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-fake", string(content))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id_cours":42,"nom":"Introduction à Go"}`))
	}))

	form := CourseForm{
		Name:         "Introduction à Go",
		ResourceType: "Tutoriel",
		Domain:       "Informatique",
		Language:     "Français",
		Level:        "Débutant",
		Objective:    "Apprentissage",
	}
	doc := Document{Filename: "cours-go.pdf", Reader: strings.NewReader("%PDF-fake")}

	course, err := c.CreateCourse(context.Background(), form, doc)
	require.NoError(t, err)
	assert.Equal(t, int64(42), course.ID)
}

func TestUpdateCourseWithoutDocumentKeepsFile(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Nouveau nom", r.FormValue("nom"))

		_, _, err := r.FormFile("fichier")
		assert.Error(t, err, "no file part when the document is unchanged")

		_, _ = w.Write([]byte(`{"id_cours":7,"nom":"Nouveau nom"}`))
	}))

	course, err := c.UpdateCourse(context.Background(), 7, CourseForm{Name: "Nouveau nom"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Nouveau nom", course.Name)
}

func TestAdminListCoursesPagination(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		_, _ = w.Write([]byte(`{
			"cours":[{"id_cours":11,"nom":"Chimie organique"}],
			"pagination":{"page":2,"page_size":10,"total_count":11}
		}`))
	}))

	list, err := c.AdminListCourses(context.Background(), Filters{}, 2, 10)
	require.NoError(t, err)
	require.Len(t, list.Courses, 1)
	assert.Equal(t, 11, list.Pagination.TotalCount)
}
