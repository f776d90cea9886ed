package browse

import (
	"context"
	"sync"

	"github.com/devstorm/docstorm-api/pkg/client"
)

// FavoriteToggler is the slice of the API client the list needs.
type FavoriteToggler interface {
	ToggleFavorite(ctx context.Context, courseID int64) (*client.FavoriteState, error)
}

// CourseList holds courses with their favorite flags and applies favorite
// toggles optimistically: the flag flips locally before the request is sent
// and is NOT rolled back if the request fails. A failure only reaches the
// error callback; the next full fetch reconciles the state. Toggling twice
// lands back on the original state either way.
type CourseList struct {
	api     FavoriteToggler
	onError func(error)

	mu      sync.Mutex
	courses []client.Course
}

// NewCourseList constructs a CourseList. onError may be nil.
func NewCourseList(api FavoriteToggler, onError func(error)) *CourseList {
	if onError == nil {
		onError = func(error) {}
	}
	return &CourseList{api: api, onError: onError}
}

// SetCourses replaces the list content, keeping existing favorite flags for
// courses that are still present.
func (l *CourseList) SetCourses(courses []client.Course) {
	l.mu.Lock()
	defer l.mu.Unlock()

	previous := make(map[int64]bool, len(l.courses))
	for _, course := range l.courses {
		if course.EstFavori {
			previous[course.ID] = true
		}
	}
	next := make([]client.Course, len(courses))
	copy(next, courses)
	for i := range next {
		if previous[next[i].ID] {
			next[i].EstFavori = true
		}
	}
	l.courses = next
}

// MarkFavorites sets the favorite flag from the dashboard's favorites list.
func (l *CourseList) MarkFavorites(favorites []client.Course) {
	favIDs := make(map[int64]struct{}, len(favorites))
	for _, course := range favorites {
		favIDs[course.ID] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.courses {
		_, fav := favIDs[l.courses[i].ID]
		l.courses[i].EstFavori = fav
	}
}

// Courses returns a copy of the list.
func (l *CourseList) Courses() []client.Course {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]client.Course, len(l.courses))
	copy(out, l.courses)
	return out
}

// IsFavorite reports the local flag for a course.
func (l *CourseList) IsFavorite(courseID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, course := range l.courses {
		if course.ID == courseID {
			return course.EstFavori
		}
	}
	return false
}

// Toggle flips the favorite flag locally, then posts the change. The flag is
// never reverted here, even when the request fails.
func (l *CourseList) Toggle(ctx context.Context, courseID int64) {
	l.mu.Lock()
	found := false
	for i := range l.courses {
		if l.courses[i].ID == courseID {
			l.courses[i].EstFavori = !l.courses[i].EstFavori
			found = true
			break
		}
	}
	l.mu.Unlock()
	if !found {
		return
	}

	if _, err := l.api.ToggleFavorite(ctx, courseID); err != nil {
		l.onError(err)
	}
}
