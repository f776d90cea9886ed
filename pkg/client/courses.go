package client

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// SearchCourses runs a filtered search, or fetches the recommendation feed
// when no filter is set. On failure it logs and returns an empty slice: the
// dashboard renders an empty grid rather than an error page.
func (c *Client) SearchCourses(ctx context.Context, filters Filters) ([]Course, error) {
	var out []Course
	if err := c.get(ctx, "/api/cours", filters.Values(), &out); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("course search failed", zap.Error(err))
		return []Course{}, nil
	}
	if out == nil {
		out = []Course{}
	}
	return out, nil
}

// CourseDetail fetches the detail page payload. Viewing a course counts as a
// consultation on the backend.
func (c *Client) CourseDetail(ctx context.Context, courseID int64) (*CourseDetail, error) {
	var out CourseDetail
	if err := c.get(ctx, fmt.Sprintf("/api/cours/details/%d", courseID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleFavorite flips the favorite state of a course and returns the new
// state.
func (c *Client) ToggleFavorite(ctx context.Context, courseID int64) (*FavoriteState, error) {
	var out FavoriteState
	if err := c.postJSON(ctx, "POST", fmt.Sprintf("/api/profil/favoris/ajouter/%d", courseID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitReview posts a note and optional comment. The note is validated
// before any network traffic happens.
func (c *Client) SubmitReview(ctx context.Context, courseID int64, note int, comment string) error {
	if note < 1 || note > 5 {
		return &APIError{
			Status:  400,
			Code:    "VALIDATION_ERROR",
			Message: "la note doit être comprise entre 1 et 5",
		}
	}
	payload := map[string]interface{}{
		"note":        note,
		"commentaire": strings.TrimSpace(comment),
	}
	return c.postJSON(ctx, "POST", fmt.Sprintf("/api/cours/avis/%d", courseID), payload, nil)
}

// Dashboard fetches the admin flag plus the favorites used to mark cards.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if err := c.get(ctx, "/api/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
