package client

import (
	"context"
	"fmt"
)

// Progressions lists every recorded completion percentage with the course
// names.
func (c *Client) Progressions(ctx context.Context) ([]Progression, error) {
	var out []Progression
	if err := c.get(ctx, "/api/progression", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Progression{}
	}
	return out, nil
}

// GetProgression fetches the completion percentage of one course; zero when
// none was recorded.
func (c *Client) GetProgression(ctx context.Context, courseID int64) (*Progression, error) {
	var out Progression
	if err := c.get(ctx, fmt.Sprintf("/api/progression/%d", courseID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetProgression stores the completion percentage of a course.
func (c *Client) SetProgression(ctx context.Context, courseID int64, percent int) (*Progression, error) {
	payload := map[string]int{"pourcentage": percent}
	var out Progression
	if err := c.postJSON(ctx, "POST", fmt.Sprintf("/api/progression/%d", courseID), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
