// Package catalog talks to the remote course catalog service. Fetches can
// fail or time out; callers fall back to the snapshot cache.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/trieu2004160/studytrack-server/internal/config"
	"github.com/trieu2004160/studytrack-server/internal/models"
)

// Client queries the catalog with a per-request timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg config.CatalogConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// coursePayload mirrors the catalog's wire format.
type coursePayload struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Icon             string `json:"icon"`
	TotalLessons     int    `json:"total_lessons"`
	CompletedLessons int    `json:"completed_lessons"`
	UpdatedAt        string `json:"updated_at"`
}

type sessionPayload struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	CourseIcon string `json:"course_icon"`
	Duration   int    `json:"duration"`
	Date       string `json:"date"` // "2006-01-02"
	Notes      string `json:"notes"`
	Completed  bool   `json:"completed"`
	UpdatedAt  string `json:"updated_at"`
}

// FetchCourses retrieves the user's course records from the catalog.
func (c *Client) FetchCourses(ctx context.Context, userID uint) ([]models.Course, error) {
	var payload struct {
		Courses []coursePayload `json:"courses"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/users/%d/courses", c.baseURL, userID), &payload); err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(payload.Courses))
	for _, p := range payload.Courses {
		courses = append(courses, models.Course{
			ID:               p.ID,
			UserID:           userID,
			Name:             p.Name,
			Icon:             p.Icon,
			TotalLessons:     p.TotalLessons,
			CompletedLessons: p.CompletedLessons,
			UpdatedAt:        parseTime(p.UpdatedAt),
		})
	}
	return courses, nil
}

// FetchSessions retrieves the user's remotely logged sessions.
func (c *Client) FetchSessions(ctx context.Context, userID uint) ([]models.Session, error) {
	var payload struct {
		Sessions []sessionPayload `json:"sessions"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/users/%d/sessions", c.baseURL, userID), &payload); err != nil {
		return nil, err
	}

	sessions := make([]models.Session, 0, len(payload.Sessions))
	for _, p := range payload.Sessions {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			// a record with an unreadable date is useless; skip it rather
			// than fail the whole refresh
			continue
		}
		sessions = append(sessions, models.Session{
			ID:         p.ID,
			UserID:     userID,
			CourseID:   p.CourseID,
			CourseName: p.CourseName,
			CourseIcon: p.CourseIcon,
			Duration:   p.Duration,
			Date:       date,
			Notes:      p.Notes,
			Completed:  p.Completed,
			UpdatedAt:  parseTime(p.UpdatedAt),
		})
	}
	return sessions, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
