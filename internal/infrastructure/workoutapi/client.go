package workoutapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mobilefit/companion/internal/domain"
)

// Config holds workouts backend configuration
type Config struct {
	BaseURL string // e.g. "https://api.example.com"
}

// Client is the REST client for the workouts backend
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new workouts API client
func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do executes a JSON request and decodes a 2xx body into dest (when dest is
// non-nil). A 404 maps to domain.ErrWorkoutNotFound; any other non-2xx
// status surfaces the response body as the failure reason.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, dest interface{}) error {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrWorkoutNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("workout api error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if dest != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// GetWorkouts fetches all workouts in backend order
func (c *Client) GetWorkouts(ctx context.Context) ([]*domain.Workout, error) {
	var workouts []*domain.Workout
	if err := c.do(ctx, http.MethodGet, "/workouts", nil, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// GetWorkoutByID fetches a single workout. Returns (nil, nil) when the
// backend has no workout for the id.
func (c *Client) GetWorkoutByID(ctx context.Context, id string) (*domain.Workout, error) {
	var workout domain.Workout
	err := c.do(ctx, http.MethodGet, "/workouts/"+url.PathEscape(id), nil, &workout)
	if err == domain.ErrWorkoutNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &workout, nil
}

// AddWorkout creates a workout; the backend assigns the id
func (c *Client) AddWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error) {
	var created domain.Workout
	if err := c.do(ctx, http.MethodPost, "/workouts", workout, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateWorkout replaces the workout with the given id
func (c *Client) UpdateWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error) {
	var updated domain.Workout
	if err := c.do(ctx, http.MethodPut, "/workouts/"+url.PathEscape(workout.ID), workout, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteWorkout removes the workout with the given id
func (c *Client) DeleteWorkout(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/workouts/"+url.PathEscape(id), nil, nil)
}

// CompleteWorkout marks the workout completed via a partial update and
// returns the updated workout.
func (c *Client) CompleteWorkout(ctx context.Context, id string, completedDate string) (*domain.Workout, error) {
	patch := map[string]interface{}{
		"completed":     true,
		"completedDate": completedDate,
	}
	var updated domain.Workout
	if err := c.do(ctx, http.MethodPatch, "/workouts/"+url.PathEscape(id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetWorkoutsForDate fetches workouts whose date equals the given day
func (c *Client) GetWorkoutsForDate(ctx context.Context, date string) ([]*domain.Workout, error) {
	var workouts []*domain.Workout
	if err := c.do(ctx, http.MethodGet, "/workouts?date="+url.QueryEscape(date), nil, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}
