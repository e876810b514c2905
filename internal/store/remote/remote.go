// Package remote implements the data access contract against the
// homeboard REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"homeboard/internal/model"
	"homeboard/internal/store"
	"homeboard/internal/wire"
)

// APIError is a non-2xx answer. Server errors also match
// store.ErrUnavailable, 404 matches store.ErrNotFound.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api status %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("api status %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case store.ErrUnavailable:
		return e.Status >= http.StatusInternalServerError && e.Status != http.StatusNotImplemented
	case store.ErrNotFound:
		return e.Status == http.StatusNotFound
	case store.ErrBulkUnsupported:
		return e.Status == http.StatusNotImplemented
	}
	return false
}

// Client is a store.Store over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for baseURL, e.g. "https://home.example.org".
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, store.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return fmt.Errorf("%s %s: %w", method, path, &APIError{Status: resp.StatusCode, Code: payload.Error})
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

type created struct {
	ID wire.Number `json:"id"`
}

func (c *Client) create(ctx context.Context, path string, row any) (uint, error) {
	var res created
	if err := c.do(ctx, http.MethodPost, path, row, &res); err != nil {
		return 0, err
	}
	if res.ID <= 0 {
		return 0, errors.New("create: server returned no id")
	}
	return uint(res.ID), nil
}

func itemPath(entity string, id uint) string {
	return "/" + entity + "/" + strconv.FormatUint(uint64(id), 10)
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var rows []wire.TaskRow
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &rows); err != nil {
		return nil, err
	}
	now := c.now()
	tasks := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.Decode(now))
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, task *model.Task) error {
	row := wire.FromTask(*task)
	row.ID = 0
	id, err := c.create(ctx, "/tasks", row)
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

func (c *Client) UpdateTask(ctx context.Context, task model.Task) error {
	return c.do(ctx, http.MethodPut, itemPath("tasks", task.ID), wire.FromTask(task), nil)
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, itemPath("tasks", id), nil, nil)
}

func (c *Client) ListCourses(ctx context.Context) ([]model.CourseItem, error) {
	var rows []wire.CourseRow
	if err := c.do(ctx, http.MethodGet, "/courses", nil, &rows); err != nil {
		return nil, err
	}
	items := make([]model.CourseItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.Decode())
	}
	return items, nil
}

func (c *Client) CreateCourse(ctx context.Context, item *model.CourseItem) error {
	row := wire.FromCourse(*item)
	row.ID = 0
	id, err := c.create(ctx, "/courses", row)
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

func (c *Client) UpdateCourse(ctx context.Context, item model.CourseItem) error {
	return c.do(ctx, http.MethodPut, itemPath("courses", item.ID), wire.FromCourse(item), nil)
}

func (c *Client) DeleteCourse(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, itemPath("courses", id), nil, nil)
}

// DeleteCourses uses the batched endpoint.
func (c *Client) DeleteCourses(ctx context.Context, ids []uint) (int, error) {
	var res struct {
		Deleted int `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodPost, "/courses/bulk-delete", map[string][]uint{"ids": ids}, &res); err != nil {
		return 0, err
	}
	return res.Deleted, nil
}

func (c *Client) ListMeals(ctx context.Context) ([]model.Meal, error) {
	var rows []wire.MealRow
	if err := c.do(ctx, http.MethodGet, "/meals", nil, &rows); err != nil {
		return nil, err
	}
	meals := make([]model.Meal, 0, len(rows))
	for _, r := range rows {
		meals = append(meals, r.Decode())
	}
	return meals, nil
}

func (c *Client) CreateMeal(ctx context.Context, meal *model.Meal) error {
	row := wire.FromMeal(*meal)
	row.ID = 0
	id, err := c.create(ctx, "/meals", row)
	if err != nil {
		return err
	}
	meal.ID = id
	return nil
}

func (c *Client) UpdateMeal(ctx context.Context, meal model.Meal) error {
	return c.do(ctx, http.MethodPut, itemPath("meals", meal.ID), wire.FromMeal(meal), nil)
}

func (c *Client) DeleteMeal(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, itemPath("meals", id), nil, nil)
}
