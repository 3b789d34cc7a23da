// Package placeholder is a client for the JSONPlaceholder fake REST API.
//
// Every request is retried with a fixed delay according to the client's
// retry.Config. Non-2xx responses are treated as failures and retried too.
package placeholder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CodexForgeBR/async-demos/internal/batch"
	"github.com/CodexForgeBR/async-demos/internal/logging"
	"github.com/CodexForgeBR/async-demos/internal/metrics"
	"github.com/CodexForgeBR/async-demos/internal/retry"
)

// DefaultBaseURL is the public JSONPlaceholder service.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// Client talks to a JSONPlaceholder-compatible API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Retry   retry.Config
	Metrics *metrics.Metrics
}

// NewClient returns a Client for baseURL (DefaultBaseURL when empty) with the
// given request timeout and retry policy.
func NewClient(baseURL string, timeout time.Duration, cfg retry.Config) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Retry:   cfg,
	}
}

// Users lists all users.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.get(ctx, "/users", &out); err != nil {
		return out, err
	}
	return out, nil
}

// User fetches one user by id.
func (c *Client) User(ctx context.Context, id int) (User, error) {
	var out User
	if err := c.get(ctx, fmt.Sprintf("/users/%d", id), &out); err != nil {
		return out, err
	}
	return out, nil
}

// Posts lists all posts.
func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	var out []Post
	if err := c.get(ctx, "/posts", &out); err != nil {
		return out, err
	}
	return out, nil
}

// Todos lists all todos.
func (c *Client) Todos(ctx context.Context) ([]Todo, error) {
	var out []Todo
	if err := c.get(ctx, "/todos", &out); err != nil {
		return out, err
	}
	return out, nil
}

// CreatePost submits p and returns the created post as echoed by the API.
func (c *Client) CreatePost(ctx context.Context, p NewPost) (Post, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Post{}, fmt.Errorf("marshal post: %w", err)
	}
	var out Post
	if err := c.do(ctx, http.MethodPost, "/posts", body, &out); err != nil {
		return out, err
	}
	return out, nil
}

// UsersByID fetches the given users, batchSize requests at a time.
func (c *Client) UsersByID(ctx context.Context, ids []int, batchSize int) ([]User, error) {
	users, err := batch.Process(ctx, ids, func(ctx context.Context, id int) (User, error) {
		u, err := c.User(ctx, id)
		if err == nil && c.Metrics != nil {
			c.Metrics.BatchItems.Inc()
		}
		return u, err
	}, batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	return users, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	url := c.BaseURL + path
	cfg := c.Metrics.InstrumentRetry(c.Retry)
	onRetry := cfg.OnRetry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		logging.Debug(fmt.Sprintf("%s %s attempt %d failed: %v. Retrying in %s...",
			method, path, attempt, err, logging.FormatDuration(delay)))
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
	}

	return retry.Run(ctx, cfg, func(ctx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, resp.Body)
			return &HTTPError{Status: resp.StatusCode}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	})
}
