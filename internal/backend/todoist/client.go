// Package todoist implements the service.Service interface using the Todoist REST API.
package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"rewecart/internal/service"
)

const (
	// DefaultBaseURL is the Todoist REST v2 endpoint.
	DefaultBaseURL = "https://api.todoist.com/rest/v2"

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second
)

// Client implements service.Service using the Todoist REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Todoist client authenticating with token.
// An empty baseURL selects DefaultBaseURL.
func New(ctx context.Context, baseURL, token string) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, service.ErrAuth
	}

	// Todoist tokens never expire, so a static source is enough.
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	})

	return NewWithHTTPClient(baseURL, oauth2.NewClient(ctx, tokenSource)), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// The client is expected to add authentication itself.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type apiProject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiSection struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}

type apiTask struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	ProjectID string   `json:"project_id"`
	SectionID *string  `json:"section_id"`
	Labels    []string `json:"labels"`
}

// ListProjects returns all projects in API order.
func (c *Client) ListProjects(ctx context.Context) ([]service.Project, error) {
	var projects []apiProject
	if err := c.get(ctx, "list projects", "/projects", nil, &projects); err != nil {
		return nil, err
	}

	result := make([]service.Project, 0, len(projects))
	for _, p := range projects {
		result = append(result, service.Project{ID: p.ID, Name: p.Name})
	}
	return result, nil
}

// ListSections returns the sections of a project in API order.
func (c *Client) ListSections(ctx context.Context, projectID string) ([]service.Section, error) {
	query := url.Values{}
	query.Set("project_id", projectID)

	var sections []apiSection
	if err := c.get(ctx, "list sections", "/sections", query, &sections); err != nil {
		return nil, err
	}

	result := make([]service.Section, 0, len(sections))
	for _, s := range sections {
		result = append(result, service.Section{ID: s.ID, ProjectID: s.ProjectID, Name: s.Name})
	}
	return result, nil
}

// ListTasks returns the open tasks of a project, optionally narrowed to a section.
// An empty projectID lists the tasks of every project.
func (c *Client) ListTasks(ctx context.Context, projectID, sectionID string) ([]service.Task, error) {
	query := url.Values{}
	if projectID != "" {
		query.Set("project_id", projectID)
	}
	if sectionID != "" {
		query.Set("section_id", sectionID)
	}

	var tasks []apiTask
	if err := c.get(ctx, "list tasks", "/tasks", query, &tasks); err != nil {
		return nil, err
	}

	result := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		task := service.Task{
			ID:        t.ID,
			Content:   t.Content,
			ProjectID: t.ProjectID,
			Labels:    t.Labels,
		}
		if t.SectionID != nil {
			task.SectionID = *t.SectionID
		}
		result = append(result, task)
	}
	return result, nil
}

// CloseTask marks a task as completed.
func (c *Client) CloseTask(ctx context.Context, taskID string) error {
	path := "/tasks/" + url.PathEscape(taskID) + "/close"
	return c.do(ctx, "close task "+taskID, http.MethodPost, path, nil, nil)
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, v any) error {
	return c.do(ctx, op, http.MethodGet, path, query, v)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, v any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return &service.FetchError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &service.FetchError{Op: op, Err: wrapError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &service.FetchError{Op: op, StatusCode: resp.StatusCode}
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &service.FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// wrapError replaces transport noise with a short message.
func wrapError(err error) error {
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}
