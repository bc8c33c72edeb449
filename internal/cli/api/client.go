package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client wraps HTTP calls to the Kamy API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a Client from a base URL (e.g. http://localhost:8080) and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/") + "/api",
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is returned when the server sends a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

func (c *Client) newRequest(method, path string, body interface{}) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

func (c *Client) do(method, path string, body, out interface{}) error {
	req, err := c.newRequest(method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// Get sends a GET request and decodes the JSON body into out.
func (c *Client) Get(path string, params url.Values, out interface{}) error {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.do(http.MethodGet, path, nil, out)
}

func (c *Client) Post(path string, body, out interface{}) error {
	return c.do(http.MethodPost, path, body, out)
}

func (c *Client) Put(path string, body, out interface{}) error {
	return c.do(http.MethodPut, path, body, out)
}

func (c *Client) Patch(path string, body, out interface{}) error {
	return c.do(http.MethodPatch, path, body, out)
}

func (c *Client) Register(name, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.Post("/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.Post("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Me() (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.Get("/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Groups() ([]Group, error) {
	var resp struct {
		Groups []Group `json:"groups"`
	}
	if err := c.Get("/groups", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

func (c *Client) Group(id string) (*Group, error) {
	var resp struct {
		Group Group `json:"group"`
	}
	if err := c.Get("/groups/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Group, nil
}

func (c *Client) CreateGroup(name string) (*Group, error) {
	var resp struct {
		Group Group `json:"group"`
	}
	if err := c.Post("/groups", map[string]string{"name": name}, &resp); err != nil {
		return nil, err
	}
	return &resp.Group, nil
}

func (c *Client) Members(groupID string) ([]Member, error) {
	var resp struct {
		Members []Member `json:"members"`
	}
	if err := c.Get("/groups/"+url.PathEscape(groupID)+"/members", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (c *Client) AddMember(groupID, email string) (*Member, error) {
	var resp struct {
		Member Member `json:"member"`
	}
	if err := c.Post("/groups/"+url.PathEscape(groupID)+"/members", map[string]string{"email": email}, &resp); err != nil {
		return nil, err
	}
	return &resp.Member, nil
}

func (c *Client) GroupTasks(groupID string) ([]Task, error) {
	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.Get("/tasks/group/"+url.PathEscape(groupID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (c *Client) MyTasks() ([]Task, error) {
	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.Get("/tasks/my-tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (c *Client) Task(id string) (*Task, error) {
	var resp struct {
		Task Task `json:"task"`
	}
	if err := c.Get("/tasks/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (c *Client) CreateTask(req CreateTaskRequest) (*Task, error) {
	var resp struct {
		Task Task `json:"task"`
	}
	if err := c.Post("/tasks", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (c *Client) SetTaskStatus(id, status string) (*Task, error) {
	var resp struct {
		Task Task `json:"task"`
	}
	if err := c.Patch("/tasks/"+url.PathEscape(id)+"/status", map[string]string{"status": status}, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (c *Client) Notifications() ([]Notification, error) {
	var resp struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.Get("/notifications", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (c *Client) MarkNotificationRead(id string) error {
	return c.Patch("/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *Client) MarkAllNotificationsRead() error {
	return c.Patch("/notifications/read-all", nil, nil)
}

func (c *Client) UnreadCount() (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	if err := c.Get("/notifications/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) Version() (*VersionInfo, error) {
	var info VersionInfo
	if err := c.Get("/version", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
