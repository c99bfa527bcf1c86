package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodGet, path: "/api/health"}, nil)
}

// Register creates an account. The returned user is set even when the
// verification email could not be sent.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var u User
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   map[string]string{"name": name, "email": email, "password": password},
	}, &u)
	if u.ID == "" {
		return nil, err
	}
	return &u, err
}

// Login starts a session, replacing any previous one.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var pair tokenPair
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &pair)
	if err != nil {
		return err
	}
	c.setTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

// Logout revokes the refresh token on the server. The local session is
// dropped whatever the outcome.
func (c *Client) Logout(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh == "" {
		return ErrNotLoggedIn
	}
	defer c.setTokens("", "")

	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/logout",
		body:   map[string]string{"refreshToken": refresh},
	}, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/auth/verify",
		query:  url.Values{"token": {token}},
	}, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/password-reset-request",
		body:   map[string]string{"email": email},
	}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/reset-password",
		body:   map[string]string{"token": token, "newPassword": newPassword},
	}, nil)
}

func (c *Client) ListProjects(ctx context.Context, name string) ([]Project, error) {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}

	var p page[Project]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/projects", query: q, auth: true}, &p); err != nil {
		return nil, err
	}
	return p.Content, nil
}

func (c *Client) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	var p Project
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/projects",
		body:   map[string]string{"name": name, "description": description},
		auth:   true,
	}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathf("/api/projects/%s", id), auth: true}, nil)
}

func (c *Client) AddMember(ctx context.Context, projectID, userID string) (*Project, error) {
	var p Project
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathf("/api/projects/%s/users/%s", projectID, userID),
		auth:   true,
	}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) RemoveMember(ctx context.Context, projectID, userID string) (*Project, error) {
	var p Project
	err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   pathf("/api/projects/%s/users/%s", projectID, userID),
		auth:   true,
	}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListSteps(ctx context.Context, projectID string) ([]Step, error) {
	var p page[Step]
	err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/steps/project/%s", projectID), auth: true}, &p)
	if err != nil {
		return nil, err
	}
	return p.Content, nil
}

func (c *Client) CreateStep(ctx context.Context, projectID, name string) (*Step, error) {
	var s Step
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathf("/api/steps/project/%s", projectID),
		body:   map[string]string{"name": name},
		auth:   true,
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ListTasks(ctx context.Context, projectID string, f TaskFilter) ([]Task, error) {
	q := url.Values{}
	if f.StepID != "" {
		q.Set("stepId", f.StepID)
	}
	if f.AssignedTo != "" {
		q.Set("assignedTo", f.AssignedTo)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}

	var p page[Task]
	err := c.do(ctx, request{method: http.MethodGet, path: pathf("/api/tasks/project/%s", projectID), query: q, auth: true}, &p)
	if err != nil {
		return nil, err
	}
	return p.Content, nil
}

// CreateTask returns the stored task together with ErrDeliveryFailure when
// the assignment email could not be sent.
func (c *Client) CreateTask(ctx context.Context, in NewTask) (*Task, error) {
	var t Task
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/tasks", body: in, auth: true}, &t)
	if t.ID == "" {
		return nil, err
	}
	return &t, err
}

func (c *Client) AdvanceTask(ctx context.Context, id string) (*Task, error) {
	var t Task
	err := c.do(ctx, request{method: http.MethodPut, path: pathf("/api/tasks/%s/status", id), auth: true}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathf("/api/tasks/%s", id), auth: true}, nil)
}
