// Package apiclient is the typed HTTP client for the job tracker API.
// It carries the bearer token, decodes the uniform error body, and
// funnels every unauthorized response through a single session-expiry
// hook, mirroring how the web client clears its stored token and falls
// back to the login view.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/jobtrackhq/jobtrack/internal/job"
	"github.com/jobtrackhq/jobtrack/internal/models"
)

// ErrSessionExpired is returned for any unauthorized response on a
// protected call after the session-expiry hook has run.
var ErrSessionExpired = errors.New("session expired")

// Client talks to the job tracker HTTP API.
type Client struct {
	http             *resty.Client
	token            string
	onSessionExpired func()
}

// New creates a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL),
	}
}

// SetToken installs the bearer token used on protected calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the currently installed bearer token.
func (c *Client) Token() string {
	return c.token
}

// OnSessionExpired registers the hook invoked whenever a protected call
// comes back unauthorized. Concurrent in-flight requests may each
// trigger it; the hook must therefore be idempotent.
func (c *Client) OnSessionExpired(hook func()) {
	c.onSessionExpired = hook
}

func (c *Client) handleUnauthorized() error {
	c.token = ""
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}

	return ErrSessionExpired
}

func apiError(response *resty.Response) error {
	if errorResponse, ok := response.Error().(*models.ErrorResponse); ok && errorResponse.Error != "" {
		return errors.New(errorResponse.Error)
	}

	return fmt.Errorf("unexpected status %d", response.StatusCode())
}

func (c *Client) authRequest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetError(&models.ErrorResponse{})
}

func (c *Client) auth(ctx context.Context, path, email, password string, name *string) (*models.AuthResponse, error) {
	body := models.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     name,
	}

	authResponse := &models.AuthResponse{}
	response, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(authResponse).
		SetError(&models.ErrorResponse{}).
		Post(path)
	if err != nil {
		return nil, err
	}
	if response.IsError() {
		return nil, apiError(response)
	}

	c.token = authResponse.Token

	return authResponse, nil
}

// Register creates an account and installs the returned token.
func (c *Client) Register(ctx context.Context, email, password string, name *string) (*models.AuthResponse, error) {
	return c.auth(ctx, "/auth/register", email, password, name)
}

// Login authenticates an existing account and installs the returned
// token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return c.auth(ctx, "/auth/login", email, password, nil)
}

// GetJobs fetches all jobs of the authenticated user, newest first.
func (c *Client) GetJobs(ctx context.Context) ([]job.JobApplication, error) {
	jobs := []job.JobApplication{}
	response, err := c.authRequest(ctx).
		SetResult(&jobs).
		Get("/jobs")
	if err != nil {
		return nil, err
	}
	if response.StatusCode() == http.StatusUnauthorized {
		return nil, c.handleUnauthorized()
	}
	if response.IsError() {
		return nil, apiError(response)
	}

	return jobs, nil
}

// CreateJob creates a job application and returns the server's
// representation with the assigned id and creation timestamp.
func (c *Client) CreateJob(ctx context.Context, createRequest models.CreateJobRequest) (*job.JobApplication, error) {
	theJob := &job.JobApplication{}
	response, err := c.authRequest(ctx).
		SetBody(createRequest).
		SetResult(theJob).
		Post("/jobs")
	if err != nil {
		return nil, err
	}
	if response.StatusCode() == http.StatusUnauthorized {
		return nil, c.handleUnauthorized()
	}
	if response.IsError() {
		return nil, apiError(response)
	}

	return theJob, nil
}

// UpdateJob applies a partial update and returns the server's updated
// representation.
func (c *Client) UpdateJob(ctx context.Context, jobID string, patch models.JobPatch) (*job.JobApplication, error) {
	theJob := &job.JobApplication{}
	response, err := c.authRequest(ctx).
		SetBody(patch).
		SetResult(theJob).
		Patch("/jobs/" + jobID)
	if err != nil {
		return nil, err
	}
	if response.StatusCode() == http.StatusUnauthorized {
		return nil, c.handleUnauthorized()
	}
	if response.IsError() {
		return nil, apiError(response)
	}

	return theJob, nil
}

// DeleteJob hard-deletes a job application.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	response, err := c.authRequest(ctx).
		Delete("/jobs/" + jobID)
	if err != nil {
		return err
	}
	if response.StatusCode() == http.StatusUnauthorized {
		return c.handleUnauthorized()
	}
	if response.IsError() {
		return apiError(response)
	}

	return nil
}
