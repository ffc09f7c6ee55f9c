// Package client is a typed HTTP client for the resume API. Every request body
// is validated against the route's input shape before it is sent, and every
// response is validated against the shape declared for its status.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"resume-builder/resume/contract"
	"resume-builder/resume/model"
)

// SessionCookie is the cookie the server issues on register and login.
const SessionCookie = "session"

var (
	// ErrNotFound matches API errors with status 404.
	ErrNotFound = errors.New("client: not found")
	// ErrUnauthorized matches API errors with status 401.
	ErrUnauthorized = errors.New("client: unauthorized")
)

// APIError is a declared error response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

// Client talks to one API server and keeps its session in a cookie jar.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
}

// New creates a client for baseURL, e.g. "http://localhost:8080". A nil httpClient
// gets a default one with a cookie jar.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", baseURL)
	}
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Jar: jar, Timeout: 60 * time.Second}
	}
	return &Client{baseURL: u, http: httpClient}, nil
}

// SetSessionToken sends token as a Bearer credential on every request.
func (c *Client) SetSessionToken(token string) { c.token = token }

// SessionToken returns the explicit token, or the session cookie held in the jar.
func (c *Client) SessionToken() string {
	if c.token != "" || c.http.Jar == nil {
		return c.token
	}
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == SessionCookie {
			return ck.Value
		}
	}
	return ""
}

// Register creates an account. The new session replaces any explicit token.
func (c *Client) Register(ctx context.Context, in model.NewUser) (model.User, error) {
	user, err := call[model.User](ctx, c, contract.Register, nil, in, http.StatusCreated)
	if err == nil {
		c.token = ""
	}
	return user, err
}

// Login starts a session. The new session replaces any explicit token.
func (c *Client) Login(ctx context.Context, in model.Credentials) (model.User, error) {
	user, err := call[model.User](ctx, c, contract.Login, nil, in, http.StatusOK)
	if err == nil {
		c.token = ""
	}
	return user, err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := call[struct{}](ctx, c, contract.Logout, nil, nil, http.StatusOK)
	c.token = ""
	return err
}

// CurrentUser returns nil when the caller is anonymous.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	return call[*model.User](ctx, c, contract.CurrentUser, nil, nil, http.StatusOK)
}

func (c *Client) ListResumes(ctx context.Context) ([]model.Resume, error) {
	return call[[]model.Resume](ctx, c, contract.ListResumes, nil, nil, http.StatusOK)
}

func (c *Client) GetResume(ctx context.Context, id int64) (model.Resume, error) {
	return call[model.Resume](ctx, c, contract.GetResume, idParam(id), nil, http.StatusOK)
}

func (c *Client) CreateResume(ctx context.Context, in model.NewResume) (model.Resume, error) {
	return call[model.Resume](ctx, c, contract.CreateResume, nil, in, http.StatusCreated)
}

func (c *Client) UpdateResume(ctx context.Context, id int64, patch model.PartialResume) (model.Resume, error) {
	return call[model.Resume](ctx, c, contract.UpdateResume, idParam(id), patch, http.StatusOK)
}

func (c *Client) DeleteResume(ctx context.Context, id int64) error {
	_, err := call[struct{}](ctx, c, contract.DeleteResume, idParam(id), nil, http.StatusNoContent)
	return err
}

func (c *Client) GenerateResume(ctx context.Context, req model.GenerationRequest) (model.ResumeContent, error) {
	return call[model.ResumeContent](ctx, c, contract.GenerateResume, nil, req, http.StatusOK)
}

// Document is a downloaded resume rendition.
type Document struct {
	FileName    string
	ContentType string
	Body        []byte
}

func (c *Client) ExportResume(ctx context.Context, id int64) (Document, error) {
	status, header, body, err := c.send(ctx, contract.ExportResume, idParam(id), nil)
	if err != nil {
		return Document{}, err
	}
	if status != http.StatusOK {
		return Document{}, apiError(contract.ExportResume, status, body)
	}
	doc := Document{ContentType: header.Get("Content-Type"), Body: body}
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		doc.FileName = params["filename"]
	}
	return doc, nil
}

func idParam(id int64) map[string]string {
	return map[string]string{"id": strconv.FormatInt(id, 10)}
}

// call sends input on route and decodes the success body as T.
func call[T any](ctx context.Context, c *Client, route contract.Route, params map[string]string, input any, success int) (T, error) {
	var zero T
	status, _, body, err := c.send(ctx, route, params, input)
	if err != nil {
		return zero, err
	}
	if status != success {
		return zero, apiError(route, status, body)
	}
	return contract.DecodeResponse[T](route, status, body)
}

func (c *Client) send(ctx context.Context, route contract.Route, params map[string]string, input any) (int, http.Header, []byte, error) {
	path, err := route.URL(params)
	if err != nil {
		return 0, nil, nil, err
	}
	var payload []byte
	if route.Input != nil {
		if payload, err = contract.EncodeInput(route, input); err != nil {
			return 0, nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, route.Method, c.baseURL.String()+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, err
	}
	if !route.Declares(resp.StatusCode) {
		return 0, nil, nil, fmt.Errorf("%w: %s returned %d", contract.ErrUndeclaredStatus, route, resp.StatusCode)
	}
	return resp.StatusCode, resp.Header, body, nil
}

func apiError(route contract.Route, status int, body []byte) error {
	env, err := contract.DecodeResponse[errorEnvelope](route, status, body)
	if err != nil {
		return err
	}
	return &APIError{Status: status, Code: env.Error.Code, Message: env.Error.Message, Details: env.Error.Details}
}
