// Package client is a typed Go client for the DevHub API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const apiPrefix = "/api/v1"

// ErrNotAuthenticated is returned by calls that need a session when none is
// loaded.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("devhub: %d %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	store   SessionStore
	session Session
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSessionStore loads any saved session and persists future ones.
func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.store = s }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   &MemorySessionStore{},
	}
	for _, opt := range opts {
		opt(c)
	}

	s, err := c.store.Load()
	switch {
	case err == nil:
		c.session = s
	case errors.Is(err, ErrNoSession):
	default:
		return nil, err
	}
	return c, nil
}

func (c *Client) Session() Session { return c.session }

func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	})
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email": email, "password": password,
	})
}

// Logout forgets the session locally. Tokens are stateless so the server is
// not contacted.
func (c *Client) Logout() error {
	c.session = Session{}
	return c.store.Clear()
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, path, false, body, &s); err != nil {
		return Session{}, err
	}
	c.session = s
	if err := c.store.Save(s); err != nil {
		return s, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

func (c *Client) Developers(ctx context.Context, opts ListOptions) ([]Developer, error) {
	q := url.Values{}
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.Skill != "" {
		q.Set("skill", opts.Skill)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	path := "/developers"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []Developer
	err := c.do(ctx, http.MethodGet, path, false, nil, &out)
	return out, err
}

func (c *Client) Developer(ctx context.Context, userID string) (Developer, error) {
	var out Developer
	err := c.do(ctx, http.MethodGet, "/developer/"+url.PathEscape(userID), false, nil, &out)
	return out, err
}

// Me returns the caller's profile. The server creates an empty one when
// missing.
func (c *Client) Me(ctx context.Context) (Developer, error) {
	var out Developer
	err := c.do(ctx, http.MethodGet, "/developer/me", true, nil, &out)
	return out, err
}

func (c *Client) CreateProfile(ctx context.Context, in ProfileInput) (SaveResult, error) {
	var out SaveResult
	err := c.do(ctx, http.MethodPost, "/developer/profile", true, in, &out)
	return out, err
}

// SaveProfile creates or replaces the caller's profile.
func (c *Client) SaveProfile(ctx context.Context, in ProfileInput) (SaveResult, error) {
	var out SaveResult
	err := c.do(ctx, http.MethodPut, "/developer/profile", true, in, &out)
	return out, err
}

func (c *Client) DeleteProfile(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/developer/profile", true, nil, nil)
}

func (c *Client) AddProject(ctx context.Context, in ProjectInput) (string, error) {
	var out struct {
		ProjectID string `json:"project_id"`
	}
	err := c.do(ctx, http.MethodPost, "/projects", true, in, &out)
	return out.ProjectID, err
}

func (c *Client) MyProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	err := c.do(ctx, http.MethodGet, "/projects/my-projects", true, nil, &out)
	return out, err
}

func (c *Client) UpdateProject(ctx context.Context, id string, in ProjectInput) (Project, error) {
	var out Project
	err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), true, in, &out)
	return out, err
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), true, nil, nil)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// UploadPicture sends r as the caller's profile picture.
func (c *Client) UploadPicture(ctx context.Context, filename string, r io.Reader) (Picture, error) {
	if !c.session.Valid() {
		return Picture{}, ErrNotAuthenticated
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if c.session.User.ID != "" {
		if err := w.WriteField("userId", c.session.User.ID); err != nil {
			return Picture{}, err
		}
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Picture{}, err
	}
	head = head[:n]

	part := textproto.MIMEHeader{}
	part.Set("Content-Disposition", fmt.Sprintf(`form-data; name="profilePicture"; filename="%s"`, quoteEscaper.Replace(filename)))
	part.Set("Content-Type", http.DetectContentType(head))
	fw, err := w.CreatePart(part)
	if err != nil {
		return Picture{}, err
	}
	if _, err := io.Copy(fw, io.MultiReader(bytes.NewReader(head), r)); err != nil {
		return Picture{}, err
	}
	if err := w.Close(); err != nil {
		return Picture{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload-profile-picture", buf)
	if err != nil {
		return Picture{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out Picture
	err = c.send(req, true, &out)
	return out, err
}

func (c *Client) RemovePicture(ctx context.Context) error {
	if !c.session.Valid() {
		return ErrNotAuthenticated
	}
	return c.do(ctx, http.MethodDelete, "/developer/profile-picture/"+url.PathEscape(c.session.User.ID), true, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	if auth && !c.session.Valid() {
		return ErrNotAuthenticated
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, auth, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target := c.baseURL.String() + apiPrefix + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) send(req *http.Request, auth bool, out any) error {
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
