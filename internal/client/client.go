package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
)

// ErrSessionExpired means the caller has to log in again.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is a non-2xx answer other than 401.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the credit-sum API on behalf of one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// Opt configures a Client.
type Opt func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Opt {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSession shares an existing session.
func WithSession(s *Session) Opt {
	return func(c *Client) {
		c.session = s
	}
}

// New creates a new API client.
func New(baseURL string, opts ...Opt) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		session: NewSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session {
	return c.session
}

// AuthorizedRequest sends body as JSON with the session token and decodes
// a successful response into out (when non-nil). A missing or stale token
// and a 401 answer both end the session and return ErrSessionExpired.
func (c *Client) AuthorizedRequest(ctx context.Context, method, path string, body, out any) error {
	token := c.session.EnsureValid()
	if token == "" {
		return ErrSessionExpired
	}

	req, err := c.newJSONRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	err = c.do(req, out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		c.session.Clear()
		return ErrSessionExpired
	}
	return err
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/jwt/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &resp); err != nil {
		return err
	}
	c.session.Set(resp.AccessToken)
	return nil
}

// Logout forgets the session token. Tokens are stateless, so the server is
// not involved.
func (c *Client) Logout() {
	c.session.Clear()
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password string) (*models.UserWithCredits, error) {
	var user models.UserWithCredits
	if err := c.publicRequest(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgotPassword asks the server to mail a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.publicRequest(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword sets a new password with a token from the reset email.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.publicRequest(ctx, http.MethodPost, "/auth/reset-password", map[string]string{
		"token":    token,
		"password": password,
	}, nil)
}

// Me returns the logged in user with its credit balance.
func (c *Client) Me(ctx context.Context) (*models.UserWithCredits, error) {
	var user models.UserWithCredits
	if err := c.AuthorizedRequest(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword changes the password of the logged in user.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.AuthorizedRequest(ctx, http.MethodPatch, "/users/me/password", map[string]string{
		"current_password": currentPassword,
		"password":         newPassword,
	}, nil)
}

// Sum returns a+b computed by the server for one credit.
func (c *Client) Sum(ctx context.Context, a, b int) (int, error) {
	var resp struct {
		Result int `json:"result"`
	}
	if err := c.AuthorizedRequest(ctx, http.MethodPost, "/api/sum", map[string]int{"a": a, "b": b}, &resp); err != nil {
		return 0, err
	}
	return resp.Result, nil
}

// ListUsers returns a page of users. Superuser only.
func (c *Client) ListUsers(ctx context.Context, limit, offset int) ([]models.UserWithCredits, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var users []models.UserWithCredits
	if err := c.AuthorizedRequest(ctx, http.MethodGet, "/users?"+q.Encode(), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetCredits overwrites a user's balance. Superuser only.
func (c *Client) SetCredits(ctx context.Context, userID uuid.UUID, credits int) (int, error) {
	var resp struct {
		Credits int `json:"credits"`
	}
	path := "/api/users/" + userID.String() + "/credits"
	if err := c.AuthorizedRequest(ctx, http.MethodPatch, path, map[string]int{"credits": credits}, &resp); err != nil {
		return 0, err
	}
	return resp.Credits, nil
}

func (c *Client) publicRequest(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newJSONRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes the response. Non-2xx answers become *APIError.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage returns the server's detail verbatim, or the status text.
func errorMessage(status int, raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return http.StatusText(status)
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		if s == "" {
			return http.StatusText(status)
		}
		return s
	}
	return string(body.Detail)
}
