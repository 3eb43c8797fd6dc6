package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/tourcompanion/internal/model"
)

// DefaultTimeout bounds every request
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token for each request; "" means none
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client talks to the tour companion API over HTTP/JSON
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger

	// OnUnauthorized is called when an authenticated request is rejected
	// with 401, with the token that request carried ("" when none)
	OnUnauthorized func(ctx context.Context, token string)
}

// NewClient creates a client. tokens may be nil for anonymous use.
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger) *Client {
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger.With(slog.String("component", "remote")),
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// APIError represents an error response from the API
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Is lets a 401 match model.ErrUnauthorized
func (e *APIError) Is(target error) bool {
	return target == model.ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type credentialsRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

type chatListResponse struct {
	Sessions []model.ChatSession `json:"sessions"`
}

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, identifier, secret string) (*model.AuthResult, error) {
	var result model.AuthResult
	req := credentialsRequest{Identifier: identifier, Secret: secret}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", req, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

// LoginAsGuest obtains a guest session token
func (c *Client) LoginAsGuest(ctx context.Context) (*model.AuthResult, error) {
	var result model.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/guest", nil, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchPoints returns the signed-in user's points total
func (c *Client) FetchPoints(ctx context.Context) (model.Points, error) {
	var points model.Points
	err := c.do(ctx, http.MethodGet, "/api/v1/points", nil, &points, true)
	return points, err
}

// FetchChatList returns the chat sessions matching filter
func (c *Client) FetchChatList(ctx context.Context, filter model.ChatFilter) ([]model.ChatSession, error) {
	query := url.Values{}
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	path := "/api/v1/chat/sessions"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var resp chatListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// FetchChatSession returns one chat session with its messages
func (c *Client) FetchChatSession(ctx context.Context, id string) (*model.ChatSessionDetail, error) {
	var detail model.ChatSessionDetail
	path := "/api/v1/chat/sessions/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &detail, true); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Health checks that the API is reachable
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var result map[string]string
	err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &result, false)
	return result, err
}

// do performs an HTTP request. authenticated requests carry the bearer
// token and trigger OnUnauthorized on 401.
func (c *Client) do(ctx context.Context, method, path string, body, result any, authenticated bool) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	var token string
	if authenticated {
		if token = c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := parseError(resp.StatusCode, respBody)
		c.logger.Debug("request rejected",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("code", apiErr.Code))
		if authenticated && errors.Is(apiErr, model.ErrUnauthorized) && c.OnUnauthorized != nil {
			c.OnUnauthorized(ctx, token)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

func parseError(status int, body []byte) *APIError {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Code != "" {
		errResp.Error.Status = status
		return &errResp.Error
	}
	return &APIError{
		Status:  status,
		Code:    strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_")),
		Message: fmt.Sprintf("HTTP %d: %s", status, strings.TrimSpace(string(body))),
	}
}
