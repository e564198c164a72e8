// Package api provides the HTTP client for the remote relevance service.
//
// The service exposes a small JSON API over the labeled Telegram message
// dataset: a filtered, paginated listing, a per-message label write, a
// server-side export of relevant messages, and a channel directory. Every
// call attaches the ambient bearer token when a session exists, and any call
// that observes a 401 clears the session before failing with ErrUnauthorized.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/tgreview/tgreview/internal/session"
)

// Service is the API surface the dashboard and CLI commands consume.
type Service interface {
	FetchMessages(ctx context.Context, criteria FilterCriteria, page, pageSize int) (*MessagePage, error)
	SetLabel(ctx context.Context, messageID int64, label Label) error
	ExportRelevant(ctx context.Context) (string, error)
	ListChannels(ctx context.Context) ([]string, error)
}

// Config holds configuration for creating a client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	AllowInsecure bool
	RateLimitQPS  int
}

// Client talks to the remote relevance API. There is no automatic retry:
// a failed call is reported once and the user retries explicitly.
type Client struct {
	baseURL    string
	session    *session.Store
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Service = (*Client)(nil)

// New creates a client for the given API endpoint.
func New(cfg Config, sess *session.Store) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("API base URL is required")
	}

	parsedURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Enforce HTTPS unless AllowInsecure is set
	if parsedURL.Scheme == "http" && !cfg.AllowInsecure {
		return nil, fmt.Errorf("HTTPS required for API connections\n\n" +
			"Options:\n" +
			"  1. Use HTTPS: [api] base_url = \"https://host:5001\"\n" +
			"  2. For trusted networks: add 'allow_insecure = true' to [api] in config.toml")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("URL scheme must be http or https, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return nil, fmt.Errorf("API base URL must include a host (e.g., http://localhost:5001)")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimitQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitQPS), cfg.RateLimitQPS)
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		session: sess,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}, nil
}

// do performs an authenticated request. A 401 response clears the stored
// session token before the call fails, so the whole process drops to the
// unauthenticated state at the first sign of expiry.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "request %s", path)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		_ = c.session.Clear()
		return nil, ErrUnauthorized
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, eris.Wrapf(err, "encode %s request", path)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// serverError reads a non-2xx response body and surfaces the server's error
// string verbatim when one is present.
func serverError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &ServerError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	return &ServerError{StatusCode: resp.StatusCode}
}

// filterResponse matches the filter_messages response format.
type filterResponse struct {
	Success  bool      `json:"success"`
	Error    string    `json:"error"`
	Messages []Message `json:"messages"`
	Total    int       `json:"total_messages"`
}

// FetchMessages fetches one page of messages matching the criteria.
// Criteria are validated locally first; invalid criteria never reach the
// network.
func (c *Client) FetchMessages(ctx context.Context, criteria FilterCriteria, page, pageSize int) (*MessagePage, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 24
	}

	resp, err := c.do(ctx, http.MethodPost, "/filter_messages", newFilterRequest(criteria, page, pageSize))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp)
	}

	var fr filterResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, eris.Wrap(err, "decode filter_messages response")
	}
	if !fr.Success {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: fr.Error}
	}

	return &MessagePage{Messages: fr.Messages, TotalCount: fr.Total}, nil
}

// statusResponse matches responses that only report success or an error.
type statusResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SetLabel records a relevance judgment for a single message. There is no
// partial success: either the server confirms or the caller's local state
// should be left untouched.
func (c *Client) SetLabel(ctx context.Context, messageID int64, label Label) error {
	body := struct {
		MessageID int64 `json:"message_id"`
		Label     Label `json:"label"`
	}{MessageID: messageID, Label: label}

	resp, err := c.do(ctx, http.MethodPost, "/label", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return serverError(resp)
	}

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return eris.Wrap(err, "decode label response")
	}
	if !sr.Success {
		return &ServerError{StatusCode: resp.StatusCode, Message: sr.Error}
	}

	return nil
}

// ExportRelevant triggers a server-side export of all relevant-labeled
// messages and returns the server's confirmation message. No file payload
// crosses the wire.
func (c *Client) ExportRelevant(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/export_relevants", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", serverError(resp)
	}

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", eris.Wrap(err, "decode export response")
	}
	if !sr.Success {
		return "", &ServerError{StatusCode: resp.StatusCode, Message: sr.Error}
	}

	if sr.Message == "" {
		return "Relevant messages exported", nil
	}
	return sr.Message, nil
}

// channelsResponse matches the channels listing response format.
type channelsResponse struct {
	Success  bool     `json:"success"`
	Error    string   `json:"error"`
	Channels []string `json:"channels"`
}

// ListChannels fetches the distinct channel names, sorted and deduplicated.
func (c *Client) ListChannels(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/channels", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp)
	}

	var cr channelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, eris.Wrap(err, "decode channels response")
	}
	if !cr.Success {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: cr.Error}
	}

	return dedupeSorted(cr.Channels), nil
}

// loginResponse matches the login response format.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
}

// Login exchanges credentials for a bearer token and stores it in the
// session. Unlike the data operations, a 401 here means bad credentials,
// not an expired session, so the stored token is left alone.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	req, err := c.newRequest(ctx, http.MethodPost, "/login", body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "login request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return serverError(resp)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return eris.Wrap(err, "decode login response")
	}
	if lr.AccessToken == "" {
		return &ServerError{StatusCode: resp.StatusCode, Message: "login response missing access token"}
	}

	return c.session.Save(lr.AccessToken)
}
