package backend

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
)

// Authorizer supplies the bearer token of the current request and is told
// when the backend rejects it.
type Authorizer interface {
	Token(ctx context.Context) (string, error)
	Unauthorized(ctx context.Context)
}

// Observer records backend calls.
type Observer interface {
	ObserveBackend(method, route string, status int, elapsed time.Duration)
}

// Client is the HTTP wrapper for the Proplex REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	auth       Authorizer
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithObserver records every call on o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New creates a backend client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Authorize sets the token source used by authenticated calls.
func (c *Client) Authorize(a Authorizer) {
	c.auth = a
}

type langKey struct{}

// WithLang sets the lang header sent with calls made under ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFrom returns the lang set by WithLang.
func LangFrom(ctx context.Context) string {
	lang, _ := ctx.Value(langKey{}).(string)
	return lang
}

// Get fetches endpoint and decodes the response into out.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, query, nil, out, true)
}

// Post sends body to endpoint and decodes the response into out.
func (c *Client) Post(ctx context.Context, endpoint string, body Body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, nil, body, out, true)
}

// Patch sends body to endpoint and decodes the response into out.
func (c *Client) Patch(ctx context.Context, endpoint string, body Body, out any) error {
	return c.do(ctx, http.MethodPatch, endpoint, nil, body, out, true)
}

// Delete deletes endpoint and decodes the response into out.
func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil, out, true)
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body Body, out any, authenticated bool) error {
	target := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(endpoint, "/")})
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	var contentType string
	if body != nil {
		var err error
		reader, contentType, err = body.encode()
		if err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if lang := LangFrom(ctx); lang != "" {
		req.Header.Set("lang", lang)
	}
	if authenticated {
		if c.auth == nil {
			return ErrNoToken
		}
		token, err := c.auth.Token(ctx)
		if err != nil {
			return fmt.Errorf("resolving token for %s %s: %w", method, endpoint, err)
		}
		if token == "" {
			return ErrNoToken
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, endpoint, 0, start)
		return fmt.Errorf("failed to call %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()
	c.observe(method, endpoint, resp.StatusCode, start)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s %s response: %w", method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if authenticated && resp.StatusCode == http.StatusUnauthorized && c.auth != nil {
			c.auth.Unauthorized(ctx)
		}
		return &Error{
			Status:   resp.StatusCode,
			Method:   method,
			Endpoint: endpoint,
			Message:  errorMessage(raw),
		}
	}

	if err := decodeInto(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) observe(method, endpoint string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveBackend(method, routeLabel(endpoint), status, time.Since(start))
	}
}

// decodeInto decodes a response body, unwrapping {"data": ...} envelopes
// (including paginated {"data": {"data": [...]}} ones).
func decodeInto(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if out == nil || len(trimmed) == 0 {
		return nil
	}

	for i := 0; i < 2; i++ {
		if trimmed[0] != '{' {
			break
		}
		var env map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &env); err != nil {
			break
		}
		data, ok := env["data"]
		data = bytes.TrimSpace(data)
		if !ok || len(data) == 0 || string(data) == "null" {
			break
		}
		if i == 1 && data[0] != '[' {
			break
		}
		trimmed = data
	}

	return json.Unmarshal(trimmed, out)
}
