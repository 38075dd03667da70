// Package transport performs the recipe API's HTTP calls. A call succeeds
// only when the server answers exactly 200 OK; anything else, including
// redirects and other 2xx codes, comes back as an *Error.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// AuthMode selects whether the session token is attached to a call.
type AuthMode bool

const (
	Authenticated AuthMode = true
	Anonymous     AuthMode = false
)

// TokenSource yields the current access token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Response is a completed 200 response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client issues single-attempt JSON calls against the API root.
type Client struct {
	base   *url.URL
	tokens TokenSource
	http   *http.Client
	log    *zap.Logger
}

// New creates a Client. Relative paths are resolved against baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}

	c := &Client{
		base:   base,
		tokens: tokens,
		http:   &http.Client{CheckRedirect: noRedirects},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues a GET to path.
func (c *Client) Get(ctx context.Context, path string, auth AuthMode) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, auth)
}

// Post issues a POST to path with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any, auth AuthMode) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload, auth)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, auth AuthMode) (*Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth == Authenticated && c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "bearer "+token)
		}
	}

	c.log.Debug("api request", zap.String("method", method), zap.String("url", target), zap.Bool("auth", bool(auth)))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: method, URL: target, Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.log.Debug("api response", zap.String("method", method), zap.String("url", target), zap.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Method: method, URL: target, StatusCode: resp.StatusCode, Body: data}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) resolve(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parsing request path: %w", err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// noRedirects surfaces 3xx responses as-is so they fail the 200-only rule.
func noRedirects(req *http.Request, via []*http.Request) error {
	return http.ErrUseLastResponse
}
