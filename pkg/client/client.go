// Package client is a typed Go client for the EduCycle HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds every call made by a Client built without WithHTTPClient.
	DefaultTimeout = 15 * time.Second
	// BaseURLEnv names the environment variable FromEnv reads.
	BaseURLEnv     = "EDUCYCLE_API_BASE_URL"
	defaultBaseURL = "http://localhost:8080/api/v1"
)

// TokenSource returns the caller's current ID token. It is called once per request;
// an empty token sends the request without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Client talks to one EduCycle server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The client is used as given;
// WithTimeout does not change it. nil keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithTokenSource attaches bearer tokens to every call.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a client for baseURL, e.g. "https://api.example.org/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = newHTTPClient(c.timeout)
	}
	return c
}

// FromEnv builds a client from EDUCYCLE_API_BASE_URL, falling back to a local server.
func FromEnv(opts ...Option) *Client {
	base := strings.TrimSpace(os.Getenv(BaseURLEnv))
	if base == "" {
		base = defaultBaseURL
	}
	return New(base, opts...)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		MaxIdleConns:          20,
		MaxConnsPerHost:       20,
		IdleConnTimeout:       30 * time.Second,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// envelope is the server's success wrapper.
type envelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// do sends a JSON request and decodes the envelope's data into out. out may be nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*Pagination, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// filePart is one file of a multipart upload.
type filePart struct {
	field       string
	filename    string
	contentType string
	content     io.Reader
}

// doMultipart sends payload as a JSON "payload" field plus files. The only
// Content-Type set is the writer's, which carries the boundary.
func (c *Client) doMultipart(ctx context.Context, path string, payload interface{}, files []filePart, out interface{}) error {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		if err := w.WriteField("payload", string(raw)); err != nil {
			return err
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		ct := f.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.content); err != nil {
			return fmt.Errorf("read %s: %w", f.filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, err = c.send(req, out)
	return err
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("get auth token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) (*Pagination, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, errorFromResponse(res, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Path: req.URL.Path, Err: err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return env.Pagination, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return nil, &DecodeError{Path: req.URL.Path, Err: err}
	}
	return env.Pagination, nil
}
