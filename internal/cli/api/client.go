// Package api is a thin client of the DriveX REST backend.
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

	"go.uber.org/zap"
)

// NetworkErrorMessage is reported when the backend is unreachable or its
// error body cannot be parsed.
const NetworkErrorMessage = "Network error"

// Envelope wraps every backend response. Callers must check Success even
// for 2xx responses; Err does that.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Err returns nil for a successful envelope and an *Error carrying the
// backend message otherwise.
func (e *Envelope[T]) Err() error {
	if e == nil {
		return &Error{Message: NetworkErrorMessage}
	}
	if e.Success {
		return nil
	}
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	return &Error{Status: http.StatusOK, Message: msg}
}

// Error is a failed request: transport failure (Status 0), non-2xx status or
// success:false envelope.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Multipart is a request body that carries its own content type (with boundary).
type Multipart struct {
	ContentType string
	Body        io.Reader
}

// Client sends requests to one backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.SugaredLogger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout sets an overall request timeout; zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Transport: c.http.Transport, Timeout: d}
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Request sends one request to path (relative to the base URL) and decodes
// the envelope. body may be nil, a *Multipart or any JSON-marshalable value.
func Request[T any](ctx context.Context, c *Client, method, path string, body any, token string) (*Envelope[T], error) {
	req, err := c.newRequest(ctx, method, c.baseURL+path, body, token)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debugw("api request failed", "method", method, "path", path, "error", err)
		return nil, &Error{Message: NetworkErrorMessage, Err: err}
	}
	defer resp.Body.Close()
	c.logger.Debugw("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}
	var env Envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body any, token string) (*http.Request, error) {
	var (
		rdr         io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *Multipart:
		rdr, contentType = b.Body, b.ContentType
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rdr)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// decodeError extracts the backend message from a non-2xx response.
func decodeError(resp *http.Response) *Error {
	var payload struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil || json.Unmarshal(data, &payload) != nil {
		return &Error{Status: resp.StatusCode, Message: NetworkErrorMessage}
	}
	if payload.Message == "" {
		payload.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: payload.Message}
}

// ResolveURL resolves a possibly relative file URL against the base URL.
func (c *Client) ResolveURL(raw string) (string, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// Download streams the content at rawURL into w. The bearer token is sent
// only to the backend host.
func (c *Client) Download(ctx context.Context, rawURL, token string, w io.Writer) (int64, error) {
	target, err := c.ResolveURL(rawURL)
	if err != nil {
		return 0, fmt.Errorf("resolve url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	if token != "" && sameHost(c.baseURL, target) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &Error{Message: NetworkErrorMessage, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, decodeError(resp)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read content: %w", err)
	}
	c.logger.Debugw("downloaded", "url", target, "bytes", n)
	return n, nil
}

func sameHost(a, b string) bool {
	ua, err1 := url.Parse(a)
	ub, err2 := url.Parse(b)
	return err1 == nil && err2 == nil && ua.Host == ub.Host
}
