// Package gateway talks to the inventory backend's REST API. The backend is
// the only source of truth for every record shown in the console.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response body is buffered.
const maxBodyBytes = 8 << 20

// Options tunes a Client. The zero value uses transport defaults and no rate
// limiting.
type Options struct {
	// Timeout bounds each request. Zero leaves the transport defaults in place.
	Timeout    time.Duration
	RateLimit  float64
	Burst      int
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *Metrics
}

// Client issues JSON requests against one configured base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *Metrics
}

// NewClient constructs a Client for baseURL.
func NewClient(baseURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL resolves path against the base URL.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("gateway: encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, 0, time.Since(start))
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.observe(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

func (c *Client) read(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		c.logger.Warn("gateway read failed", slog.String("path", path), slog.Any("error", err))
		return nil, &TransientError{Method: http.MethodGet, Path: path, Err: err}
	}
	if resp.status < 200 || resp.status >= 300 {
		c.logger.Warn("gateway read rejected", slog.String("path", path), slog.Int("status", resp.status))
		return nil, &TransientError{Method: http.MethodGet, Path: path, Status: resp.status}
	}
	return resp.body, nil
}

// GetRaw fetches path and returns the undecoded body.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	return c.read(ctx, path)
}

// GetJSON fetches path and decodes the body into dest.
func (c *Client) GetJSON(ctx context.Context, path string, dest any) error {
	body, err := c.read(ctx, path)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &TransientError{Method: http.MethodGet, Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// Send issues a mutating request. It returns the optional message carried by
// a successful response.
func (c *Client) Send(ctx context.Context, method, path string, payload any) (string, error) {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		c.logger.Warn("gateway mutation failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return "", &MutationError{Method: method, Path: path, Err: err}
	}
	if resp.status == http.StatusUnprocessableEntity {
		return "", decodeValidation(resp.body)
	}
	if resp.status < 200 || resp.status >= 300 {
		c.logger.Warn("gateway mutation rejected", slog.String("method", method), slog.String("path", path), slog.Int("status", resp.status))
		return "", &MutationError{Method: method, Path: path, Status: resp.status, Message: decodeMessage(resp.body)}
	}
	return decodeMessage(resp.body), nil
}

// Document is a binary response such as a generated invoice PDF.
type Document struct {
	ContentType string
	Filename    string
	Body        []byte
}

// OpenDocument fetches a generated document.
func (c *Client) OpenDocument(ctx context.Context, path string) (*Document, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &TransientError{Method: http.MethodGet, Path: path, Err: err}
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, &TransientError{Method: http.MethodGet, Path: path, Status: resp.status}
	}
	contentType := resp.header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	doc := &Document{ContentType: contentType, Body: resp.body}
	if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil {
		doc.Filename = params["filename"]
	}
	return doc, nil
}
