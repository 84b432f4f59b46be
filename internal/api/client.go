// Package api implements the HTTP client for the Sentinel Ops backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentinelops/sentinel/internal/session"
)

// Client issues requests against a configured base URL, attaching the
// bearer token from the session store to every call that has one. The
// base URL is fixed at construction. The client never mutates the
// session; auth failures are surfaced to the caller as RequestErrors.
type Client struct {
	baseURL  string
	deviceID string
	store    *session.Store
	http     *http.Client
	logger   zerolog.Logger
}

// Config for the API client
type Config struct {
	BaseURL string
	// DeviceID tags requests for the server's identity logs. Optional.
	DeviceID string
	Timeout  time.Duration
	Store    *session.Store
	Logger   zerolog.Logger
}

// NewClient creates a new API client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		deviceID: cfg.DeviceID,
		store:    cfg.Store,
		logger:   cfg.Logger,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Multipart marks a pre-encoded request body. The client passes its
// content type through unchanged so the multipart boundary survives
// instead of being clobbered by the JSON default.
type Multipart struct {
	ContentType string
	Body        io.Reader
}

// Response is the normalized success shape: status code plus the raw
// body and whether the server declared it as JSON.
type Response struct {
	StatusCode int
	IsJSON     bool
	Body       []byte
}

// Decode unmarshals a JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &RequestError{Kind: KindDecode, Status: r.StatusCode, Message: "decode response body", Err: err}
	}
	return nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

type requestOptions struct {
	headers http.Header
	query   url.Values
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// WithQuery adds a query parameter to the request URL.
func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.query == nil {
			o.query = url.Values{}
		}
		o.query.Set(key, value)
	}
}

// Do sends one request. body may be nil, a Multipart, or any
// JSON-marshalable value. All failures come back as *RequestError.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	var options requestOptions
	for _, opt := range opts {
		opt(&options)
	}

	reqBody, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	fullURL := c.baseURL + path
	if len(options.query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		fullURL += sep + options.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, validationError("build request: %v", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range options.headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}

	// Exactly one Authorization header iff a session exists at call
	// time; unauthenticated otherwise and the server decides.
	if token := c.store.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil, &RequestError{Kind: KindCancelled, Message: "request cancelled", Err: err}
		}
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, &RequestError{Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil, &RequestError{Kind: KindCancelled, Message: "request cancelled", Err: err}
		}
		return nil, &RequestError{Kind: KindNetwork, Message: "read response body", Err: err}
	}

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Kind:    KindAPI,
			Status:  resp.StatusCode,
			Message: apiMessage(raw, resp.StatusCode),
		}
	}

	if isJSON && len(raw) > 0 && !json.Valid(raw) {
		return nil, &RequestError{Kind: KindDecode, Status: resp.StatusCode, Message: "malformed JSON in declared-JSON response"}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		IsJSON:     isJSON,
		Body:       raw,
	}, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case Multipart:
		return b.Body, b.ContentType, nil
	case *Multipart:
		return b.Body, b.ContentType, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", validationError("encode request body: %v", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// getJSON is the common fetch-and-decode path for resource wrappers.
func (c *Client) getJSON(ctx context.Context, path string, out any, opts ...RequestOption) error {
	resp, err := c.Get(ctx, path, opts...)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func (c *Client) patchJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.Patch(ctx, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func (c *Client) putJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.Put(ctx, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}
