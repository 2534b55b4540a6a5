// Package apiclient is the HTTP layer between the services and the Roomzy REST
// backend. It attaches the bearer access token to every request and, when the
// backend answers 401, refreshes the credential pair and retries the request
// exactly once.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/wolfeidau/roomzy/internal/models"
	"github.com/wolfeidau/roomzy/internal/storage"
	"github.com/wolfeidau/roomzy/internal/telemetry"
)

const (
	DefaultBaseURL   = "http://localhost:3000/api/v1"
	DefaultTimeout   = 10 * time.Second
	DefaultLoginPath = "/login"

	// RefreshTokenPath is called with a plain client, never through the retry logic.
	RefreshTokenPath = "/auth/refresh-token"

	// getMaxTries bounds retries of GET requests that failed before any response.
	getMaxTries = 3
)

// Config holds the client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// EnableCache turns on a private HTTP cache for GET responses.
	// CacheDir selects a disk cache, empty means in memory.
	EnableCache bool
	CacheDir    string

	Tracing bool

	// LoginPath is handed to OnAuthFailure when the session cannot be refreshed.
	LoginPath string
	// OnAuthFailure is the redirect to the login entry point. It runs after the
	// tokens have been cleared.
	OnAuthFailure func(loginPath string)

	// Transport overrides the base round tripper, used by tests.
	Transport http.RoundTripper

	Logger *zerolog.Logger
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		LoginPath: DefaultLoginPath,
	}
}

// Client sends JSON requests to the backend.
type Client struct {
	baseURL       string
	http          *http.Client
	refreshHTTP   *http.Client
	tokens        *storage.TokenStore
	loginPath     string
	onAuthFailure func(string)
	refreshGroup  singleflight.Group
	metrics       *telemetry.Metrics
}

// New creates a client that reads and rotates the credential pair in tokens.
func New(cfg Config, tokens *storage.TokenStore) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}

	l := log.Logger
	if cfg.Logger != nil {
		l = *cfg.Logger
	}

	base := http.DefaultTransport
	if cfg.Transport != nil {
		base = cfg.Transport
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(cfg, l),
		},
		// The refresh call must not carry the expired bearer nor be cached.
		refreshHTTP: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: base,
		},
		tokens:        tokens,
		loginPath:     cfg.LoginPath,
		onAuthFailure: cfg.OnAuthFailure,
		metrics:       telemetry.GetMetrics(),
	}
}

// Tokens returns the credential pair store used by the client.
func (c *Client) Tokens() *storage.TokenStore {
	return c.tokens
}

// File is an upload part for multipart requests.
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Request describes one logical API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is encoded as JSON, ignored when File is set.
	Body any
	File *File

	// NoRefresh marks calls where a 401 means bad credentials rather than an
	// expired session (login, register...). Those are never refreshed.
	NoRefresh bool
}

// payload is the encoded body, buffered so the request can be replayed.
type payload struct {
	data        []byte
	contentType string
}

// attempt is one send of a logical request. The retried mark lives here, on
// the request itself, so concurrent requests never share it.
type attempt struct {
	req            *Request
	payload        payload
	idempotencyKey string
	retried        bool
	sentToken      string
}

// Get sends a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch sends a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}

// Do runs the request state machine:
//
//	Sending -> Succeeded | Unauthorized
//	Unauthorized (not retried, refresh token present) -> Refreshing
//	Refreshing -> Retrying (tokens rotated) | terminal Unauthorized (tokens cleared, redirect)
//	Retrying -> Succeeded | terminal Unauthorized
//
// Errors are *Error for HTTP failures and wrap ErrConnection for transport failures.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	p, err := encodePayload(req)
	if err != nil {
		return err
	}

	a := &attempt{req: req, payload: p}
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		// Stable across the retry so the backend can drop a duplicate
		a.idempotencyKey = uuid.NewString()
	}

	resp, err := c.send(ctx, a)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.metrics.UnauthorizedTotal.Add(ctx, 1)
		unauthorized := decodeError(resp)

		if a.retried || req.NoRefresh {
			return unauthorized
		}
		if c.tokens.RefreshToken() == "" {
			log.Debug().Str("path", req.Path).Msg("401 without refresh token")
			return unauthorized
		}

		if _, err := c.refresh(ctx, a.sentToken); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				// The caller gave up, the shared refresh still owns the tokens
				log.Debug().Err(ctxErr).Str("path", req.Path).Msg("request cancelled during session refresh")
				return ctxErr
			}
			log.Warn().Err(err).Str("path", req.Path).Msg("session refresh failed, clearing tokens")
			c.failAuth()
			return unauthorized
		}

		a.retried = true
		resp, err = c.send(ctx, a)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.metrics.UnauthorizedTotal.Add(ctx, 1)
			return decodeError(resp)
		}
	}

	return decodeResponse(resp, out)
}

// send performs one HTTP exchange. GET requests that fail before a response
// is received are retried with backoff, other methods are sent once.
func (c *Client) send(ctx context.Context, a *attempt) (*http.Response, error) {
	maxTries := uint(1)
	if a.req.Method == http.MethodGet {
		maxTries = getMaxTries
	}

	started := time.Now()

	resp, err := backoff.Retry(ctx, func() (*http.Response, error) {
		httpReq, err := c.newHTTPRequest(ctx, a)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return resp, nil
	}, backoff.WithBackOff(newBackOff()), backoff.WithMaxTries(maxTries))

	c.metrics.RequestDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
	c.metrics.RequestsTotal.Add(ctx, 1)

	if err != nil {
		c.metrics.RequestErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrConnection, a.req.Method, a.req.Path, err)
	}

	return resp, nil
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

func (c *Client) newHTTPRequest(ctx context.Context, a *attempt) (*http.Request, error) {
	u := c.baseURL + a.req.Path
	if len(a.req.Query) > 0 {
		u += "?" + a.req.Query.Encode()
	}

	var body io.Reader
	if a.payload.data != nil {
		body = bytes.NewReader(a.payload.data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, a.req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if a.payload.contentType != "" {
		httpReq.Header.Set("Content-Type", a.payload.contentType)
	}
	if a.idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", a.idempotencyKey)
	}

	// Read the token per send so a retry picks up the rotated one
	a.sentToken = c.tokens.AccessToken()
	if a.sentToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.sentToken)
	}

	return httpReq, nil
}

// failAuth is the terminal authentication failure: both tokens are dropped and
// the caller supplied redirect to the login entry point runs.
func (c *Client) failAuth() {
	if err := c.tokens.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear tokens")
	}
	if c.onAuthFailure != nil {
		c.onAuthFailure(c.loginPath)
	}
}

func encodePayload(req *Request) (payload, error) {
	if req.File != nil {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)

		part, err := w.CreateFormFile(req.File.Field, req.File.Filename)
		if err != nil {
			return payload{}, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, req.File.Content); err != nil {
			return payload{}, fmt.Errorf("failed to read upload: %w", err)
		}
		if err := w.Close(); err != nil {
			return payload{}, fmt.Errorf("failed to finish multipart body: %w", err)
		}

		return payload{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
	}

	if req.Body == nil {
		if req.Method == http.MethodGet || req.Method == http.MethodDelete {
			return payload{}, nil
		}
		return payload{data: []byte("{}"), contentType: "application/json"}, nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return payload{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	return payload{data: data, contentType: "application/json"}, nil
}

// decodeResponse decodes a non 401 response into out, or an *Error for status >= 400.
func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError reads the backend envelope of an error response.
func decodeError(resp *http.Response) *Error {
	defer resp.Body.Close()

	apiErr := &Error{Status: resp.StatusCode}

	var envelope models.Response[models.Empty]
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(data) > 0 && json.Unmarshal(data, &envelope) == nil {
		apiErr.Message = envelope.Message
		if apiErr.Message == "" {
			apiErr.Message = envelope.Error
		}
		apiErr.Errors = envelope.Errors
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}
