// Package apiclient is the movienight client's single point of outbound HTTP
// access to the backend.
//
// Every call carries the stored bearer token, a request id, and JSON
// headers, waits on the client's rate limiter, and runs under a request
// timeout. Non-2xx responses become *Error values whose status maps onto
// internal/errors codes. There is no retry and no cache.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/listenupapp/movienight/internal/domain"
	domainerrors "github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/id"
	"github.com/listenupapp/movienight/internal/logger"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRPS       = 10.0
	defaultBurst     = 20
	defaultUserAgent = "movienight/1.0"
)

// SessionSource supplies the current session for the Authorization header.
type SessionSource interface {
	Load(ctx context.Context) (domain.Session, error)
}

// Options tunes a Client. Zero values take defaults.
type Options struct {
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	UserAgent      string
}

// Client is a rate-limited backend client.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	sessions  SessionSource
	limiter   *rate.Limiter
	logger    *slog.Logger
	timeout   time.Duration
	userAgent string
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, sessions SessionSource, log *slog.Logger, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = defaultRPS
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = defaultBurst
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if log == nil {
		log = logger.Discard()
	}

	return &Client{
		baseURL:   u,
		http:      &http.Client{},
		sessions:  sessions,
		limiter:   rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst),
		logger:    log,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
	}, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Shutdown implements do.Shutdowner.
func (c *Client) Shutdown() error {
	c.Close()
	return nil
}

// Get performs GET path and decodes the response into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	return call[T](ctx, c, http.MethodGet, path, nil)
}

// Post performs POST path with an optional JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return call[T](ctx, c, http.MethodPost, path, body)
}

// Put performs PUT path with an optional JSON body.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return call[T](ctx, c, http.MethodPut, path, body)
}

// Delete performs DELETE path with an optional JSON body.
func Delete[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return call[T](ctx, c, http.MethodDelete, path, body)
}

// Exec performs a request whose response payload is ignored.
func Exec(ctx context.Context, c *Client, method, path string, body any) error {
	_, err := c.doRequest(ctx, method, path, body)
	return err
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T

	data, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return out, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &Error{Method: method, Path: path, Status: http.StatusOK, Message: "malformed response payload", cause: err}
	}
	return out, nil
}

// doRequest executes one request and returns the body of a 2xx response.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportError(method, path, fmt.Errorf("rate limit wait: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := id.RequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessions != nil {
		s, err := c.sessions.Load(ctx)
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load session")
		}
		if s.Token != "" {
			req.Header.Set("Authorization", "Bearer "+s.Token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err,
		)
		return nil, transportError(method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(method, path, fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(method, path, resp.StatusCode, data)
	}
	return data, nil
}
