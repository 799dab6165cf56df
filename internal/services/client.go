// package services provides the HTTP transport for the catalog API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicat/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const fallbackMessage = "request failed"

// TokenStore is the persisted client state the transport reads and wipes.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Notifier surfaces a failure to the user. Implementations must return only
// once the user has been shown the error.
type Notifier interface {
	Notify(err error)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(err error)

// Notify implements [Notifier].
func (f NotifierFunc) Notify(err error) { f(err) }

// APIError is a non-2xx response other than an authentication failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Unwrap lets callers match [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// Client talks to the catalog REST service.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	tokens     TokenStore
	limiter    *rate.Limiter
	logger     *log.Logger

	mu             sync.RWMutex
	notifier       Notifier
	onUnauthorized func()
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces [http.DefaultClient].
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit paces requests to rps per second. Zero or negative disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithNotifier sets the initial failure notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// NewClient creates a client for baseURL backed by the given token store.
func NewClient(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = shared.DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "musicat",
		httpClient: http.DefaultClient,
		tokens:     tokens,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root requests are issued against.
func (c *Client) BaseURL() string { return c.baseURL }

// SetNotifier replaces the failure notifier; nil silences notifications.
func (c *Client) SetNotifier(n Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifier = n
}

// OnUnauthorized registers fn to run after a 401 has wiped persisted state.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// Do issues an authenticated request and decodes a success body into out.
//
// body is encoded as JSON when non-nil; out may be nil to discard the response.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	return c.do(ctx, method, endpoint, body, out, false)
}

// DoPublic is [Client.Do] for endpoints that do not require a session.
func (c *Client) DoPublic(ctx context.Context, method, endpoint string, body, out any) error {
	return c.do(ctx, method, endpoint, body, out, true)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any, public bool) error {
	err := c.roundTrip(ctx, method, endpoint, body, out, public)
	if err == nil {
		return nil
	}

	c.logger.Error("api request failed", "method", method, "endpoint", endpoint, "error", err)
	if !errors.Is(err, shared.ErrNotAuthenticated) && !errors.Is(err, context.Canceled) {
		c.notify(err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, body, out any, public bool) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrTransport, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: failed to encode request: %v", shared.ErrTransport, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrTransport, err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to read stored token: %w", err)
		}
		if token != "" {
			(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method, "endpoint", endpoint, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && !public {
		c.unauthorized(ctx)
		return shared.ErrNotAuthenticated
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrTransport, err)
	}
	return nil
}

// unauthorized wipes persisted state and resets the session.
func (c *Client) unauthorized(ctx context.Context) {
	if c.tokens != nil {
		if err := c.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("failed to clear client state", "error", err)
		}
	}

	c.mu.RLock()
	hook := c.onUnauthorized
	c.mu.RUnlock()
	if hook != nil {
		hook()
	}
}

func (c *Client) notify(err error) {
	c.mu.RLock()
	n := c.notifier
	c.mu.RUnlock()
	if n != nil {
		n.Notify(err)
	}
}

// errorMessage extracts {"message": ...} from an error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return fallbackMessage
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return fallbackMessage
}
