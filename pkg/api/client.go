package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TokenSource supplies the stored bearer token. A credential store
// satisfies this; Load returns "" when nothing is stored.
type TokenSource interface {
	Load() (string, error)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the backend base URL, e.g. "https://api.loopline.dev".
	BaseURL string

	// HTTPClient is the transport to use. Default: http.DefaultClient.
	HTTPClient *http.Client

	// Tokens supplies the bearer token for authenticated requests.
	Tokens TokenSource

	// Logger receives request logs. Default: slog.Default().
	Logger *slog.Logger

	// Metrics records request counters and durations when set.
	Metrics *Metrics

	// Tracer wraps each request in a client span when set.
	Tracer trace.Tracer

	// OnUnauthorized fires on every 401 response, before the error is
	// returned, with the path of the request that triggered it. This is
	// the forced-logout hook: it runs no matter which feature made the
	// call.
	OnUnauthorized func(path string)
}

// Client is the single HTTP boundary to the backend. Every outgoing request
// goes through Do, which attaches the bearer credential, blocks credential-
// required requests when no token is stored, and translates response status
// codes into the typed error classes in this package.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	logger         *slog.Logger
	metrics        *Metrics
	tracer         trace.Tracer
	onUnauthorized func(path string)
}

// NewClient creates a Client from the config.
func NewClient(config Config) (*Client, error) {
	base := strings.TrimRight(config.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("api: invalid base URL: %w", err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:        base,
		http:           httpClient,
		tokens:         config.Tokens,
		logger:         logger.With("component", "api_client"),
		metrics:        config.Metrics,
		tracer:         config.Tracer,
		onUnauthorized: config.OnUnauthorized,
	}, nil
}

type authMode int

const (
	authRequired authMode = iota
	authOptional
	authNone
)

type requestOptions struct {
	mode authMode
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// WithoutAuth sends the request with no Authorization header even when a
// token is stored. Used for login and registration.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) {
		o.mode = authNone
	}
}

// WithOptionalAuth attaches the Authorization header when a token is stored
// but does not block the request when none is. Used for logout.
func WithOptionalAuth() RequestOption {
	return func(o *requestOptions) {
		o.mode = authOptional
	}
}

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST request with a JSON body and decodes the response
// into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT request with a JSON body and decodes the response
// into out.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, opts...)
}

// Do issues a request against the backend. By default the request requires
// authentication: the stored token is attached as a bearer header, and when
// no token is stored the request is not sent at all and ErrAuthRequired is
// returned without a network round-trip.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	options := requestOptions{mode: authRequired}
	for _, opt := range opts {
		opt(&options)
	}

	var tok string
	if options.mode != authNone && c.tokens != nil {
		var err error
		tok, err = c.tokens.Load()
		if err != nil {
			return &Error{Message: "credential storage unavailable", kind: ErrNoToken}
		}
	}
	if options.mode == authRequired && tok == "" {
		c.metrics.blocked()
		return &Error{Message: "authentication required", kind: ErrAuthRequired}
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, method+" "+path,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", method),
				attribute.String("url.path", path),
			),
		)
		defer span.End()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(path, "error", time.Since(start).Seconds())
		c.recordSpanError(ctx, err)
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return &Error{Message: "could not reach the server", kind: ErrNetwork}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(path, "error", time.Since(start).Seconds())
		return &Error{Status: resp.StatusCode, Message: "could not read the response", kind: ErrNetwork}
	}

	c.metrics.observe(path, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	c.setSpanStatus(ctx, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.metrics.unauthorized()
		c.logger.Info("unauthorized response, forcing logout", "method", method, "path", path)
		if c.onUnauthorized != nil {
			c.onUnauthorized(path)
		}
		return errorFromResponse(ErrUnauthorized, resp.StatusCode, raw)

	case resp.StatusCode == http.StatusForbidden:
		return errorFromResponse(ErrForbidden, resp.StatusCode, raw)

	case resp.StatusCode == http.StatusUnprocessableEntity:
		return errorFromResponse(ErrValidation, resp.StatusCode, raw)

	case resp.StatusCode >= 500:
		return errorFromResponse(ErrServer, resp.StatusCode, raw)

	case resp.StatusCode == http.StatusNoContent:
		return nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return decodeBody(resp.Header.Get("Content-Type"), raw, out)

	default:
		return errorFromResponse(nil, resp.StatusCode, raw)
	}
}

// decodeBody decodes a success body into out according to content type.
func decodeBody(contentType string, raw []byte, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}

	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	if strings.HasSuffix(mediaType, "json") || mediaType == "" {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("api: decode response: %w", err)
		}
		return nil
	}

	if s, ok := out.(*string); ok {
		*s = string(raw)
		return nil
	}
	return fmt.Errorf("api: unexpected content type %q", contentType)
}

func (c *Client) recordSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (c *Client) setSpanStatus(ctx context.Context, status int) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if status >= 400 {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
