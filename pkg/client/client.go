package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	instrumentationName = "github.com/goliatone/go-tutordash/pkg/client"
	refreshPath         = "/api/token/refresh/"
	maxResponseSize     = 4 << 20
	// DefaultBaseURL is the API address used when none is configured.
	DefaultBaseURL = "http://localhost:8000"
)

// Credentials holds the tokens sent with requests. session.Keeper is the
// usual implementation.
type Credentials interface {
	AccessToken() string
	RefreshToken() string
	SaveLogin(ctx context.Context, access, refresh string, user json.RawMessage) error
	UpdateAccess(ctx context.Context, access string) error
	Clear(ctx context.Context) error
}

// Client is the dashboard API client. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	creds   Credentials
	tracer  trace.Tracer
	logger  *zap.Logger
	now     func() time.Time
	skew    time.Duration
	refresh sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCredentials sets the token holder. Without one, requests are sent
// anonymously and login results are not retained.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) {
		c.creds = creds
	}
}

// WithTracerProvider sets the provider request spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRefreshSkew refreshes access tokens that expire within d before
// sending a request. Zero disables pre-emptive refresh.
func WithRefreshSkew(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.skew = d
		}
	}
}

// New constructs a Client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("client: base url %q must be http or https", baseURL)
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: 30 * time.Second},
		tracer: otel.Tracer(instrumentationName),
		logger: zap.NewNop(),
		now:    time.Now,
		skew:   30 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL reports the API address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Authenticated reports whether an access token is held.
func (c *Client) Authenticated() bool {
	return c.creds != nil && c.creds.AccessToken() != ""
}

// payload is an encoded request body. Keeping the bytes lets a request be
// replayed after a token refresh.
type payload struct {
	contentType string
	data        []byte
}

func jsonPayload(v any) (*payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("client: encode body: %w", err)
	}
	return &payload{contentType: "application/json", data: data}, nil
}

type call struct {
	method string
	path   string
	query  url.Values
	body   *payload
	// anonymous calls never carry or refresh tokens.
	anonymous bool
}

// do sends the call and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, req call) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "tutordash.api "+req.method+" "+req.path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("url.path", req.path),
		))
	defer span.End()

	body, err := c.send(ctx, span, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return body, nil
}

func (c *Client) send(ctx context.Context, span trace.Span, req call) ([]byte, error) {
	if !req.anonymous {
		c.refreshIfExpiring(ctx)
	}

	status, body, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if status == http.StatusUnauthorized && !req.anonymous && c.creds != nil && c.creds.RefreshToken() != "" {
		if err := c.refreshAccess(ctx, c.creds.AccessToken()); err != nil {
			return nil, err
		}
		span.AddEvent("token_refreshed")
		status, body, err = c.roundTrip(ctx, req)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Int("http.response.retry_status_code", status))
	}

	if status < 200 || status >= 300 {
		return nil, decodeAPIError(status, body)
	}
	return body, nil
}

func (c *Client) roundTrip(ctx context.Context, req call) (int, []byte, error) {
	target := *c.base
	target.Path = c.base.Path + req.path
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	var reader io.Reader
	if req.body != nil {
		reader = bytes.NewReader(req.body.data)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("client: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if req.body != nil {
		httpReq.Header.Set("Content-Type", req.body.contentType)
	}
	if !req.anonymous && c.creds != nil {
		if token := c.creds.AccessToken(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	start := c.now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("client: %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("client: read response: %w", err)
	}
	c.logger.Debug("api request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", c.now().Sub(start)),
	)
	return resp.StatusCode, data, nil
}

// refreshAccess exchanges the refresh token for a new access token. Callers
// that observed the same stale token share one refresh.
func (c *Client) refreshAccess(ctx context.Context, stale string) error {
	c.refresh.Lock()
	defer c.refresh.Unlock()

	if current := c.creds.AccessToken(); current != stale && current != "" {
		return nil
	}
	refreshToken := c.creds.RefreshToken()
	if refreshToken == "" {
		return ErrSessionExpired
	}

	body, err := jsonPayload(map[string]string{"refresh": refreshToken})
	if err != nil {
		return err
	}
	status, data, err := c.roundTrip(ctx, call{method: http.MethodPost, path: refreshPath, body: body, anonymous: true})
	if err == nil && (status < 200 || status >= 300) {
		err = decodeAPIError(status, data)
	}
	var refreshed struct {
		Access string `json:"access"`
	}
	if err == nil {
		if decodeErr := json.Unmarshal(data, &refreshed); decodeErr != nil || refreshed.Access == "" {
			err = errors.New("client: refresh response has no access token")
		}
	}
	if err != nil {
		c.logger.Info("token refresh failed, clearing session", zap.Error(err))
		if clearErr := c.creds.Clear(ctx); clearErr != nil {
			c.logger.Warn("clear session failed", zap.Error(clearErr))
		}
		return errors.Join(ErrSessionExpired, err)
	}
	return c.creds.UpdateAccess(ctx, refreshed.Access)
}

// refreshIfExpiring refreshes ahead of time when the access token is a JWT
// that expires within the configured skew. Failures are left to the 401 path.
func (c *Client) refreshIfExpiring(ctx context.Context) {
	if c.creds == nil || c.skew == 0 || c.creds.RefreshToken() == "" {
		return
	}
	token := c.creds.AccessToken()
	if token == "" {
		return
	}
	expiry, err := TokenExpiry(token)
	if err != nil || expiry.IsZero() || expiry.Sub(c.now()) > c.skew {
		return
	}
	if err := c.refreshAccess(ctx, token); err != nil {
		c.logger.Debug("pre-emptive refresh failed", zap.Error(err))
	}
}

// getData sends a GET and decodes the envelope's data[key] into out.
func (c *Client) getData(ctx context.Context, path string, query url.Values, key string, out any) error {
	body, err := c.do(ctx, call{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	return decodeData(body, key, out)
}

// sendData sends method with body and decodes the envelope's data[key].
func (c *Client) sendData(ctx context.Context, method, path string, body *payload, key string, out any) error {
	data, err := c.do(ctx, call{method: method, path: path, body: body})
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return decodeData(data, key, out)
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeData accepts {success, data: {key: value}}, {success, data: value}
// and a bare value, the three shapes the API answers with.
func decodeData(body []byte, key string, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Success != nil {
		if !*env.Success {
			msg := env.Message
			if msg == "" {
				msg = "request was not successful"
			}
			return &APIError{StatusCode: http.StatusOK, Message: msg, Body: body}
		}
		data := env.Data
		if key != "" {
			var inner map[string]json.RawMessage
			if json.Unmarshal(data, &inner) == nil {
				if value, ok := inner[key]; ok {
					data = value
				}
			}
		}
		if len(data) == 0 || string(data) == "null" {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("client: decode %s: %w", key, err)
		}
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func pathf(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, arg := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(arg))
	}
	return fmt.Sprintf(format, escaped...)
}
