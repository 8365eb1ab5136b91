// Package backend is the typed client for the marketplace REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/marketplace/portal/internal/infrastructure/config"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/marketplace/portal/internal/infrastructure/backend"

type tokenKey struct{}

// WithBearerToken stores the caller's access token; requests made with the
// returned context forward it to the backend.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func bearerToken(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

// Client calls the backend and decodes status envelopes
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	maxBytes  int64
	userAgent string
	logger    *zap.Logger

	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for failed calls
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for cfg.BaseURL
func NewClient(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}

	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		maxBytes:  maxBytes,
		userAgent: cfg.UserAgent,
		logger:    zap.NewNop(),
		tracer:    otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}

	meter := otel.Meter(instrumentationName)
	if c.requests, err = meter.Int64Counter("backend.requests",
		metric.WithDescription("Backend calls by endpoint and outcome")); err != nil {
		return nil, fmt.Errorf("create backend request counter: %w", err)
	}
	if c.duration, err = meter.Float64Histogram("backend.request.duration",
		metric.WithDescription("Backend call latency"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create backend duration histogram: %w", err)
	}
	return c, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do sends a JSON request and decodes the envelope. out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
		contentType = "application/json"
	}
	_, err := c.send(ctx, method, path, query, reader, contentType, out)
	return err
}

// File is one part of a multipart upload
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// Upload sends a multipart/form-data request and decodes the envelope
func (c *Client) Upload(ctx context.Context, method, path string, fields map[string]string, files []File, out any) error {
	_, err := c.upload(ctx, method, path, fields, files, out)
	return err
}

func (c *Client) upload(ctx context.Context, method, path string, fields map[string]string, files []File, out any) (*Envelope, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create form file %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("copy form file %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	return c.send(ctx, method, path, nil, &buf, w.FormDataContentType(), out)
}

// Download fetches a binary resource that is not wrapped in an envelope.
// A JSON reply is still decoded so business failures surface as BusinessError.
func (c *Client) Download(ctx context.Context, path string) ([]byte, string, error) {
	resp, body, err := c.roundTrip(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if _, err := decode(path, body, nil); err != nil {
			return nil, "", err
		}
		return nil, "", unavailable(path, "expected a file, got an envelope")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", unavailable(path, "status %d", resp.StatusCode)
	}
	return body, ct, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) (*Envelope, error) {
	resp, data, err := c.roundTrip(ctx, method, path, query, body, contentType)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, unavailable(path, "status %d", resp.StatusCode)
	}

	env, err := decode(path, data, out)
	if err != nil && resp.StatusCode >= http.StatusBadRequest && !IsBusinessError(err) {
		return nil, unavailable(path, "status %d", resp.StatusCode)
	}
	if err != nil {
		c.logger.Warn("Backend call failed",
			zap.String("request_id", logger.GetRequestID(ctx)),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("http_status", resp.StatusCode),
			zap.Error(err),
		)
	}
	return env, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (resp *http.Response, data []byte, err error) {
	ctx, span := c.tracer.Start(ctx, "backend "+method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	start := time.Now()
	defer func() {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrBackendUnavailable):
			outcome = "unavailable"
		case err != nil:
			outcome = "error"
		}
		attrs := metric.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("backend.path", path),
			attribute.String("outcome", outcome),
		)
		c.requests.Add(ctx, 1, attrs)
		c.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if tok := bearerToken(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if rid := logger.GetRequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err = c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, path, ctx.Err())
		}
		return nil, nil, unavailable(path, "%v", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	data, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, nil, unavailable(path, "read body: %v", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, nil, unavailable(path, "response exceeds %d bytes", c.maxBytes)
	}
	return resp, data, nil
}

// message runs a JSON request and returns the envelope message on success,
// for endpoints whose message becomes the success toast.
func (c *Client) message(ctx context.Context, method, path string, body, out any) (string, error) {
	var reader io.Reader
	ct := ""
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
		ct = "application/json"
	}
	env, err := c.send(ctx, method, path, nil, reader, ct, out)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
