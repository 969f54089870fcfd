package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Yassi1511/pfemedical-go/internal/config"
	"github.com/Yassi1511/pfemedical-go/pkg/metrics"
)

// TokenSource supplies the bearer token attached to authenticated calls.
// The session shell implements it; tests substitute a fixed string.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed value.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client is the single HTTP transport every role-scoped wrapper goes
// through: one base URL for the whole backend (notifications included),
// bearer auth, JSON codecs, error-body capture, and per-request tracing and
// metrics.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	log        *zap.Logger
	metrics    *metrics.Collector
	tracer     trace.Tracer
}

func New(cfg config.APIConfig, log *zap.Logger, collector *metrics.Collector) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		userAgent:  cfg.UserAgent,
		log:        log,
		metrics:    collector,
		tracer:     otel.Tracer("pfemedical/api"),
	}
}

// request carries one backend call. Route is the metric label (path
// pattern, ids elided); Path is the concrete URL path.
type request struct {
	Method string
	Route  string
	Path   string
	Params url.Values
	Token  string
	Body   any
	Out    any
}

func (c *Client) do(ctx context.Context, req request) error {
	var body io.Reader
	contentType := ""
	switch b := req.Body.(type) {
	case nil:
	case *typedReader:
		body = b.Reader
		contentType = b.contentType
	case io.Reader:
		body = b
	case []byte:
		body = bytes.NewReader(b)
	default:
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(req.Body); err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = buf
		contentType = "application/json"
	}

	u := c.baseURL + req.Path
	if len(req.Params) != 0 {
		u += "?" + req.Params.Encode()
	}

	ctx, span := c.tracer.Start(ctx, req.Method+" "+req.Route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	c.metrics.InFlightGauge.Inc()
	start := time.Now()
	httpRes, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start)
	c.metrics.InFlightGauge.Dec()
	c.metrics.RequestDuration.WithLabelValues(req.Method, req.Route).Observe(elapsed.Seconds())

	if err != nil {
		c.metrics.RequestsTotal.WithLabelValues(req.Method, req.Route, "error").Inc()
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("route", req.Route),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", req.Method, req.Route, err)
	}
	defer httpRes.Body.Close()

	c.metrics.RequestsTotal.WithLabelValues(req.Method, req.Route, strconv.Itoa(httpRes.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.response.status_code", httpRes.StatusCode))

	if httpRes.StatusCode < 200 || httpRes.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(httpRes.Body, 1<<16))
		apiErr := decodeError(httpRes.StatusCode, req.Method+" "+req.Route, raw)
		span.SetStatus(codes.Error, apiErr.Message)
		c.log.Warn("backend error",
			zap.String("method", req.Method),
			zap.String("route", req.Route),
			zap.Int("status", httpRes.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if req.Out != nil {
		if err := json.NewDecoder(httpRes.Body).Decode(req.Out); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("decoding %s %s response: %w", req.Method, req.Route, err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, route, path string, params url.Values, token string, out any) error {
	return c.do(ctx, request{Method: http.MethodGet, Route: route, Path: path, Params: params, Token: token, Out: out})
}

func (c *Client) post(ctx context.Context, route, path string, token string, body, out any) error {
	return c.do(ctx, request{Method: http.MethodPost, Route: route, Path: path, Token: token, Body: body, Out: out})
}

func (c *Client) put(ctx context.Context, route, path string, token string, body, out any) error {
	return c.do(ctx, request{Method: http.MethodPut, Route: route, Path: path, Token: token, Body: body, Out: out})
}

func (c *Client) delete(ctx context.Context, route, path string, token string, out any) error {
	return c.do(ctx, request{Method: http.MethodDelete, Route: route, Path: path, Token: token, Out: out})
}

// multipartFile is an attachment for multipart requests.
type multipartFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// postMultipart sends fields and optional files as multipart/form-data.
// Used by prescription creation, which may carry a signature attachment.
func (c *Client) postMultipart(ctx context.Context, route, path, token string, fields map[string]string, files []multipartFile, out any) error {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("writing multipart field %q: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return fmt.Errorf("creating multipart file %q: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("copying multipart file %q: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing multipart writer: %w", err)
	}

	return c.do(ctx, request{
		Method: http.MethodPost,
		Route:  route,
		Path:   path,
		Token:  token,
		Body:   &typedReader{Reader: buf, contentType: w.FormDataContentType()},
		Out:    out,
	})
}

// typedReader lets do() attach the multipart boundary content type.
type typedReader struct {
	io.Reader
	contentType string
}
