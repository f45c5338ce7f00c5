// Package proxy forwards raw /api/* traffic to the ACH backend.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/app/observability/metrics"
)

const internalError = "Internal server error"

var (
	errInvalidBody = errors.New("request body is not valid JSON")
	errTooLarge    = errors.New("body exceeds the proxy limit")
)

// defaultMaxBody bounds request and response bodies held in memory.
const defaultMaxBody = 32 << 20

type Config struct {
	// BackendURL is the backend origin, without the /api suffix.
	BackendURL string
	Timeout    time.Duration
	Transport  http.RoundTripper
	// MaxBody caps request and response bodies in bytes; larger bodies fail instead of being cut.
	MaxBody int64
}

// Proxy relays a request to the backend and the backend's answer back to the caller. It keeps no
// state between requests and never retries.
type Proxy struct {
	backend string
	client  *http.Client
	maxBody int64
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Proxy {
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = defaultMaxBody
	}
	backend := strings.TrimRight(cfg.BackendURL, "/")
	if backend != "" && !strings.Contains(backend, "://") {
		backend = "http://" + backend
	}
	return &Proxy{
		backend: backend,
		client:  &http.Client{Timeout: cfg.Timeout, Transport: otelhttp.NewTransport(transport)},
		maxBody: cfg.MaxBody,
		logger:  logger,
	}
}

// Register mounts the proxy for every method it relays.
func (p *Proxy) Register(r gin.IRouter) {
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		r.Handle(m, "/api/*path", p.Handle)
	}
}

func (p *Proxy) Handle(c *gin.Context) {
	start := time.Now()
	status, err := p.forward(c)
	if err != nil {
		status = http.StatusInternalServerError
		p.logger.Error("Proxy request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Param("path")),
			zap.Error(err))
		c.AbortWithStatusJSON(status, models.Fail(internalError))
	}

	ctx := context.WithoutCancel(c.Request.Context())
	m := metrics.Get()
	m.ProxyRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", c.Request.Method),
		attribute.String("status", strconv.Itoa(status)),
	))
	m.ProxyRequestLatency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("method", c.Request.Method),
	))
}

// target rebuilds the backend URL for the inbound path and query.
func (p *Proxy) target(c *gin.Context) string {
	path := strings.TrimPrefix(c.Param("path"), "/")
	u := p.backend + "/api/" + path
	if q := c.Request.URL.RawQuery; q != "" {
		u += "?" + q
	}
	return u
}

func (p *Proxy) forward(c *gin.Context) (int, error) {
	var body io.Reader
	if c.Request.Method != http.MethodGet && c.Request.Body != nil {
		raw, err := p.read(c.Request.Body)
		if err != nil {
			return 0, fmt.Errorf("read request body: %w", err)
		}
		if len(bytes.TrimSpace(raw)) > 0 {
			if !json.Valid(raw) {
				return 0, errInvalidBody
			}
			body = bytes.NewReader(raw)
		}
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, p.target(c), body)
	if err != nil {
		return 0, fmt.Errorf("build backend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if auth := c.GetHeader("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("backend %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	payload, err := p.read(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read backend response: %w", err)
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		if len(payload) == 0 {
			c.Status(resp.StatusCode)
			return resp.StatusCode, nil
		}
		if !json.Valid(payload) {
			return 0, fmt.Errorf("backend answered %d with malformed JSON", resp.StatusCode)
		}
		c.Data(resp.StatusCode, "application/json", payload)
		return resp.StatusCode, nil
	}
	c.Data(resp.StatusCode, "text/plain; charset=utf-8", payload)
	return resp.StatusCode, nil
}

// read reads at most maxBody bytes and fails when there are more.
func (p *Proxy) read(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, p.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > p.maxBody {
		return nil, errTooLarge
	}
	return raw, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
