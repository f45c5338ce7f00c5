package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/session"
)

const (
	apiPrefix      = "/api"
	defaultTimeout = 30 * time.Second
)

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Transport http.RoundTripper
}

type Client struct {
	baseURL string
	http    *http.Client
	session session.Service
	logger  *zap.Logger
}

func New(cfg Config, sess session.Service, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		session: sess,
		logger:  logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the token of the current session user and persists it.
func (c *Client) SetToken(ctx context.Context, token string) error {
	return c.session.SetSession(ctx, c.session.GetSession().User, token)
}

// ClearToken drops the session; subsequent calls are sent without Authorization.
func (c *Client) ClearToken(ctx context.Context) error {
	return c.session.ClearSession(ctx)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.GetSession().Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send executes req and applies the 401 rule: the session is cleared before the error surfaces.
func (c *Client) send(req *http.Request) (*http.Response, []byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return nil, nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}

	c.logger.Debug("Backend request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.session.ClearSession(req.Context()); err != nil {
			c.logger.Warn("Failed to clear session after 401", zap.Error(err))
		}
	}
	return resp, payload, nil
}

// do sends one request and decodes the envelope. Non-2xx and success:false both become *APIError.
func do[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (models.Envelope[T], error) {
	var env models.Envelope[T]

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return env, err
	}
	resp, payload, err := c.send(req)
	if err != nil {
		return env, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return env, newAPIError(resp.StatusCode, payload)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		env.Success = true
		return env, nil
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return env, fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if !env.Success {
		return env, newAPIError(resp.StatusCode, payload)
	}
	return env, nil
}

func data[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (T, error) {
	env, err := do[T](ctx, c, method, path, query, body)
	return env.Data, err
}

func page[T any](ctx context.Context, c *Client, path string, query url.Values) (models.Page[T], error) {
	env, err := do[[]T](ctx, c, http.MethodGet, path, query, nil)
	if err != nil {
		return models.Page[T]{}, err
	}
	items := env.Data
	if items == nil {
		items = []T{}
	}
	return models.Page[T]{Items: items, Pagination: env.Pagination}, nil
}

func pathf(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(a))
	}
	return fmt.Sprintf(format, escaped...)
}
