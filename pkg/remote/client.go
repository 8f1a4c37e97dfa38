package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/navtree/pkg/buildinfo"
	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/httputil"
	"github.com/matzehuels/navtree/pkg/observability"
)

// Defaults for [New].
const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = 500 * time.Millisecond
)

// RequestIDHeader carries the correlation ID of each request.
const RequestIDHeader = "X-Request-Id"

const snapshotKey = "dashboards"

// Payload is the body of PUT /dashboards.
type Payload struct {
	ID         string            `json:"id"`
	Dashboards []dashboard.Entry `json:"dashboards"`
}

// Client talks to a navtree remote store server.
type Client struct {
	base       *url.URL
	http       *http.Client
	headers    map[string]string
	retries    int
	retryDelay time.Duration
	snapshots  *httputil.Cache
	logger     *log.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after
// [DefaultTimeout].
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetries sets how many attempts a request gets and the initial backoff.
func WithRetries(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = max(attempts, 1)
		c.retryDelay = max(delay, 0)
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithSnapshots keeps the last fetched collection in cache. The snapshot is
// namespaced by the server URL.
func WithSnapshots(cache *httputil.Cache) Option {
	return func(c *Client) { c.snapshots = cache }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid server url %q", baseURL)
	}
	c := &Client{
		base:       u,
		http:       &http.Client{Timeout: DefaultTimeout},
		headers:    map[string]string{"User-Agent": buildinfo.UserAgent()},
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.snapshots != nil {
		c.snapshots = c.snapshots.Namespace(u.String() + "#")
	}
	return c, nil
}

// URL returns the server base URL.
func (c *Client) URL() string { return c.base.String() }

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Dashboards implements navigation.Remote. When the server is unreachable
// and a snapshot is configured, the last fetched collection is returned.
func (c *Client) Dashboards(ctx context.Context) ([]dashboard.Entry, error) {
	var entries []dashboard.Entry
	err := c.do(ctx, http.MethodGet, "/dashboards", nil, &entries)
	if err != nil {
		if cached, ok := c.snapshot(err); ok {
			return cached, nil
		}
		return nil, err
	}
	if entries == nil {
		entries = []dashboard.Entry{}
	}
	c.remember(entries)
	return entries, nil
}

// ReplaceDashboards implements navigation.Remote.
func (c *Client) ReplaceDashboards(ctx context.Context, entries []dashboard.Entry) error {
	payload := Payload{ID: uuid.NewString(), Dashboards: dashboard.Clone(entries)}
	var saved []dashboard.Entry
	if err := c.do(ctx, http.MethodPut, "/dashboards", payload, &saved); err != nil {
		return err
	}
	c.remember(saved)
	return nil
}

// Report returns the report document stored under link.
func (c *Client) Report(ctx context.Context, link string) ([]byte, error) {
	var doc json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(link), nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ScaffoldReport implements navigation.Remote.
func (c *Client) ScaffoldReport(ctx context.Context, link string) error {
	return c.do(ctx, http.MethodPut, "/empty", map[string]string{"link": link}, nil)
}

// RenameReport implements navigation.Remote.
func (c *Client) RenameReport(ctx context.Context, oldLink, newLink string) error {
	return c.do(ctx, http.MethodPut, "/"+url.PathEscape(oldLink), map[string]string{"link": newLink}, nil)
}

// DeleteReport implements navigation.Remote.
func (c *Client) DeleteReport(ctx context.Context, link string) error {
	return c.do(ctx, http.MethodDelete, "/"+url.PathEscape(link), nil, nil)
}

// Close implements store.Backend. It releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) snapshot(cause error) ([]dashboard.Entry, bool) {
	if c.snapshots == nil || !isTransport(cause) {
		return nil, false
	}
	var entries []dashboard.Entry
	if ok, _ := c.snapshots.Get(snapshotKey, &entries); !ok {
		return nil, false
	}
	c.logger.Warn("server unreachable; using cached dashboards", "url", c.URL(), "err", cause)
	return entries, true
}

func (c *Client) remember(entries []dashboard.Entry) {
	if c.snapshots == nil || entries == nil {
		return
	}
	if err := c.snapshots.Set(snapshotKey, entries); err != nil {
		c.logger.Debug("failed to store snapshot", "err", err)
	}
}

func isTransport(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return true
	}
	return false
}

// do sends a JSON request, retrying transient failures, and decodes a JSON
// response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode %s %s", method, path)
		}
	}
	requestID := uuid.NewString()

	return httputil.Retry(ctx, c.retries, c.retryDelay, func() error {
		return c.once(ctx, method, path, requestID, body, out)
	})
}

func (c *Client) once(ctx context.Context, method, path, requestID string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "build %s %s", method, path)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hooks := observability.HTTP()
	host := c.base.Host
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return httputil.TransportError(ctx, err, method+" "+path)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s %s", method, path)
	}
	return nil
}
