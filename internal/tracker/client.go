package tracker

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
)

const maxLoggedBody = 512

// Client talks to the work-item tracker REST and graph APIs.
// It is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a client. A nil httpClient gets a 30s timeout client and
// a nil logger uses slog.Default().
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger.With("component", "tracker")}
}

// WithProject returns a copy of the client scoped to another project.
func (c *Client) WithProject(name string) *Client {
	cp := *c
	cp.cfg.Project = name
	return &cp
}

// Project returns the project the client is scoped to.
func (c *Client) Project() string { return c.cfg.Project }

// Organization returns the configured organization.
func (c *Client) Organization() string { return c.cfg.Organization }

func (c *Client) orgURL(path string, version string) (string, error) {
	if c.cfg.Organization == "" {
		return "", ErrNotConfigured
	}
	return c.build(c.cfg.BaseURL, []string{c.cfg.Organization}, path, version), nil
}

func (c *Client) projectURL(path string, version string) (string, error) {
	if c.cfg.Organization == "" || c.cfg.Project == "" {
		return "", ErrNotConfigured
	}
	return c.build(c.cfg.BaseURL, []string{c.cfg.Organization, c.cfg.Project}, path, version), nil
}

func (c *Client) graphURL(path string, version string) (string, error) {
	if c.cfg.Organization == "" {
		return "", ErrNotConfigured
	}
	return c.build(c.cfg.GraphURL, []string{c.cfg.Organization}, path, version), nil
}

func (c *Client) build(base string, segments []string, path string, version string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	b.WriteString(path)
	b.WriteString("?api-version=")
	b.WriteString(version)
	return b.String()
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// do sends one request with basic auth (empty user, token as password).
// Non-2xx responses are logged and turned into ErrUpstream or ErrNotFound.
func (c *Client) do(ctx context.Context, method, rawURL, contentType string, body []byte) (*response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth("", c.cfg.Token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("tracker request failed", "method", method, "url", redact(rawURL), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}
	c.logger.Debug("tracker request", "method", method, "url", redact(rawURL),
		"status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("tracker returned error status", "method", method, "url", redact(rawURL),
			"status", resp.StatusCode, "body", truncate(data))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.User = nil
	return u.String()
}

func truncate(b []byte) string {
	if len(b) <= maxLoggedBody {
		return string(b)
	}
	return string(b[:maxLoggedBody]) + "..."
}
