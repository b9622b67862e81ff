// Package api is the dashboard's REST client. It talks to the backend with
// resty, normalizes listing envelopes and exposes one service per resource.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/salesdesk/salesdesk/pkg/config"
	"github.com/salesdesk/salesdesk/pkg/logger"
)

const (
	defaultTimeout      = 30 * time.Second
	retryWaitTime       = 100 * time.Millisecond
	retryMaxWaitTime    = 2 * time.Second
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
	headerAccept        = "Accept"
	defaultEventsSuffix = "/events"
)

// Options configure a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

// Client provides access to every backend resource.
type Client struct {
	http    *resty.Client
	baseURL *url.URL

	customers   *CustomerService
	staff       *StaffService
	memberships *MembershipService
	estimates   *EstimateService
}

// NewClient builds a client from the resolved CLI configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	return New(Options{
		BaseURL:    cfg.CLI.BaseURL,
		APIKey:     cfg.CLI.APIKey.Value(),
		Timeout:    cfg.CLI.Timeout,
		RetryCount: cfg.CLI.RetryCount,
	})
}

func New(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		http:    buildHTTPClient(base.String(), opts),
		baseURL: base,
	}
	c.customers = &CustomerService{client: c}
	c.staff = &StaffService{client: c}
	c.memberships = &MembershipService{client: c}
	c.estimates = &EstimateService{client: c}
	return c, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got: %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL scheme must be http or https, got: %s", u.Scheme)
	}
	return u, nil
}

func buildHTTPClient(baseURL string, opts Options) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader(headerContentType, contentTypeJSON).
		SetHeader(headerAccept, contentTypeJSON).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		SetLogger(restyLogger{}).
		AddRetryCondition(retryCondition)
	if opts.APIKey != "" {
		client.SetAuthToken(opts.APIKey)
	}
	return client
}

// retryCondition retries reads that failed in transit or hit a transient
// server error. Mutations are never retried.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

func (c *Client) Customers() *CustomerService     { return c.customers }
func (c *Client) Staff() *StaffService            { return c.staff }
func (c *Client) Memberships() *MembershipService { return c.memberships }
func (c *Client) Estimates() *EstimateService     { return c.estimates }

// BaseURL is the API root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// do runs one request and returns the raw body of a 2xx response. Any other
// outcome becomes a *crm.RemoteError tagged with op.
func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	query map[string]string,
	body any,
) ([]byte, error) {
	log := logger.FromContext(ctx)
	req := c.http.R().SetContext(ctx).SetError(&APIError{})
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, transportError(op, err)
	}
	if resp.IsError() {
		return nil, responseError(op, resp)
	}
	log.Debug("API request completed", "method", method, "path", path, "status", resp.StatusCode())
	return resp.Body(), nil
}

// restyLogger routes resty's own diagnostics through the process logger so
// they never land on the terminal while the TUI owns it.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) { logger.Debug(fmt.Sprintf(format, v...)) }
func (restyLogger) Warnf(format string, v ...any)  { logger.Debug(fmt.Sprintf(format, v...)) }
func (restyLogger) Debugf(format string, v ...any) { logger.Debug(fmt.Sprintf(format, v...)) }
