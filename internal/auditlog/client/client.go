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
	"time"

	"auditfeed/internal/auditlog/models"
)

const (
	// DefaultServiceURL is the public Office 365 Management API root.
	DefaultServiceURL = "https://manage.office.com/api/v1.0"

	acceptJSON      = "application/json;odata.metadata=none"
	maxResponseSize = 64 << 20
)

// RequestObserver receives one observation per completed call.
type RequestObserver interface {
	ObserveRequest(method string, statusCode int, duration time.Duration)
}

// Client talks to the tenant-scoped management API. Relative endpoints are
// resolved against {serviceURL}/{tenantID}/; absolute URLs such as content
// URIs are used as given. The bearer credential is attached to every call.
type Client struct {
	base        *url.URL
	accessToken string
	timeout     time.Duration
	httpClient  HTTPDoer
	observer    RequestObserver
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithTimeout bounds each call made with the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithObserver reports call outcomes, typically to metrics.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New creates a client for one tenant.
func New(serviceURL, tenantID, accessToken string, opts ...Option) (*Client, error) {
	if serviceURL == "" {
		serviceURL = DefaultServiceURL
	}
	if tenantID == "" {
		return nil, errors.New("tenant id is required")
	}
	base, err := url.Parse(strings.TrimRight(serviceURL, "/") + "/" + url.PathEscape(tenantID) + "/")
	if err != nil {
		return nil, fmt.Errorf("parse service url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("service url %q is not absolute", serviceURL)
	}

	c := &Client{
		base:        base,
		accessToken: accessToken,
		timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// BaseURL returns the tenant-scoped root every relative endpoint hangs off.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, query, out)
}

// Post issues a body-less POST and decodes the JSON response into out when
// out is non-nil.
func (c *Client) Post(ctx context.Context, endpoint string, query url.Values, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, query, out)
}

func (c *Client) resolve(endpoint string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	var u *url.URL
	if ref.IsAbs() {
		u = ref
	} else {
		ref.Path = strings.TrimLeft(ref.Path, "/")
		u = c.base.ResolveReference(ref)
	}
	if len(query) > 0 {
		merged := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				merged.Add(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, out any) error {
	u, err := c.resolve(endpoint, query)
	if err != nil {
		return newServiceError(ErrorInternal, method, endpoint, "invalid endpoint", err)
	}
	target := u.String()

	var body io.Reader
	if method == http.MethodPost {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return newServiceError(ErrorInternal, method, target, "failed to create request", err)
	}
	req.Header.Set("Accept", acceptJSON)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, 0, start)
		switch {
		case errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded:
			return newServiceError(ErrorTimeout, method, target, "request timeout", err)
		case errors.Is(err, context.Canceled):
			return newServiceError(ErrorCanceled, method, target, "request canceled", err)
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return newServiceError(ErrorTimeout, method, target, "request timeout", err)
		}
		return newServiceError(ErrorServiceOutage, method, target, "failed to execute request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	c.observe(method, resp.StatusCode, start)
	if err != nil {
		return newServiceError(ErrorBadData, method, target, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(method, target, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		se := newServiceError(ErrorBadData, method, target, "failed to decode response", err)
		se.StatusCode = resp.StatusCode
		se.Body = respBody
		return se
	}
	return nil
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, status, time.Since(start))
	}
}

// statusError classifies a non-2xx response and keeps the remote diagnostics.
func statusError(method, target string, status int, body []byte) *ServiceError {
	var category ErrorCategory
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		category = ErrorAuthentication
	case status == http.StatusNotFound:
		category = ErrorNotFound
	case status == http.StatusTooManyRequests:
		category = ErrorRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		category = ErrorTimeout
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable:
		category = ErrorServiceOutage
	case status >= 400 && status < 500:
		category = ErrorBadRequest
	default:
		category = ErrorInternal
	}

	se := newServiceError(category, method, target, http.StatusText(status), nil)
	se.StatusCode = status
	se.Body = body

	var envelope models.ServiceErrorBody
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		se.Code = envelope.Error.Code
		se.Message = envelope.Error.Message
	}
	return se
}
