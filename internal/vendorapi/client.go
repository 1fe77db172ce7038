// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package vendorapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/metrics"
)

const (
	// DefaultTimeout bounds each HTTP call.
	DefaultTimeout = 30 * time.Second

	// maxErrorBodySize limits how much of an error body ends up in messages.
	maxErrorBodySize = 2 * 1024

	// maxResponseSize guards against runaway list pages.
	maxResponseSize = 32 * 1024 * 1024
)

// RetryPolicy is the backoff applied to 429 answers. Other failures are
// never retried here: the caller retries the whole fetch.
type RetryPolicy struct {
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	RespectRetryAfter bool
}

// DefaultRetryPolicy retries three times: 1s, 2s, 4s, capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
		RespectRetryAfter: true,
	}
}

// Delay returns the wait before retry number attempt (0-based). A vendor
// Retry-After wins over the computed backoff when the policy allows it;
// MaxDelay caps both.
func (p RetryPolicy) Delay(attempt int, retryAfter time.Duration) time.Duration {
	delay := p.BaseDelay * time.Duration(1<<uint(attempt))
	if p.RespectRetryAfter && retryAfter > 0 {
		delay = retryAfter
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Options configures a Client.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Retry             RetryPolicy
	UserAgent         string

	// HTTPClient replaces the default client. Its Timeout is set to Timeout
	// when zero.
	HTTPClient *http.Client
}

// DefaultOptions returns the options used when a connector gets none.
func DefaultOptions() Options {
	return Options{
		Timeout:           DefaultTimeout,
		RequestsPerSecond: 5,
		Burst:             5,
		Retry:             DefaultRetryPolicy(),
		UserAgent:         "declaspectacle/1.0",
	}
}

// Client talks to one vendor API.
type Client struct {
	vendor    string
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	retry     RetryPolicy
	userAgent string

	// sleep waits between 429 retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client for vendor rooted at baseURL.
func NewClient(vendor, baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = opts.Timeout
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		vendor:    vendor,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		http:      httpClient,
		limiter:   limiter,
		retry:     opts.Retry,
		userAgent: opts.UserAgent,
		sleep:     sleepContext,
	}
}

// Vendor returns the vendor name used in errors and metrics.
func (c *Client) Vendor() string { return c.vendor }

// BaseURL returns the API root without trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// HTTPClient returns the underlying client, for libraries that issue their
// own requests (oauth2 token endpoint).
func (c *Client) HTTPClient() *http.Client { return c.http }

// Request describes one call. Path is joined to the base URL unless it is
// already absolute (cursor links). At most one of JSON and Form is set.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	JSON   interface{}
	Form   url.Values
}

// Response is a successful (2xx) answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Cookies    []*http.Cookie
	Body       []byte
}

// Decode unmarshals the body into out.
func (r *Response) Decode(out interface{}) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return connerr.NewVendorDataError("invalid JSON body", err)
	}
	return nil
}

// Get is shorthand for a GET decoded into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, header http.Header, out interface{}) (*Response, error) {
	return c.DoJSON(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Header: header}, out)
}

// DoJSON runs req and decodes a 2xx body into out (skipped when out is nil).
func (c *Client) DoJSON(ctx context.Context, req Request, out interface{}) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if out != nil && len(bytes.TrimSpace(resp.Body)) > 0 {
		if err := resp.Decode(out); err != nil {
			return nil, err
		}
	} else if out != nil {
		return nil, connerr.NewVendorDataError("empty body", nil)
	}
	return resp, nil
}

// Do runs req, retrying 429 answers per the retry policy, and classifies
// failures into connerr errors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var retryAfter time.Duration
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.send(ctx, req, target)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return c.classify(resp)
		}

		metrics.RecordRateLimited(c.vendor)
		retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())

		if attempt >= c.retry.MaxRetries {
			return nil, &connerr.RateLimitedError{
				RetryAfter: retryAfter,
				Attempts:   attempt + 1,
			}
		}

		delay := c.retry.Delay(attempt, retryAfter)
		logging.Ctx(ctx).Warn().
			Str("vendor", c.vendor).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Rate limited by vendor, backing off")

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		raw = c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			q.Del(k)
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (c *Client) send(ctx context.Context, req Request, target *url.URL) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader = http.NoBody
	contentType := ""
	switch {
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordVendorRequest(c.vendor, 0, elapsed)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyTransportError(err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	metrics.RecordVendorRequest(c.vendor, httpResp.StatusCode, elapsed)
	logging.Ctx(ctx).Debug().
		Str("vendor", c.vendor).
		Str("method", method).
		Str("url", logging.SanitizeURL(target.String())).
		Int("status", httpResp.StatusCode).
		Dur("duration", elapsed).
		Msg("Vendor request")

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, connerr.NewConnectivityError("failed to read response body", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Cookies:    httpResp.Cookies(),
		Body:       data,
	}, nil
}

func (c *Client) classify(resp *Response) (*Response, error) {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return resp, nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, &connerr.AuthenticationError{StatusCode: code, Message: errorSnippet(resp.Body)}
	case code >= 500:
		return nil, &connerr.ConnectivityError{StatusCode: code, Message: errorSnippet(resp.Body)}
	default:
		return nil, &connerr.StatusError{StatusCode: code, Body: errorSnippet(resp.Body)}
	}
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return connerr.NewConnectivityError("timeout", err)
	}
	return connerr.NewConnectivityError("request failed", err)
}

// errorSnippet trims an error body for inclusion in messages.
func errorSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodySize {
		s = s[:maxErrorBodySize] + "... (truncated)"
	}
	return s
}

// parseRetryAfter reads a Retry-After value given in seconds or as an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if d := when.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthenticationOnStatus turns a *connerr.StatusError with one of codes into
// an AuthenticationError. Login endpoints often answer 400 or 422 to bad
// credentials.
func AuthenticationOnStatus(err error, codes ...int) error {
	var se *connerr.StatusError
	if !errors.As(err, &se) {
		return err
	}
	for _, code := range codes {
		if se.StatusCode == code {
			return &connerr.AuthenticationError{StatusCode: code, Message: se.Body}
		}
	}
	return err
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
