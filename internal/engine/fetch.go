package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Doer sends one HTTP request. *http.Client and *StealthDoer satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 8 << 20
)

// identityHeaders is the fixed browser identity sent with every request.
var identityHeaders = map[string]string{
	"User-Agent":      UserAgentChrome,
	"Accept-Language": "en-US,en;q=0.9",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
}

// Fetcher is the transport layer: identity headers, per-attempt timeout,
// linear retry and a URL cache for GET page loads.
// Safe for concurrent use; the cache is the only shared state.
type Fetcher struct {
	client  Doer
	cache   *Cache
	policy  RetryPolicy
	timeout time.Duration
	limiter *rate.Limiter // nil = unthrottled
	sleep   sleepFunc
	maxBody int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRetryPolicy overrides DefaultRetryPolicy for every request.
func WithRetryPolicy(p RetryPolicy) FetcherOption {
	return func(f *Fetcher) { f.policy = p }
}

// WithRequestTimeout overrides DefaultTimeout.
func WithRequestTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.timeout = d }
}

// WithRateLimit throttles network attempts to rps requests per second.
// Cache hits are not throttled. rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) FetcherOption {
	return func(f *Fetcher) {
		if rps <= 0 {
			f.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// withSleep replaces the retry wait, for tests.
func withSleep(s sleepFunc) FetcherOption {
	return func(f *Fetcher) { f.sleep = s }
}

// withMaxBody lowers the body size cap, for tests.
func withMaxBody(n int64) FetcherOption {
	return func(f *Fetcher) { f.maxBody = n }
}

// NewFetcher builds a Fetcher around client. A nil cache gets a fresh one.
func NewFetcher(client Doer, cache *Cache, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if cache == nil {
		cache = NewCache()
	}
	f := &Fetcher{
		client:  client,
		cache:   cache,
		policy:  DefaultRetryPolicy,
		timeout: DefaultTimeout,
		sleep:   sleepCtx,
		maxBody: maxBodyBytes,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Cache exposes the fetcher's URL cache.
func (f *Fetcher) Cache() *Cache { return f.cache }

// ClearCache discards every cached body.
func (f *Fetcher) ClearCache(ctx context.Context) int { return f.cache.Clear(ctx) }

// RequestOption adjusts a single FetchText or PostJSON call.
type RequestOption func(*requestConfig)

type requestConfig struct {
	policy  RetryPolicy
	timeout time.Duration
	headers map[string]string
}

// Retries sets the number of additional attempts for one call.
func Retries(n int) RequestOption {
	return func(c *requestConfig) { c.policy.Retries = n }
}

// RetryDelay sets the base retry delay for one call.
func RetryDelay(d time.Duration) RequestOption {
	return func(c *requestConfig) { c.policy.Delay = d }
}

// Timeout sets the per-attempt timeout for one call.
func Timeout(d time.Duration) RequestOption {
	return func(c *requestConfig) { c.timeout = d }
}

// Headers merges h over the identity headers. Caller values win.
func Headers(h map[string]string) RequestOption {
	return func(c *requestConfig) {
		for k, v := range h {
			c.headers[http.CanonicalHeaderKey(k)] = v
		}
	}
}

func (f *Fetcher) requestConfig(opts []RequestOption) requestConfig {
	rc := requestConfig{
		policy:  f.policy,
		timeout: f.timeout,
		headers: make(map[string]string, len(identityHeaders)+2),
	}
	for k, v := range identityHeaders {
		rc.headers[k] = v
	}
	for _, o := range opts {
		o(&rc)
	}
	return rc
}

// FetchText GETs url and returns the body. A fresh cache entry short-circuits
// all network activity; successful bodies are cached under the exact URL.
func (f *Fetcher) FetchText(ctx context.Context, url string, opts ...RequestOption) (string, error) {
	if body, ok := f.cache.Get(ctx, url); ok {
		return body, nil
	}

	rc := f.requestConfig(opts)
	body, err := retryDo(ctx, rc.policy, f.sleep, func(int) (string, error) {
		return f.attempt(ctx, http.MethodGet, url, nil, rc)
	})
	if err != nil {
		metrics.FetchErrors.Add(1)
		return "", err
	}
	f.cache.Set(ctx, url, body)
	return body, nil
}

// PostJSON POSTs payload as JSON and returns the response body.
// Same retry and error classification as FetchText; never cached.
func (f *Fetcher) PostJSON(ctx context.Context, url string, payload any, opts ...RequestOption) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", WrapError(KindInvalidInput, err, "encode request body")
	}

	opts = append([]RequestOption{Headers(map[string]string{
		"Content-Type": "application/json",
		"Accept":       "*/*",
	})}, opts...)
	rc := f.requestConfig(opts)

	body, err := retryDo(ctx, rc.policy, f.sleep, func(int) (string, error) {
		return f.attempt(ctx, http.MethodPost, url, data, rc)
	})
	if err != nil {
		metrics.FetchErrors.Add(1)
		return "", err
	}
	return body, nil
}

// attempt performs exactly one HTTP exchange under its own timeout and
// classifies the outcome.
func (f *Fetcher) attempt(ctx context.Context, method, url string, body []byte, rc requestConfig) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", WrapError(KindNetwork, err, "rate limiter")
		}
	}

	attemptCtx := ctx
	if rc.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, rc.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		return "", WrapError(KindInvalidInput, err, "build request")
	}
	for k, v := range rc.headers {
		req.Header.Set(k, v)
	}

	metrics.FetchRequests.Add(1)
	resp, err := f.client.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, attemptCtx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.RateLimited.Add(1)
		slog.Warn("rate limited by upstream", slog.String("url", url))
		return "", &Error{
			Kind:       KindRateLimited,
			Msg:        "rate limited by YouTube, wait and try again",
			StatusCode: resp.StatusCode,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{
			Kind:       KindNetwork,
			Msg:        fmt.Sprintf("%s %s", method, url),
			StatusCode: resp.StatusCode,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", classifyTransportError(ctx, attemptCtx, err)
	}
	// An oversized body would decode as a truncated blob; never return or cache it.
	if int64(len(data)) > f.maxBody {
		return "", NewError(KindParsing, "%s %s: body exceeds %d bytes", method, url, f.maxBody)
	}
	return string(data), nil
}

// classifyTransportError maps a failed exchange to a network error, marking
// per-attempt timeouts. Caller cancellation is reported as-is in the chain.
func classifyTransportError(parent, attemptCtx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindNetwork, Msg: "request timed out", Timeout: true, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindNetwork, Msg: "request timed out", Timeout: true, Err: err}
	}
	return WrapError(KindNetwork, err, "request failed")
}
