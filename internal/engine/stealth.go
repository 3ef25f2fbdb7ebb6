package engine

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
)

// BrowserClient re-exports the stealth client for engine consumers.
type BrowserClient = stealth.BrowserClient

// StealthDoer adapts a BrowserClient (Chrome TLS fingerprint, optional proxy
// rotation) to the Doer interface used by Fetcher. The browser client has no
// context parameter, so Do returns as soon as the request context ends and
// the abandoned exchange finishes under the client-wide timeout.
type StealthDoer struct {
	do browserDo
}

// browserDo is the BrowserClient.Do call without the response headers.
type browserDo func(method, url string, headers map[string]string, body io.Reader) ([]byte, int, error)

type browserResult struct {
	data   []byte
	status int
	err    error
}

// NewStealthDoer builds a browser-grade Doer. With a non-empty Webshare API
// key, requests rotate through the proxy pool; pool failures degrade to a
// direct connection.
func NewStealthDoer(webshareAPIKey string, timeoutSec int) (*StealthDoer, error) {
	opts := []stealth.ClientOption{stealth.WithTimeout(timeoutSec)}

	if webshareAPIKey != "" {
		pool, err := proxypool.NewWebshare(webshareAPIKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return &StealthDoer{do: func(method, url string, headers map[string]string, body io.Reader) ([]byte, int, error) {
		data, _, status, err := bc.Do(method, url, headers, body)
		return data, status, err
	}}, nil
}

// Do sends req through the browser client. Header names are lowercased, as
// the stealth client expects.
func (s *StealthDoer) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headers := stealth.ChromeHeaders()
	for k := range req.Header {
		headers[strings.ToLower(k)] = req.Header.Get(k)
	}

	var body io.Reader
	if req.Body != nil {
		body = req.Body
	}

	done := make(chan browserResult, 1)
	go func() {
		data, status, err := s.do(req.Method, req.URL.String(), headers, body)
		done <- browserResult{data: data, status: status, err: err}
	}()

	var r browserResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-done:
	}
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		Status:     http.StatusText(r.status),
		StatusCode: r.status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader(r.data)),
		Request:    req,
	}, nil
}
