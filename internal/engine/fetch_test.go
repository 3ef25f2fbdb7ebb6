package engine

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFetcher builds a Fetcher with instant retry waits.
func testFetcher(opts ...FetcherOption) *Fetcher {
	base := []FetcherOption{
		WithRetryPolicy(RetryPolicy{Retries: 3, Delay: time.Second}),
		withSleep(noSleep(nil)),
	}
	return NewFetcher(http.DefaultClient, NewCache(), append(base, opts...)...)
}

func TestFetchTextCacheHitSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, "page")
	}))
	defer srv.Close()

	f := testFetcher()
	ctx := context.Background()

	for range 3 {
		body, err := f.FetchText(ctx, srv.URL+"/a")
		require.NoError(t, err)
		assert.Equal(t, "page", body)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchTextRateLimitedSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testFetcher().FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(err))
	assert.Equal(t, int32(1), calls.Load(), "429 must not be retried")
}

func TestFetchTextServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var waits []time.Duration
	f := testFetcher(withSleep(noSleep(&waits)))
	_, err := f.FetchText(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, int32(4), calls.Load(), "retries+1 attempts")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, waits)

	_, ok := f.Cache().Get(context.Background(), srv.URL)
	assert.False(t, ok, "failures are not cached")
}

func TestFetchTextRecoversAfterTransientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	body, err := testFetcher().FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchTextPerCallRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testFetcher().FetchText(context.Background(), srv.URL, Retries(0))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchTextTimeoutIsRetryable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := testFetcher().FetchText(context.Background(), srv.URL, Retries(1), Timeout(50*time.Millisecond))
	require.Error(t, err)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindNetwork, e.Kind)
	assert.True(t, e.Timeout)
	assert.Equal(t, int32(2), calls.Load(), "a timeout consumes one attempt and is retried")
}

func TestFetchTextIdentityHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	_, err := testFetcher().FetchText(context.Background(), srv.URL,
		Headers(map[string]string{"accept-language": "de-DE", "X-Extra": "1"}))
	require.NoError(t, err)
	assert.Equal(t, UserAgentChrome, got.Get("User-Agent"))
	assert.Equal(t, "de-DE", got.Get("Accept-Language"), "caller header wins")
	assert.Equal(t, "1", got.Get("X-Extra"))
}

func TestPostJSONNotCached(t *testing.T) {
	var calls atomic.Int32
	var contentType, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		contentType = r.Header.Get("Content-Type")
		method = r.Method
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f := testFetcher()
	ctx := context.Background()
	for range 2 {
		body, err := f.PostJSON(ctx, srv.URL, map[string]string{"k": "v"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"k":"v"}`, body)
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, 0, f.Cache().Len())
}

func TestFetchTextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testFetcher().FetchText(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchTextTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testFetcher().FetchText(context.Background(), url, Retries(0))
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Zero(t, StatusOf(err))
}

func TestFetchTextOversizedBodyNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/fits" {
			_, _ = io.WriteString(w, "01234567")
			return
		}
		_, _ = io.WriteString(w, "0123456789")
	}))
	defer srv.Close()

	f := testFetcher(withMaxBody(8))
	ctx := context.Background()

	for range 2 {
		_, err := f.FetchText(ctx, srv.URL+"/big")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrParsing))
	}
	assert.Equal(t, int32(2), calls.Load(), "one attempt per call, nothing cached")
	assert.Zero(t, f.Cache().Len())

	body, err := f.FetchText(ctx, srv.URL+"/fits")
	require.NoError(t, err)
	assert.Equal(t, "01234567", body)
}
