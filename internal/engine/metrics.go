package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	FetchRequests      atomic.Int64
	FetchErrors        atomic.Int64
	Retries            atomic.Int64
	RateLimited        atomic.Int64
	BrowsePages        atomic.Int64
	FeedFallbacks      atomic.Int64
	ChannelRequests    atomic.Int64
	VideoRequests      atomic.Int64
	SearchRequests     atomic.Int64
	TranscriptRequests atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
}

var metricKeys = []string{
	"fetch_requests", "fetch_errors", "fetch_retries", "rate_limited",
	"browse_pages", "feed_fallbacks",
	"channel_requests", "video_requests", "search_requests", "transcript_requests",
	"llm_calls", "llm_errors",
	"cache_hits", "cache_misses", "cache_entries",
}

// GetMetrics returns a snapshot of all counters. Cache stats come from c,
// which may be nil.
func GetMetrics(c *Cache) map[string]int64 {
	var hits, misses, entries int64
	if c != nil {
		hits, misses = c.Stats()
		entries = int64(c.Len())
	}
	return map[string]int64{
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"fetch_retries":       metrics.Retries.Load(),
		"rate_limited":        metrics.RateLimited.Load(),
		"browse_pages":        metrics.BrowsePages.Load(),
		"feed_fallbacks":      metrics.FeedFallbacks.Load(),
		"channel_requests":    metrics.ChannelRequests.Load(),
		"video_requests":      metrics.VideoRequests.Load(),
		"search_requests":     metrics.SearchRequests.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
		"cache_entries":       entries,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics(c *Cache) string {
	m := GetMetrics(c)
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the sources/ sub-package.
func IncrBrowsePages()        { metrics.BrowsePages.Add(1) }
func IncrFeedFallbacks()      { metrics.FeedFallbacks.Add(1) }
func IncrChannelRequests()    { metrics.ChannelRequests.Add(1) }
func IncrVideoRequests()      { metrics.VideoRequests.Add(1) }
func IncrSearchRequests()     { metrics.SearchRequests.Add(1) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrLLMCalls()           { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()          { metrics.LLMErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
