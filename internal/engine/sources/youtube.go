package sources

// YouTube implementation is split across files by responsibility:
//   youtube.go            : Client, construction options
//   youtube_ids.go        : video / channel identifier resolution
//   youtube_innertube.go  : innertube constants, client contexts, POST helpers
//   youtube_tree.go       : untyped JSON tree accessors and fallback chains
//   youtube_extract.go    : bootstrap-data marker scan, page-level extraction
//   youtube_renderers.go  : per-field fallback chains for video renderers
//   youtube_feed.go       : channel Atom feed parsing
//   youtube_captions.go   : caption tracks, track selection, caption XML parsing
//   youtube_browse.go     : continuation-token pagination walker
//   youtube_channel.go    : channel info and channel videos (feed → scrape)
//   youtube_video.go      : video info (player response + initial data), oEmbed
//   youtube_search.go     : search results page
//   youtube_transcript.go : transcript retrieval
//   youtube_format.go     : text / SRT / VTT transcript rendering
//   youtube_summary.go    : LLM transcript summarization

import (
	"context"
	"strings"
	"time"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

const (
	// browsePause separates consecutive continuation requests.
	browsePause = 100 * time.Millisecond
	// maxBrowsePages bounds a single pagination walk.
	maxBrowsePages = 50
	// feedMaxItems is the upstream cap on channel feed entries.
	feedMaxItems = 15
)

// Completer is the subset of an LLM client used for summaries.
// engine.LLM satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Client retrieves YouTube channels, videos, search results and transcripts
// through a shared Fetcher. Safe for concurrent use.
type Client struct {
	fetch           *engine.Fetcher
	base            string
	browsePause     time.Duration
	maxBrowsePages  int
	llm             Completer
	summaryMaxChars int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another origin (mirrors, tests).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = strings.TrimRight(base, "/") }
}

// WithBrowsePause overrides the delay between continuation requests.
func WithBrowsePause(d time.Duration) Option {
	return func(c *Client) { c.browsePause = d }
}

// WithLLM enables SummarizeVideo. maxChars caps the transcript text sent.
func WithLLM(llm Completer, maxChars int) Option {
	return func(c *Client) {
		c.llm = llm
		c.summaryMaxChars = maxChars
	}
}

// NewClient builds a Client on top of fetch.
func NewClient(fetch *engine.Fetcher, opts ...Option) *Client {
	c := &Client{
		fetch:           fetch,
		base:            engine.DefaultBaseURL,
		browsePause:     browsePause,
		maxBrowsePages:  maxBrowsePages,
		summaryMaxChars: 24000,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ClearCache drops every cached page body.
func (c *Client) ClearCache(ctx context.Context) int {
	return c.fetch.ClearCache(ctx)
}

// HasLLM reports whether summaries are available.
func (c *Client) HasLLM() bool { return c.llm != nil }
