// Package toolutil wires configuration into a ready YouTube client and
// normalises tool inputs. Shared by the MCP server and the ytq CLI.
package toolutil

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go_youtube/internal/engine"
	"github.com/anatolykoptev/go_youtube/internal/engine/sources"
)

// BuildClient assembles cache, transport, fetcher and LLM from cfg.
// Optional dependencies (redis, proxy pool, LLM) degrade with a warning
// instead of failing startup.
func BuildClient(ctx context.Context, cfg engine.Config) (*sources.Client, *engine.Fetcher, error) {
	var cacheOpts []engine.CacheOption
	if cfg.RedisURL != "" {
		rdb, err := engine.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, memory cache only", slog.Any("error", err))
		} else {
			cacheOpts = append(cacheOpts, engine.WithRedis(rdb))
			slog.Info("redis L2 cache enabled")
		}
	}
	cache := engine.NewCache(cacheOpts...)

	doer, err := newDoer(cfg)
	if err != nil {
		return nil, nil, err
	}
	fetcher := engine.NewFetcher(doer, cache, cfg.FetcherOptions()...)

	opts := []sources.Option{sources.WithBaseURL(cfg.BaseURL)}
	if l := engine.NewLLM(cfg); l != nil {
		opts = append(opts, sources.WithLLM(l, cfg.SummaryMaxChars))
		slog.Info("llm summaries enabled", slog.String("model", cfg.LLMModel))
	}
	return sources.NewClient(fetcher, opts...), fetcher, nil
}

func newDoer(cfg engine.Config) (engine.Doer, error) {
	switch cfg.HTTPClient {
	case "", "std":
	case "stealth":
		sec := int(cfg.FetchTimeout / time.Second)
		if sec <= 0 {
			sec = 30
		}
		d, err := engine.NewStealthDoer(cfg.WebshareAPIKey, sec)
		if err != nil {
			slog.Warn("stealth client init failed, using net/http", slog.Any("error", err))
		} else {
			slog.Info("stealth browser client initialized")
			return d, nil
		}
	default:
		return nil, engine.NewError(engine.KindInvalidInput, "HTTP_CLIENT must be std or stealth, got %q", cfg.HTTPClient)
	}
	// Per-request deadlines come from the fetcher; the client only pools.
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}, nil
}

// ClampLimit returns def for non-positive n and caps n at most.
func ClampLimit(n, def, most int) int {
	if n <= 0 {
		return def
	}
	return min(n, most)
}

// NormLangs merges an ordered list and a single language field into a
// deduplicated, trimmed preference list. Codes differing only in case are
// duplicates; the first spelling is kept, since track matching ignores case.
// Empty means "use the default".
func NormLangs(langs []string, lang string) []string {
	var out []string
	seen := map[string]bool{}
	for _, l := range append(append([]string{}, langs...), lang) {
		l = strings.TrimSpace(l)
		if l == "" || seen[strings.ToLower(l)] {
			continue
		}
		seen[strings.ToLower(l)] = true
		out = append(out, l)
	}
	return out
}
