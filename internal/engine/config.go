package engine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	Port      string
	Transport string // "http" or "stdio"
	LogLevel  slog.Level

	BaseURL           string // upstream origin, overridable for mirrors and tests
	FetchTimeout      time.Duration
	FetchRetries      int
	FetchRetryDelay   time.Duration
	RequestsPerSecond float64
	RateBurst         int

	RedisURL       string
	HTTPClient     string // "std" or "stealth"
	WebshareAPIKey string

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	SummaryMaxChars    int
}

// DefaultBaseURL is the public YouTube origin.
const DefaultBaseURL = "https://www.youtube.com"

// LoadConfig reads Config from the environment.
func LoadConfig() Config {
	return Config{
		Port:      env.Str("MCP_PORT", "8895"),
		Transport: strings.ToLower(env.Str("MCP_TRANSPORT", "http")),
		LogLevel:  parseLevel(env.Str("LOG_LEVEL", "info")),

		BaseURL:           strings.TrimRight(env.Str("YT_BASE_URL", DefaultBaseURL), "/"),
		FetchTimeout:      env.Duration("FETCH_TIMEOUT", DefaultTimeout),
		FetchRetries:      env.Int("FETCH_RETRIES", DefaultRetryPolicy.Retries),
		FetchRetryDelay:   env.Duration("FETCH_RETRY_DELAY", DefaultRetryPolicy.Delay),
		RequestsPerSecond: env.Float("REQUESTS_PER_SECOND", 0),
		RateBurst:         env.Int("RATE_BURST", 2),

		RedisURL:       env.Str("REDIS_URL", ""),
		HTTPClient:     strings.ToLower(env.Str("HTTP_CLIENT", "std")),
		WebshareAPIKey: env.Str("WEBSHARE_API_KEY", ""),

		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 4096),
		SummaryMaxChars:    env.Int("SUMMARY_MAX_CHARS", 24000),
	}
}

// FetcherOptions translates the transport settings into fetcher options.
func (c Config) FetcherOptions() []FetcherOption {
	return []FetcherOption{
		WithRetryPolicy(RetryPolicy{Retries: c.FetchRetries, Delay: c.FetchRetryDelay}),
		WithRequestTimeout(c.FetchTimeout),
		WithRateLimit(c.RequestsPerSecond, c.RateBurst),
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
