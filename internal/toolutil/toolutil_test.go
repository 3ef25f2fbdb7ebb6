package toolutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name         string
		n, def, most int
		want         int
	}{
		{"zero uses default", 0, 15, 500, 15},
		{"negative uses default", -3, 10, 50, 10},
		{"within range", 42, 10, 50, 42},
		{"capped", 900, 15, 500, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampLimit(tt.n, tt.def, tt.most))
		})
	}
}

func TestNormLangs(t *testing.T) {
	assert.Nil(t, NormLangs(nil, ""))
	assert.Equal(t, []string{"ru"}, NormLangs(nil, " ru "))
	// Duplicates differing only in case collapse to the first spelling.
	assert.Equal(t, []string{"de", "EN"}, NormLangs([]string{"de", "", "EN"}, "en"))
	assert.Equal(t, []string{"zh-Hans", "en"}, NormLangs([]string{"zh-Hans", "zh-hans"}, "en"))
}

func TestBuildClient(t *testing.T) {
	cfg := engine.Config{
		BaseURL:      "http://127.0.0.1:1",
		HTTPClient:   "std",
		FetchRetries: 1,
	}
	client, fetcher, err := BuildClient(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, client)
	require.NotNil(t, fetcher)
	assert.False(t, client.HasLLM())

	cfg.LLMAPIKey = "test-key"
	client, _, err = BuildClient(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, client.HasLLM())
}

func TestBuildClientBadRedisDegrades(t *testing.T) {
	cfg := engine.Config{RedisURL: "not-a-url", HTTPClient: "std"}
	_, fetcher, err := BuildClient(context.Background(), cfg)
	require.NoError(t, err)
	assert.Zero(t, fetcher.Cache().Len())
}

func TestBuildClientUnknownTransport(t *testing.T) {
	_, _, err := BuildClient(context.Background(), engine.Config{HTTPClient: "curl"})
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))
}
