// Package ytserver exposes the YouTube client as MCP tools.
package ytserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/engine"
	"github.com/anatolykoptev/go_youtube/internal/engine/sources"
)

const (
	defaultChannelVideos = 15
	maxChannelVideos     = 500
	defaultSearchResults = 10
	maxSearchResults     = 50
)

// RegisterTools registers every YouTube tool on server and returns how many
// were added. summarize_youtube_video is registered only when the client has
// an LLM configured.
func RegisterTools(server *mcp.Server, yt *sources.Client) int {
	n := registerTranscriptTools(server, yt)
	n += registerVideoTools(server, yt)
	n += registerChannelTools(server, yt)
	n += registerCacheTools(server, yt)
	return n
}

// handler adapts fn to the SDK's typed handler signature. Each call gets a
// request id for log correlation; failures carry the error kind as a prefix.
func handler[In, Out any](tool string, fn func(context.Context, In) (Out, error)) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		log := slog.With(slog.String("tool", tool), slog.String("request_id", uuid.NewString()))
		start := time.Now()

		var out Out
		err := engine.TrackOperation(ctx, tool, func(ctx context.Context) error {
			var err error
			out, err = fn(ctx, in)
			return err
		})
		if err != nil {
			kind := engine.KindOf(err)
			log.Warn("tool failed", slog.String("kind", string(kind)), slog.Any("error", err))
			var zero Out
			if kind != "" {
				return nil, zero, fmt.Errorf("%s: %w", kind, err)
			}
			return nil, zero, err
		}
		log.Debug("tool done", slog.Duration("elapsed", time.Since(start)))
		return nil, out, nil
	}
}
