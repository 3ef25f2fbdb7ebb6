package ytserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/engine"
	"github.com/anatolykoptev/go_youtube/internal/engine/sources"
)

func registerCacheTools(server *mcp.Server, yt *sources.Client) int {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_youtube_cache",
		Description: "Drop every cached YouTube page so the next request fetches fresh data.",
		Annotations: &mcp.ToolAnnotations{IdempotentHint: true},
	}, handler("clear_youtube_cache", func(ctx context.Context, _ engine.ClearCacheInput) (engine.ClearCacheOutput, error) {
		return engine.ClearCacheOutput{Cleared: yt.ClearCache(ctx)}, nil
	}))
	return 1
}
