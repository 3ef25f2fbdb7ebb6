package ytserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/engine"
	"github.com/anatolykoptev/go_youtube/internal/engine/sources"
	"github.com/anatolykoptev/go_youtube/internal/toolutil"
)

func registerVideoTools(server *mcp.Server, yt *sources.Client) int {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_youtube_video_info",
		Description: "Get metadata for a YouTube video: title, description, publish date, duration, view/like/comment counts, channel, tags, category and chapters. With basic=true only title, channel and thumbnail are fetched through oEmbed.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, handler("get_youtube_video_info", func(ctx context.Context, in engine.VideoInfoInput) (*engine.Video, error) {
		if in.Basic {
			return yt.GetBasicVideoInfo(ctx, in.VideoID)
		}
		return yt.GetVideoInfo(ctx, in.VideoID)
	}))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_youtube_videos",
		Description: "Search YouTube videos. Returns the first page of results (title, channel, duration, views, publish time, URL) sorted by relevance, date, viewCount or rating.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, handler("search_youtube_videos", func(ctx context.Context, in engine.SearchInput) (engine.SearchOutput, error) {
		query := strings.TrimSpace(in.Query)
		videos, err := yt.SearchVideos(ctx, query, sources.SearchOptions{
			Limit:  toolutil.ClampLimit(in.Limit, defaultSearchResults, maxSearchResults),
			SortBy: in.SortBy,
		})
		if err != nil {
			return engine.SearchOutput{}, err
		}
		return engine.SearchOutput{Query: query, Count: len(videos), Videos: videos}, nil
	}))
	return 2
}
