package ytserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/engine"
	"github.com/anatolykoptev/go_youtube/internal/engine/sources"
	"github.com/anatolykoptev/go_youtube/internal/toolutil"
)

func registerChannelTools(server *mcp.Server, yt *sources.Client) int {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_youtube_channel_videos",
		Description: "List videos of a YouTube channel. Accepts a channel ID, @handle, custom name or channel URL. Small newest-first requests use the channel feed; larger or sorted requests page through the channel tab. Supports videos, shorts and streams.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, handler("get_youtube_channel_videos", func(ctx context.Context, in engine.ChannelVideosInput) (engine.ChannelVideosOutput, error) {
		videos, err := yt.GetChannelVideos(ctx, in.Channel, sources.ChannelVideosOptions{
			Limit:       toolutil.ClampLimit(in.Limit, defaultChannelVideos, maxChannelVideos),
			SortBy:      in.SortBy,
			ContentType: in.ContentType,
		})
		if err != nil {
			return engine.ChannelVideosOutput{}, err
		}
		return engine.ChannelVideosOutput{Channel: in.Channel, Count: len(videos), Videos: videos}, nil
	}))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_youtube_channel_info",
		Description: "Get metadata for a YouTube channel: ID, title, description, handle, subscriber and video counts, avatar, keywords.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, handler("get_youtube_channel_info", func(ctx context.Context, in engine.ChannelInfoInput) (*engine.Channel, error) {
		return yt.GetChannelInfo(ctx, in.Channel)
	}))
	return 2
}
