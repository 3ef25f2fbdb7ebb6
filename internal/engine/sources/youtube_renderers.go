package sources

import (
	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// rendererPaths locate a video renderer inside one list item, across the
// channel grid, legacy grid, search, shorts shelf and playlist surfaces.
var rendererPaths = [][]any{
	{"richItemRenderer", "content", "videoRenderer"},
	{"gridVideoRenderer"},
	{"videoRenderer"},
	{"richItemRenderer", "content", "reelItemRenderer"},
	{"reelItemRenderer"},
	{"richItemRenderer", "content", "shortsLockupViewModel"},
	{"shortsLockupViewModel"},
	{"playlistVideoRenderer"},
}

// Per-field fallback chains over a single renderer object.
var (
	rendererVideoID = chain{
		at("videoId"),
		at("onTap", "innertubeCommand", "reelWatchEndpoint", "videoId"),
		at("navigationEndpoint", "watchEndpoint", "videoId"),
	}
	rendererTitle = chain{
		at("title"),
		at("headline"),
		at("overlayMetadata", "primaryText"),
		at("accessibilityText"),
	}
	rendererDescription = chain{
		at("descriptionSnippet"),
		anyItem([]any{"detailedMetadataSnippets"}, at("snippetText")),
	}
	rendererPublished = chain{
		at("publishedTimeText"),
		anyItem([]any{"videoInfo", "runs"}, containing("ago", at("text"))),
	}
	rendererDuration = chain{
		at("lengthText"),
		anyItem([]any{"thumbnailOverlays"}, at("thumbnailOverlayTimeStatusRenderer", "text")),
	}
	rendererViews = chain{
		at("viewCountText"),
		at("shortViewCountText"),
		at("overlayMetadata", "secondaryText"),
		anyItem([]any{"videoInfo", "runs"}, containing("view", at("text"))),
	}
	rendererChannelID = chain{
		at("ownerText", "runs", 0, "navigationEndpoint", "browseEndpoint", "browseId"),
		at("longBylineText", "runs", 0, "navigationEndpoint", "browseEndpoint", "browseId"),
		at("shortBylineText", "runs", 0, "navigationEndpoint", "browseEndpoint", "browseId"),
		at("channelThumbnailSupportedRenderers", "channelThumbnailWithLinkRenderer", "navigationEndpoint", "browseEndpoint", "browseId"),
	}
	rendererChannelTitle = chain{
		at("ownerText", "runs", 0, "text"),
		at("longBylineText", "runs", 0, "text"),
		at("shortBylineText", "runs", 0, "text"),
	}
	rendererLive = chain{
		anyItem([]any{"badges"}, containing("live", at("metadataBadgeRenderer", "label"))),
		anyItem([]any{"thumbnailOverlays"}, containing("live", at("thumbnailOverlayTimeStatusRenderer", "style"))),
	}
	rendererUpcoming = chain{
		at("upcomingEventData", "startTime"),
	}
)

// videoFromItem converts one list item into a Video. ok is false when the
// item holds no recognizable renderer or no video id.
func videoFromItem(item any) (engine.Video, bool) {
	for _, p := range rendererPaths {
		if r := obj(item, p...); r != nil {
			return videoFromRenderer(r)
		}
	}
	return engine.Video{}, false
}

func videoFromRenderer(r map[string]any) (engine.Video, bool) {
	id := rendererVideoID.first(r)
	if id == "" {
		return engine.Video{}, false
	}
	v := engine.Video{
		VideoID:      id,
		Title:        engine.DecodeEntities(rendererTitle.first(r)),
		Description:  engine.DecodeEntities(rendererDescription.first(r)),
		PublishedAt:  rendererPublished.first(r),
		ChannelID:    rendererChannelID.first(r),
		ChannelTitle: rendererChannelTitle.first(r),
		Thumbnails:   videoThumbnails(id),
		URL:          watchURL(engine.DefaultBaseURL, id),
		IsLive:       rendererLive.first(r) != "",
		IsUpcoming:   rendererUpcoming.first(r) != "",
	}
	if d := rendererDuration.first(r); d != "" {
		v.Duration = d
		if sec, ok := engine.ParseDuration(d); ok {
			v.DurationSeconds = engine.IntPtr(sec)
		}
	}
	if views := rendererViews.first(r); views != "" {
		if n, ok := engine.ParseCount(views); ok {
			v.ViewCount = engine.Int64Ptr(n)
		}
	}
	return v, true
}

// videoThumbnails derives the standard i.ytimg.com renditions from an id.
func videoThumbnails(id string) *engine.Thumbnails {
	base := "https://i.ytimg.com/vi/" + id + "/"
	return &engine.Thumbnails{
		Default: base + "default.jpg",
		Medium:  base + "mqdefault.jpg",
		High:    base + "hqdefault.jpg",
		Maxres:  base + "maxresdefault.jpg",
	}
}

// continuationToken returns the token of a continuationItemRenderer item,
// or "" when the item is not a continuation marker.
func continuationToken(item any) string {
	return chain{
		at("continuationItemRenderer", "continuationEndpoint", "continuationCommand", "token"),
		at("continuationItemRenderer", "button", "buttonRenderer", "command", "continuationCommand", "token"),
	}.first(item)
}

// collectItems splits a list of grid/section items into videos and the
// trailing continuation token. sess fills channel fields that renderers on
// channel pages omit.
func collectItems(items []any, sess sessionContext) ([]engine.Video, string) {
	var videos []engine.Video
	token := ""
	for _, it := range items {
		if t := continuationToken(it); t != "" {
			token = t
			continue
		}
		v, ok := videoFromItem(it)
		if !ok {
			continue
		}
		if v.ChannelID == "" {
			v.ChannelID = sess.ChannelID
		}
		if v.ChannelTitle == "" {
			v.ChannelTitle = sess.ChannelTitle
		}
		videos = append(videos, v)
	}
	return videos, token
}
