package sources

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// videoSources bundles the two blobs of a watch page. Either may be nil.
type videoSources struct {
	player map[string]any // ytInitialPlayerResponse
	data   map[string]any // ytInitialData
}

func (s videoSources) fromPlayer(path ...any) accessor {
	return func(any) string { return textOf(dig(s.player, path...)) }
}

func (s videoSources) fromData(a accessor) accessor {
	return func(any) string { return a(s.data) }
}

var primaryInfo = []any{"contents", "twoColumnWatchNextResults", "results", "results", "contents"}

// primaryRenderer finds videoPrimaryInfoRenderer / videoSecondaryInfoRenderer
// among the watch results.
func primaryRenderer(data any, key string) any {
	for _, it := range list(data, primaryInfo...) {
		if r := dig(it, key); r != nil {
			return r
		}
	}
	return nil
}

// likeCountText tries the known like-button shapes, newest first.
func likeCountText(data any) string {
	buttons := list(primaryRenderer(data, "videoPrimaryInfoRenderer"),
		"videoActions", "menuRenderer", "topLevelButtons")
	for _, b := range buttons {
		if s := (chain{
			at("segmentedLikeDislikeButtonViewModel", "likeButtonViewModel", "likeButtonViewModel",
				"toggleButtonViewModel", "toggleButtonViewModel", "defaultButtonViewModel", "buttonViewModel", "title"),
			containing("like", at("segmentedLikeDislikeButtonViewModel", "likeButtonViewModel", "likeButtonViewModel",
				"toggleButtonViewModel", "toggleButtonViewModel", "defaultButtonViewModel", "buttonViewModel", "accessibilityText")),
			containing("like", at("segmentedLikeDislikeButtonRenderer", "likeButton", "toggleButtonRenderer",
				"defaultText", "accessibility", "accessibilityData", "label")),
			containing("like", at("toggleButtonRenderer", "defaultText", "accessibility", "accessibilityData", "label")),
			at("toggleButtonRenderer", "defaultText"),
		}).first(b); s != "" {
			if _, ok := engine.ParseCount(s); ok {
				return s
			}
		}
	}
	return ""
}

// commentCountText reads the comments entry point or section header.
func commentCountText(data any) string {
	for _, it := range list(data, primaryInfo...) {
		for _, sec := range list(it, "itemSectionRenderer", "contents") {
			if s := (chain{
				at("commentsEntryPointHeaderRenderer", "commentCount"),
				at("commentsEntryPointHeaderRenderer", "headerText"),
			}).first(sec); s != "" {
				return s
			}
		}
	}
	for _, p := range list(data, "engagementPanels") {
		r := dig(p, "engagementPanelSectionListRenderer")
		if textOf(dig(r, "panelIdentifier")) != "engagement-panel-comments-section" &&
			textOf(dig(r, "targetId")) != "engagement-panel-comments-section" {
			continue
		}
		if s := (chain{
			at("header", "engagementPanelTitleHeaderRenderer", "contextualInfo"),
		}).first(r); s != "" {
			return s
		}
	}
	return ""
}

// chaptersFrom reads chapter markers from the player overlay or from the
// macro-markers engagement panel.
func chaptersFrom(data any, lengthSec *int) []engine.Chapter {
	var chapters []engine.Chapter

	markers := list(data, "playerOverlays", "playerOverlayRenderer", "decoratedPlayerBarRenderer",
		"decoratedPlayerBarRenderer", "playerBar", "multiMarkersPlayerBarRenderer", "markersMap")
	for _, m := range markers {
		key := textOf(dig(m, "key"))
		if key != "DESCRIPTION_CHAPTERS" && key != "AUTO_CHAPTERS" {
			continue
		}
		for _, ch := range list(m, "value", "chapters") {
			r := dig(ch, "chapterRenderer")
			title := textOf(dig(r, "title"))
			ms, ok := dig(r, "timeRangeStartMillis").(float64)
			if title == "" || !ok {
				continue
			}
			chapters = append(chapters, engine.Chapter{Title: title, StartTime: int(ms / 1000)})
		}
		if len(chapters) > 0 {
			break
		}
	}

	if len(chapters) == 0 {
		for _, p := range list(data, "engagementPanels") {
			for _, it := range list(p, "engagementPanelSectionListRenderer", "content", "macroMarkersListRenderer", "contents") {
				r := dig(it, "macroMarkersListItemRenderer")
				title := textOf(dig(r, "title"))
				start, ok := engine.ParseDuration(textOf(dig(r, "timeDescription")))
				if title == "" || !ok {
					continue
				}
				chapters = append(chapters, engine.Chapter{Title: title, StartTime: start})
			}
			if len(chapters) > 0 {
				break
			}
		}
	}

	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].StartTime < chapters[j].StartTime })
	for i := range chapters {
		switch {
		case i+1 < len(chapters):
			chapters[i].EndTime = engine.IntPtr(chapters[i+1].StartTime)
		case lengthSec != nil:
			chapters[i].EndTime = engine.IntPtr(*lengthSec)
		}
	}
	return chapters
}

// GetVideoInfo fetches the watch page and merges the player response with
// the initial data. A page carrying neither blob is a parsing error; an
// ERROR playability status is not found.
func (c *Client) GetVideoInfo(ctx context.Context, video string) (*engine.Video, error) {
	id, err := ParseVideoID(video)
	if err != nil {
		return nil, err
	}
	engine.IncrVideoRequests()

	page, err := c.fetch.FetchText(ctx, watchURL(c.base, id))
	if err != nil {
		return nil, notFoundOn404(err, "video %s not found", id)
	}

	player, perr := extractPlayerResponse(page)
	data, derr := extractInitialData(page)
	if perr != nil && derr != nil {
		return nil, perr
	}
	if status := textOf(dig(player, "playabilityStatus", "status")); status == "ERROR" {
		reason := firstNonEmpty(textOf(dig(player, "playabilityStatus", "reason")), "video unavailable")
		return nil, engine.NewError(engine.KindNotFound, "video %s: %s", id, reason)
	}

	v := videoFromWatchPage(id, videoSources{player: player, data: data})
	return &v, nil
}

func videoFromWatchPage(id string, s videoSources) engine.Video {
	title := chain{
		s.fromPlayer("videoDetails", "title"),
		s.fromPlayer("microformat", "playerMicroformatRenderer", "title"),
		s.fromData(func(d any) string { return textOf(dig(primaryRenderer(d, "videoPrimaryInfoRenderer"), "title")) }),
	}
	description := chain{
		s.fromPlayer("videoDetails", "shortDescription"),
		s.fromPlayer("microformat", "playerMicroformatRenderer", "description"),
		s.fromData(func(d any) string {
			return textOf(dig(primaryRenderer(d, "videoSecondaryInfoRenderer"), "attributedDescription"))
		}),
	}
	published := chain{
		s.fromPlayer("microformat", "playerMicroformatRenderer", "publishDate"),
		s.fromPlayer("microformat", "playerMicroformatRenderer", "uploadDate"),
		s.fromData(func(d any) string { return textOf(dig(primaryRenderer(d, "videoPrimaryInfoRenderer"), "dateText")) }),
	}
	length := chain{
		s.fromPlayer("videoDetails", "lengthSeconds"),
		s.fromPlayer("microformat", "playerMicroformatRenderer", "lengthSeconds"),
	}
	views := chain{
		s.fromPlayer("videoDetails", "viewCount"),
		s.fromPlayer("microformat", "playerMicroformatRenderer", "viewCount"),
		s.fromData(func(d any) string {
			return textOf(dig(primaryRenderer(d, "videoPrimaryInfoRenderer"), "viewCount", "videoViewCountRenderer", "viewCount"))
		}),
	}
	channelID := chain{
		s.fromPlayer("videoDetails", "channelId"),
		s.fromPlayer("microformat", "playerMicroformatRenderer", "externalChannelId"),
		s.fromData(func(d any) string {
			return textOf(dig(primaryRenderer(d, "videoSecondaryInfoRenderer"),
				"owner", "videoOwnerRenderer", "navigationEndpoint", "browseEndpoint", "browseId"))
		}),
	}
	channelTitle := chain{
		s.fromPlayer("videoDetails", "author"),
		s.fromPlayer("microformat", "playerMicroformatRenderer", "ownerChannelName"),
		s.fromData(func(d any) string {
			return textOf(dig(primaryRenderer(d, "videoSecondaryInfoRenderer"), "owner", "videoOwnerRenderer", "title"))
		}),
	}

	v := engine.Video{
		VideoID:      id,
		Title:        title.first(nil),
		Description:  description.first(nil),
		PublishedAt:  published.first(nil),
		ChannelID:    channelID.first(nil),
		ChannelTitle: channelTitle.first(nil),
		Category:     textOf(dig(s.player, "microformat", "playerMicroformatRenderer", "category")),
		Thumbnails:   videoThumbnails(id),
		URL:          watchURL(engine.DefaultBaseURL, id),
	}
	if sec, err := strconv.Atoi(length.first(nil)); err == nil {
		v.DurationSeconds = engine.IntPtr(sec)
		v.Duration = engine.FormatDuration(sec)
	}
	if n, ok := engine.ParseCount(views.first(nil)); ok {
		v.ViewCount = engine.Int64Ptr(n)
	}
	if n, ok := engine.ParseCount(likeCountText(s.data)); ok {
		v.LikeCount = engine.Int64Ptr(n)
	}
	if n, ok := engine.ParseCount(commentCountText(s.data)); ok {
		v.CommentCount = engine.Int64Ptr(n)
	}
	for _, k := range list(s.player, "videoDetails", "keywords") {
		if kw, ok := k.(string); ok && kw != "" {
			v.Tags = append(v.Tags, kw)
		}
	}
	v.IsLive, _ = dig(s.player, "videoDetails", "isLive").(bool)
	v.IsUpcoming, _ = dig(s.player, "videoDetails", "isUpcoming").(bool)
	v.Chapters = chaptersFrom(s.data, v.DurationSeconds)
	return v
}

type oembedResp struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// GetBasicVideoInfo reads title, author and thumbnail from the oEmbed
// endpoint. Cheaper than GetVideoInfo but far less complete.
func (c *Client) GetBasicVideoInfo(ctx context.Context, video string) (*engine.Video, error) {
	id, err := ParseVideoID(video)
	if err != nil {
		return nil, err
	}
	engine.IncrVideoRequests()

	q := url.Values{"url": {watchURL(engine.DefaultBaseURL, id)}, "format": {"json"}}
	body, err := c.fetch.FetchText(ctx, c.base+"/oembed?"+q.Encode())
	if err != nil {
		if st := engine.StatusOf(err); st == 404 || st == 401 || st == 403 {
			return nil, engine.WrapError(engine.KindNotFound, err, "video %s not found", id)
		}
		return nil, err
	}

	var r oembedResp
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, engine.WrapError(engine.KindParsing, err, "decode oEmbed response")
	}
	v := engine.Video{
		VideoID:      id,
		Title:        r.Title,
		ChannelTitle: r.AuthorName,
		Thumbnails:   videoThumbnails(id),
		URL:          watchURL(engine.DefaultBaseURL, id),
	}
	if r.ThumbnailURL != "" {
		v.Thumbnails.High = r.ThumbnailURL
	}
	if i := strings.Index(r.AuthorURL, "/channel/"); i >= 0 {
		v.ChannelID = r.AuthorURL[i+len("/channel/"):]
	}
	return &v, nil
}
