package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// Channel metadata fallback chains over ytInitialData, covering the legacy
// c4TabbedHeaderRenderer and the pageHeaderViewModel layouts.
var (
	pageHeaderVM = []any{"header", "pageHeaderRenderer", "content", "pageHeaderViewModel"}
	metadataRows = append(append([]any{}, pageHeaderVM...), "metadata", "contentMetadataViewModel", "metadataRows")

	channelIDChain = chain{
		at("metadata", "channelMetadataRenderer", "externalId"),
		at("header", "c4TabbedHeaderRenderer", "channelId"),
		at("responseContext", "serviceTrackingParams", 0, "params", 0, "browseId"),
	}
	channelTitleChain = chain{
		at("metadata", "channelMetadataRenderer", "title"),
		at("header", "c4TabbedHeaderRenderer", "title"),
		at("header", "pageHeaderRenderer", "pageTitle"),
		under(pageHeaderVM, at("title", "dynamicTextViewModel", "text")),
		at("microformat", "microformatDataRenderer", "title"),
	}
	channelDescriptionChain = chain{
		at("metadata", "channelMetadataRenderer", "description"),
		at("microformat", "microformatDataRenderer", "description"),
	}
	channelVanityChain = chain{
		at("metadata", "channelMetadataRenderer", "vanityChannelUrl"),
		at("header", "c4TabbedHeaderRenderer", "channelHandleText"),
		anyItem(metadataRows, anyItem([]any{"metadataParts"}, containing("@", at("text")))),
	}
	channelSubscribersChain = chain{
		at("header", "c4TabbedHeaderRenderer", "subscriberCountText"),
		anyItem(metadataRows, anyItem([]any{"metadataParts"}, containing("subscriber", at("text")))),
	}
	channelVideoCountChain = chain{
		at("header", "c4TabbedHeaderRenderer", "videosCountText"),
		anyItem(metadataRows, anyItem([]any{"metadataParts"}, containing("video", at("text")))),
	}
	channelAvatarChain = chain{
		at("metadata", "channelMetadataRenderer", "avatar", "thumbnails", 0, "url"),
		at("header", "c4TabbedHeaderRenderer", "avatar", "thumbnails", 0, "url"),
		under(pageHeaderVM, at("image", "decoratedAvatarViewModel", "avatar", "avatarViewModel", "image", "sources", 0, "url")),
		at("microformat", "microformatDataRenderer", "thumbnail", "thumbnails", 0, "url"),
	}
	// Thumbnail lists run smallest to largest.
	channelAvatarHighChain = chain{
		lastItem([]any{"metadata", "channelMetadataRenderer", "avatar", "thumbnails"}, at("url")),
		lastItem([]any{"header", "c4TabbedHeaderRenderer", "avatar", "thumbnails"}, at("url")),
		under(pageHeaderVM, lastItem([]any{"image", "decoratedAvatarViewModel", "avatar", "avatarViewModel", "image", "sources"}, at("url"))),
		lastItem([]any{"microformat", "microformatDataRenderer", "thumbnail", "thumbnails"}, at("url")),
	}
	channelKeywordsChain = chain{
		at("metadata", "channelMetadataRenderer", "keywords"),
	}
)

// tabItemPaths locate the item list inside a channel tab's content.
var tabItemPaths = [][]any{
	{"richGridRenderer", "contents"},
	{"sectionListRenderer", "contents", 0, "itemSectionRenderer", "contents", 0, "gridRenderer", "items"},
	{"sectionListRenderer", "contents", 0, "itemSectionRenderer", "contents", 0, "shelfRenderer", "content", "gridRenderer", "items"},
	{"sectionListRenderer", "contents", 0, "itemSectionRenderer", "contents"},
}

// GetChannelInfo fetches a channel page and extracts its metadata. A page
// without ytInitialData is a parsing error; a page without a channel id is
// not found. The og:* meta tags back up title, description and avatar.
func (c *Client) GetChannelInfo(ctx context.Context, channel string) (*engine.Channel, error) {
	ref, err := ParseChannel(channel)
	if err != nil {
		return nil, err
	}
	engine.IncrChannelRequests()

	page, err := c.fetch.FetchText(ctx, ref.pageURL(c.base))
	if err != nil {
		return nil, notFoundOn404(err, "channel %q not found", channel)
	}
	root, err := extractInitialData(page)
	if err != nil {
		return nil, err
	}

	ch := channelFromPage(root, page)
	if ch.ChannelID == "" {
		return nil, engine.NewError(engine.KindNotFound, "channel %q not found", channel)
	}
	return &ch, nil
}

func channelFromPage(root map[string]any, page string) engine.Channel {
	meta := parseHeadMeta(page)

	ch := engine.Channel{
		ChannelID:   channelIDFromPage(root, page, meta),
		Title:       firstNonEmpty(channelTitleChain.first(root), meta.get("og:title", "title"), meta.title),
		Description: firstNonEmpty(channelDescriptionChain.first(root), meta.get("og:description", "description")),
		Keywords:    channelKeywordsChain.first(root),
	}
	if ch.ChannelID != "" {
		ch.URL = engine.DefaultBaseURL + "/channel/" + ch.ChannelID
	}
	if vanity := channelVanityChain.first(root); vanity != "" {
		ch.CustomURL = vanity[strings.LastIndex(vanity, "/")+1:]
	}
	if s := channelSubscribersChain.first(root); s != "" {
		if n, ok := engine.ParseCount(s); ok {
			ch.SubscriberCount = engine.Int64Ptr(n)
		}
	}
	if s := channelVideoCountChain.first(root); s != "" {
		if n, ok := engine.ParseCount(s); ok {
			ch.VideoCount = engine.Int64Ptr(n)
		}
	}
	if avatar := firstNonEmpty(channelAvatarChain.first(root), meta.get("og:image")); avatar != "" {
		ch.Thumbnails = &engine.Thumbnails{
			Default: avatar,
			High:    firstNonEmpty(channelAvatarHighChain.first(root), avatar),
		}
	}
	return ch
}

// channelIDFromPage tries the JSON chain, then <head> metadata, then any
// channel id literal in the raw page.
func channelIDFromPage(root map[string]any, page string, meta pageMeta) string {
	if id := channelIDChain.first(root); channelIDRe.MatchString(id) {
		return id
	}
	if id := meta.get("identifier", "channelId"); channelIDRe.MatchString(id) {
		return id
	}
	if i := strings.Index(meta.canonical, "/channel/"); i >= 0 {
		if id := meta.canonical[i+len("/channel/"):]; channelIDRe.MatchString(id) {
			return id
		}
	}
	if m := pageChannelIDRe.FindStringSubmatch(page); m != nil {
		return m[1]
	}
	return ""
}

// ChannelVideosOptions selects which channel uploads to list.
type ChannelVideosOptions struct {
	Limit       int    // default 15
	SortBy      string // newest (default), popular, oldest
	ContentType string // videos (default), shorts, streams
}

func (o ChannelVideosOptions) normalize() (ChannelVideosOptions, error) {
	if o.Limit <= 0 {
		o.Limit = feedMaxItems
	}
	o.SortBy = strings.ToLower(strings.TrimSpace(o.SortBy))
	if o.SortBy == "" {
		o.SortBy = "newest"
	}
	o.ContentType = strings.ToLower(strings.TrimSpace(o.ContentType))
	if o.ContentType == "" {
		o.ContentType = "videos"
	}
	switch o.SortBy {
	case "newest", "popular", "oldest":
	default:
		return o, engine.NewError(engine.KindInvalidInput, "unknown sort %q: use newest, popular or oldest", o.SortBy)
	}
	switch o.ContentType {
	case "videos", "shorts", "streams":
	default:
		return o, engine.NewError(engine.KindInvalidInput, "unknown content type %q: use videos, shorts or streams", o.ContentType)
	}
	return o, nil
}

// feedEligible reports whether the channel feed can answer the request.
func (o ChannelVideosOptions) feedEligible() bool {
	return o.Limit <= feedMaxItems && o.SortBy == "newest" && o.ContentType == "videos"
}

// GetChannelVideos lists a channel's uploads. Small newest-first video
// requests read the channel feed; any feed failure, and every other request,
// scrapes the channel tab and pages through continuations.
func (c *Client) GetChannelVideos(ctx context.Context, channel string, opts ChannelVideosOptions) ([]engine.Video, error) {
	ref, err := ParseChannel(channel)
	if err != nil {
		return nil, err
	}
	opts, err = opts.normalize()
	if err != nil {
		return nil, err
	}
	engine.IncrChannelRequests()

	scrape := strategy[[]engine.Video]{name: "scrape", run: func(ctx context.Context) ([]engine.Video, error) {
		return c.channelVideosFromPage(ctx, ref, opts)
	}}
	if !opts.feedEligible() {
		return scrape.run(ctx)
	}
	feed := strategy[[]engine.Video]{name: "feed", run: func(ctx context.Context) ([]engine.Video, error) {
		return c.channelVideosFromFeed(ctx, ref, opts.Limit)
	}}
	return withFallback(ctx, feed, scrape)
}

// strategy is one way of producing a result.
type strategy[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// withFallback runs primary and, on any error other than caller
// cancellation, runs secondary instead. The primary error is only logged.
func withFallback[T any](ctx context.Context, primary, secondary strategy[T]) (T, error) {
	out, err := primary.run(ctx)
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, engine.WrapError(engine.KindNetwork, ctxErr, "%s cancelled", primary.name)
	}
	engine.IncrFeedFallbacks()
	slog.Debug("youtube: falling back",
		slog.String("from", primary.name), slog.String("to", secondary.name), slog.Any("error", err))
	return secondary.run(ctx)
}

// channelVideosFromFeed resolves the canonical channel id and reads the
// Atom feed.
func (c *Client) channelVideosFromFeed(ctx context.Context, ref ChannelRef, limit int) ([]engine.Video, error) {
	id, err := c.resolveChannelID(ctx, ref)
	if err != nil {
		return nil, err
	}
	body, err := c.fetch.FetchText(ctx, c.base+"/feeds/videos.xml?channel_id="+url.QueryEscape(id))
	if err != nil {
		return nil, fmt.Errorf("channel feed: %w", err)
	}
	videos, err := parseFeed(body)
	if err != nil {
		return nil, err
	}
	return capItems(videos, limit), nil
}

// resolveChannelID returns ref's UC… id, fetching the channel page when ref
// is a handle, custom name or URL.
func (c *Client) resolveChannelID(ctx context.Context, ref ChannelRef) (string, error) {
	if ref.Kind == ChannelByID {
		return ref.Value, nil
	}
	page, err := c.fetch.FetchText(ctx, ref.pageURL(c.base))
	if err != nil {
		return "", notFoundOn404(err, "channel %q not found", ref.Value)
	}
	root, _ := extractInitialData(page)
	if id := channelIDFromPage(root, page, parseHeadMeta(page)); id != "" {
		return id, nil
	}
	return "", engine.NewError(engine.KindNotFound, "could not resolve channel id for %q", ref.Value)
}

// channelTabURL builds the tab URL for a content type and sort order.
func channelTabURL(base string, ref ChannelRef, opts ChannelVideosOptions) string {
	u := ref.pageURL(base) + "/" + opts.ContentType
	switch opts.SortBy {
	case "popular":
		u += "?sort=p"
	case "oldest":
		u += "?sort=da"
	}
	return u
}

// channelVideosFromPage scrapes the first tab page and walks continuations
// until opts.Limit items are collected. A page without ytInitialData yields
// an empty list.
func (c *Client) channelVideosFromPage(ctx context.Context, ref ChannelRef, opts ChannelVideosOptions) ([]engine.Video, error) {
	page, err := c.fetch.FetchText(ctx, channelTabURL(c.base, ref, opts))
	if err != nil {
		return nil, notFoundOn404(err, "channel %q not found", ref.Value)
	}

	st, ok := channelFirstPage(page)
	if !ok {
		return []engine.Video{}, nil
	}
	videos := walkContinuations(ctx, c.newWalker(), st, opts.Limit, parseVideoContinuation)
	if videos == nil {
		videos = []engine.Video{}
	}
	return videos, nil
}

// channelFirstPage extracts the first page of tab items and the session
// context for continuing it. ok is false when the page has no
// ytInitialData.
func channelFirstPage(page string) (continuationState[engine.Video], bool) {
	root, err := extractInitialData(page)
	if err != nil {
		return continuationState[engine.Video]{}, false
	}
	sess := sessionContext{
		ChannelID:     channelIDFromPage(root, page, pageMeta{}),
		ChannelTitle:  channelTitleChain.first(root),
		APIKey:        extractAPIKey(page),
		ClientVersion: extractClientVersion(page),
	}
	items, token := collectItems(channelTabItems(root), sess)
	return continuationState[engine.Video]{Items: items, Token: token, Session: sess}, true
}

// channelTabItems returns the item list of the selected tab, falling back
// to the first tab that has content.
func channelTabItems(root map[string]any) []any {
	tabs := list(root, "contents", "twoColumnBrowseResultsRenderer", "tabs")
	ordered := make([]any, 0, len(tabs))
	for _, t := range tabs {
		if sel, _ := dig(t, "tabRenderer", "selected").(bool); sel {
			ordered = append([]any{t}, ordered...)
		} else {
			ordered = append(ordered, t)
		}
	}
	for _, t := range ordered {
		content := obj(t, "tabRenderer", "content")
		if content == nil {
			continue
		}
		for _, p := range tabItemPaths {
			if items := list(content, p...); len(items) > 0 {
				return items
			}
		}
	}
	return nil
}

// notFoundOn404 converts an upstream 404 into a not-found error.
func notFoundOn404(err error, format string, args ...any) error {
	if engine.StatusOf(err) == 404 {
		return engine.WrapError(engine.KindNotFound, err, format, args...)
	}
	return err
}
