package sources

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// Search result ordering. Each sp value also restricts results to videos.
var searchSortParams = map[string]string{
	"relevance": "EgIQAQ==",
	"date":      "CAISAhAB",
	"viewCount": "CAMSAhAB",
	"rating":    "CAESAhAB",
}

const defaultSearchLimit = 10

// SearchOptions controls SearchVideos.
type SearchOptions struct {
	Limit  int    // 0 means defaultSearchLimit
	SortBy string // relevance (default), date, viewCount, rating
}

func (o SearchOptions) normalize() (SearchOptions, error) {
	if o.Limit <= 0 {
		o.Limit = defaultSearchLimit
	}
	if o.SortBy == "" {
		o.SortBy = "relevance"
	}
	if _, ok := searchSortParams[o.SortBy]; !ok {
		return o, engine.NewError(engine.KindInvalidInput, "unknown search sort %q", o.SortBy)
	}
	return o, nil
}

var searchSectionPath = []any{
	"contents", "twoColumnSearchResultsRenderer", "primaryContents",
	"sectionListRenderer", "contents",
}

// SearchVideos scrapes one results page for query. Search does not
// paginate: at most the first page's videos are returned, capped at
// opts.Limit. A results page without bootstrap data yields an empty list.
func (c *Client) SearchVideos(ctx context.Context, query string, opts SearchOptions) ([]engine.Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, engine.NewError(engine.KindInvalidInput, "search query is empty")
	}
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	engine.IncrSearchRequests()

	q := url.Values{"search_query": {query}, "sp": {searchSortParams[opts.SortBy]}}
	page, err := c.fetch.FetchText(ctx, c.base+"/results?"+q.Encode())
	if err != nil {
		return nil, err
	}

	root, err := extractInitialData(page)
	if err != nil {
		if errors.Is(err, errNoBootstrapData) {
			slog.Debug("youtube: search page without initial data", slog.String("query", query))
			return []engine.Video{}, nil
		}
		return nil, err
	}
	return capItems(searchResults(root), opts.Limit), nil
}

// searchResults reads video renderers from the result sections. When the
// section layout yields nothing every videoRenderer in the tree is used.
func searchResults(root map[string]any) []engine.Video {
	videos := []engine.Video{}
	for _, sec := range list(root, searchSectionPath...) {
		v, _ := collectItems(list(sec, "itemSectionRenderer", "contents"), sessionContext{})
		videos = append(videos, v...)
	}
	if len(videos) > 0 {
		return videos
	}
	for _, r := range findAll(root, "videoRenderer") {
		if v, ok := videoFromRenderer(r); ok {
			videos = append(videos, v)
		}
	}
	return videos
}
