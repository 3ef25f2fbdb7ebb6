package sources

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// sessionContext is carried from the first page to every continuation
// request. Later pages never re-derive it.
type sessionContext struct {
	ChannelID     string
	ChannelTitle  string
	APIKey        string
	ClientVersion string
}

// continuationState seeds a walk: items already extracted from the first
// page and the token that continues them. Each response replaces Token.
type continuationState[T any] struct {
	Items   []T
	Token   string
	Session sessionContext
}

// pageParser extracts items and the replacement token from one browse
// response. An empty token ends the walk.
type pageParser[T any] func(resp map[string]any, sess sessionContext) ([]T, string)

// browseFunc issues one continuation request.
type browseFunc func(ctx context.Context, sess sessionContext, token string) (map[string]any, error)

// walker drains a continuation-token result set, one request at a time.
type walker struct {
	browse   browseFunc
	pause    time.Duration
	maxPages int
}

func (c *Client) newWalker() walker {
	return walker{browse: c.postBrowse, pause: c.browsePause, maxPages: c.maxBrowsePages}
}

// walkContinuations keeps requesting pages while a token is present, fewer
// than limit items are collected and fewer than w.maxPages requests were
// made. A failed request ends the walk silently; whatever was collected is
// returned, capped at limit.
func walkContinuations[T any](ctx context.Context, w walker, st continuationState[T], limit int, parse pageParser[T]) []T {
	items := st.Items
	token := st.Token

	more := func(pages int) bool {
		return token != "" && len(items) < limit && pages < w.maxPages
	}

	for pages := 0; more(pages); {
		resp, err := w.browse(ctx, st.Session, token)
		pages++
		if err != nil {
			slog.Debug("youtube: continuation stopped",
				slog.Int("page", pages), slog.Int("items", len(items)), slog.Any("error", err))
			break
		}
		engine.IncrBrowsePages()

		next, nextToken := parse(resp, st.Session)
		items = append(items, next...)
		token = nextToken
		slog.Debug("youtube: continuation page",
			slog.Int("page", pages), slog.Int("new", len(next)), slog.Int("items", len(items)))

		if more(pages) && w.pause > 0 {
			t := time.NewTimer(w.pause)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return capItems(items, limit)
			}
		}
	}
	return capItems(items, limit)
}

func capItems[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// parseVideoContinuation reads appended (or reloaded) items from a browse
// response.
func parseVideoContinuation(resp map[string]any, sess sessionContext) ([]engine.Video, string) {
	var videos []engine.Video
	token := ""

	actions := list(resp, "onResponseReceivedActions")
	if actions == nil {
		actions = list(resp, "onResponseReceivedEndpoints")
	}
	for _, a := range actions {
		items := list(a, "appendContinuationItemsAction", "continuationItems")
		if items == nil {
			items = list(a, "reloadContinuationItemsCommand", "continuationItems")
		}
		v, t := collectItems(items, sess)
		videos = append(videos, v...)
		if t != "" {
			token = t
		}
	}

	// Legacy grid continuation shape.
	if cont := obj(resp, "continuationContents", "gridContinuation"); cont != nil {
		v, _ := collectItems(list(cont, "items"), sess)
		videos = append(videos, v...)
		if t := textOf(dig(cont, "continuations", 0, "nextContinuationData", "continuation")); t != "" {
			token = t
		}
	}
	return videos, token
}
