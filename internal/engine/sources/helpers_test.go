package sources

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

const (
	testChannelID = "UCabcdefghijklmnopqrstuv"
	testVideoID   = "J6OnBDmErUg"
	testAPIKey    = "AIzaTestKey_123"
)

// newTestClient serves h on a local server and points a Client at it with
// instant retries and no pause between continuation pages.
func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	f := engine.NewFetcher(srv.Client(), engine.NewCache(),
		engine.WithRetryPolicy(engine.RetryPolicy{Retries: 1, Delay: time.Millisecond}))
	return NewClient(f, append([]Option{WithBaseURL(srv.URL), WithBrowsePause(0)}, opts...)...)
}

// ytPage renders an HTML page carrying ytcfg and the given bootstrap blobs.
// A nil blob is omitted.
func ytPage(head string, initialData, playerResponse any) string {
	page := "<html><head>" + head + "</head><body><script>ytcfg.set({\"INNERTUBE_API_KEY\":\"" + testAPIKey +
		"\",\"INNERTUBE_CLIENT_VERSION\":\"2.20250101.01.00\"});</script>"
	if playerResponse != nil {
		page += "<script>var ytInitialPlayerResponse = " + mustJSON(playerResponse) + ";</script>"
	}
	if initialData != nil {
		page += "<script>var ytInitialData = " + mustJSON(initialData) + ";</script>"
	}
	return page + "</body></html>"
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

type m = map[string]any

// gridVideo is a channel-tab item.
func gridVideo(i int) m {
	return m{"richItemRenderer": m{"content": m{"videoRenderer": m{
		"videoId":           fmt.Sprintf("vid%08d", i),
		"title":             m{"runs": []any{m{"text": fmt.Sprintf("Video %d", i)}}},
		"publishedTimeText": m{"simpleText": "2 days ago"},
		"lengthText":        m{"simpleText": "4:05"},
		"viewCountText":     m{"simpleText": "1,234 views"},
	}}}}
}

func continuationItem(token string) m {
	return m{"continuationItemRenderer": m{"continuationEndpoint": m{
		"continuationCommand": m{"token": token},
	}}}
}

// channelTabData builds ytInitialData for a channel videos tab holding n
// videos and, when token is set, a trailing continuation.
func channelTabData(n int, token string) m {
	items := make([]any, 0, n+1)
	for i := 0; i < n; i++ {
		items = append(items, gridVideo(i))
	}
	if token != "" {
		items = append(items, continuationItem(token))
	}
	return m{
		"metadata": m{"channelMetadataRenderer": m{
			"externalId": testChannelID,
			"title":      "Test Channel",
		}},
		"contents": m{"twoColumnBrowseResultsRenderer": m{"tabs": []any{
			m{"tabRenderer": m{"title": "Home"}},
			m{"tabRenderer": m{"selected": true, "content": m{"richGridRenderer": m{"contents": items}}}},
		}}},
	}
}

// browsePage is a continuation response with videos numbered from start.
func browsePage(start, n int, token string) m {
	items := make([]any, 0, n+1)
	for i := start; i < start+n; i++ {
		items = append(items, gridVideo(i))
	}
	if token != "" {
		items = append(items, continuationItem(token))
	}
	return m{"onResponseReceivedActions": []any{
		m{"appendContinuationItemsAction": m{"continuationItems": items}},
	}}
}
