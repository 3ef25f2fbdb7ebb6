package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// intPages is a parser over fake responses of the form {"n": count, "next": token}.
func intPages(resp map[string]any, _ sessionContext) ([]int, string) {
	n, _ := resp["n"].(int)
	next, _ := resp["next"].(string)
	items := make([]int, n)
	return items, next
}

func TestWalkContinuationsPageCap(t *testing.T) {
	calls := 0
	w := walker{
		browse: func(context.Context, sessionContext, string) (map[string]any, error) {
			calls++
			return map[string]any{"n": 0, "next": "again"}, nil
		},
		maxPages: maxBrowsePages,
	}
	got := walkContinuations(context.Background(), w, continuationState[int]{Token: "t0"}, 1000, intPages)
	assert.Empty(t, got)
	assert.Equal(t, 50, calls, "a token that never ends stops after 50 requests")
}

func TestWalkContinuationsStopsAtLimit(t *testing.T) {
	calls := 0
	w := walker{
		browse: func(context.Context, sessionContext, string) (map[string]any, error) {
			calls++
			return map[string]any{"n": 30, "next": "more"}, nil
		},
		maxPages: maxBrowsePages,
	}
	got := walkContinuations(context.Background(), w, continuationState[int]{Items: make([]int, 30), Token: "t0"}, 100, intPages)
	assert.Len(t, got, 100, "capped to the limit")
	assert.Equal(t, 3, calls)
}

func TestWalkContinuationsNoTokenNoRequest(t *testing.T) {
	w := walker{
		browse: func(context.Context, sessionContext, string) (map[string]any, error) {
			t.Fatal("no request expected")
			return nil, nil
		},
		maxPages: maxBrowsePages,
	}
	got := walkContinuations(context.Background(), w, continuationState[int]{Items: []int{1, 2}}, 10, intPages)
	assert.Equal(t, []int{1, 2}, got)
}

func TestWalkContinuationsErrorKeepsPartial(t *testing.T) {
	calls := 0
	w := walker{
		browse: func(context.Context, sessionContext, string) (map[string]any, error) {
			calls++
			if calls == 3 {
				return nil, engine.NewError(engine.KindNetwork, "boom")
			}
			return map[string]any{"n": 5, "next": "more"}, nil
		},
		maxPages: maxBrowsePages,
	}
	got := walkContinuations(context.Background(), w, continuationState[int]{Items: make([]int, 5), Token: "t0"}, 100, intPages)
	assert.Len(t, got, 15)
	assert.Equal(t, 3, calls)
}

func TestWalkContinuationsPausesOnlyBetweenRequests(t *testing.T) {
	w := walker{
		browse: func(context.Context, sessionContext, string) (map[string]any, error) {
			return map[string]any{"n": 1, "next": ""}, nil
		},
		pause:    time.Hour,
		maxPages: maxBrowsePages,
	}
	done := make(chan []int, 1)
	go func() {
		done <- walkContinuations(context.Background(), w, continuationState[int]{Token: "t0"}, 10, intPages)
	}()
	select {
	case got := <-done:
		assert.Len(t, got, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("walker paused after its final request")
	}
}

func TestWalkContinuationsSessionPropagates(t *testing.T) {
	sess := sessionContext{ChannelID: testChannelID, APIKey: "k", ClientVersion: "2.1"}
	var seen []sessionContext
	var tokens []string
	w := walker{
		browse: func(_ context.Context, s sessionContext, token string) (map[string]any, error) {
			seen = append(seen, s)
			tokens = append(tokens, token)
			next := ""
			if len(tokens) < 3 {
				next = fmt.Sprintf("t%d", len(tokens))
			}
			return map[string]any{"n": 1, "next": next}, nil
		},
		maxPages: maxBrowsePages,
	}
	walkContinuations(context.Background(), w, continuationState[int]{Token: "t0", Session: sess}, 10, intPages)
	assert.Equal(t, []string{"t0", "t1", "t2"}, tokens, "each response replaces the token")
	for _, s := range seen {
		assert.Equal(t, sess, s)
	}
}

func TestChannelVideosBrowseOverHTTP(t *testing.T) {
	var posts atomic.Int32
	var gotKey, gotVersion string
	mux := http.NewServeMux()
	mux.HandleFunc("/channel/"+testChannelID+"/videos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ytPage("", channelTabData(30, "tok-1"), nil))
	})
	mux.HandleFunc(ytBrowsePath, func(w http.ResponseWriter, r *http.Request) {
		n := posts.Add(1)
		gotKey = r.URL.Query().Get("key")
		var req browseReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotVersion = req.Context.Client.ClientVersion
		if req.Continuation != fmt.Sprintf("tok-%d", n) {
			http.Error(w, "bad token", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(browsePage(int(n)*30, 30, fmt.Sprintf("tok-%d", n+1)))
	})

	c := newTestClient(t, mux)
	videos, err := c.GetChannelVideos(context.Background(), testChannelID, ChannelVideosOptions{Limit: 75})
	require.NoError(t, err)
	require.Len(t, videos, 75)
	assert.Equal(t, int32(2), posts.Load())
	assert.Equal(t, testAPIKey, gotKey)
	assert.Equal(t, "2.20250101.01.00", gotVersion)
	assert.Equal(t, "vid00000074", videos[74].VideoID)
	assert.Equal(t, testChannelID, videos[40].ChannelID, "session fills channel fields")
	assert.Equal(t, "Test Channel", videos[40].ChannelTitle)
}

func TestChannelVideosBrowseErrorReturnsPartial(t *testing.T) {
	var posts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/channel/"+testChannelID+"/videos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ytPage("", channelTabData(30, "tok-1"), nil))
	})
	mux.HandleFunc(ytBrowsePath, func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := newTestClient(t, mux)
	videos, err := c.GetChannelVideos(context.Background(), testChannelID, ChannelVideosOptions{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, videos, 30)
	assert.Equal(t, int32(1), posts.Load(), "browse is never retried")
}

func TestParseVideoContinuationShapes(t *testing.T) {
	t.Run("append action", func(t *testing.T) {
		v, tok := parseVideoContinuation(browsePage(0, 3, "next"), sessionContext{})
		assert.Len(t, v, 3)
		assert.Equal(t, "next", tok)
	})
	t.Run("reload command", func(t *testing.T) {
		resp := m{"onResponseReceivedEndpoints": []any{
			m{"reloadContinuationItemsCommand": m{"continuationItems": []any{gridVideo(1), continuationItem("r")}}},
		}}
		v, tok := parseVideoContinuation(resp, sessionContext{})
		assert.Len(t, v, 1)
		assert.Equal(t, "r", tok)
	})
	t.Run("legacy grid", func(t *testing.T) {
		resp := m{"continuationContents": m{"gridContinuation": m{
			"items":         []any{m{"gridVideoRenderer": m{"videoId": "abcdefghijk"}}},
			"continuations": []any{m{"nextContinuationData": m{"continuation": "g"}}},
		}}}
		v, tok := parseVideoContinuation(resp, sessionContext{})
		assert.Len(t, v, 1)
		assert.Equal(t, "g", tok)
	})
	t.Run("last page", func(t *testing.T) {
		_, tok := parseVideoContinuation(browsePage(0, 2, ""), sessionContext{})
		assert.Empty(t, tok)
	})
}
