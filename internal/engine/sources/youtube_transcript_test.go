package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

const captionBody = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
	`<text start="0.24" dur="4.559">Hi</text>` +
	`<text start="4.8" dur="2.1">welcome back</text>` +
	`</transcript>`

// transcriptServer fakes the watch page, the player endpoint and the
// caption endpoint. player receives the server origin so caption base URLs
// point back at it.
type transcriptServer struct {
	watchPage   string
	player      func(host string) m
	playerPosts atomic.Int32

	mu          sync.Mutex
	captionURLs []string
}

func (s *transcriptServer) captions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.captionURLs...)
}

func (s *transcriptServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, s.watchPage)
	})
	mux.HandleFunc(ytPlayerPath, func(w http.ResponseWriter, r *http.Request) {
		s.playerPosts.Add(1)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("key"))
		var req playerReq
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ANDROID", req.Context.Client.ClientName)
		_ = json.NewEncoder(w).Encode(s.player("http://" + r.Host))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.captionURLs = append(s.captionURLs, r.URL.RawQuery)
		s.mu.Unlock()
		fmt.Fprint(w, captionBody)
	})
	return mux
}

func playerWithTracks(tracks ...m) func(string) m {
	return func(host string) m {
		raw := make([]any, 0, len(tracks))
		for _, tr := range tracks {
			cp := m{}
			for k, v := range tr {
				cp[k] = v
			}
			cp["baseUrl"] = host + "/api/timedtext?v=" + testVideoID + "&lang=" + tr["languageCode"].(string) + "&fmt=srv3"
			raw = append(raw, cp)
		}
		return m{
			"playabilityStatus": m{"status": "OK"},
			"captions":          m{"playerCaptionsTracklistRenderer": m{"captionTracks": raw}},
		}
	}
}

func TestGetTranscript(t *testing.T) {
	s := &transcriptServer{
		watchPage: ytPage("", nil, nil),
		player: playerWithTracks(
			m{"languageCode": "en-US", "kind": "asr", "name": m{"simpleText": "English (auto)"}},
			m{"languageCode": "en", "name": m{"simpleText": "English"}},
		),
	}
	c := newTestClient(t, s.handler(t))

	track, segs, err := c.GetTranscript(context.Background(), testVideoID, TranscriptOptions{})
	require.NoError(t, err)
	assert.Equal(t, "en", track.LanguageCode, "manual track preferred")
	assert.False(t, track.IsGenerated)
	require.Len(t, segs, 2)
	assert.Equal(t, engine.TranscriptSegment{Start: 0.24, Duration: 4.559, Text: "Hi"}, segs[0])

	urls := s.captions()
	require.Len(t, urls, 1)
	assert.Equal(t, "v="+testVideoID+"&lang=en", urls[0], "fmt override stripped")
	assert.Equal(t, int32(1), s.playerPosts.Load())
}

func TestGetTranscriptPreferGenerated(t *testing.T) {
	s := &transcriptServer{
		watchPage: ytPage("", nil, nil),
		player: playerWithTracks(
			m{"languageCode": "en"},
			m{"languageCode": "en-US", "kind": "asr"},
		),
	}
	c := newTestClient(t, s.handler(t))

	track, _, err := c.GetTranscript(context.Background(), testVideoID,
		TranscriptOptions{Languages: []string{"en"}, PreferGenerated: true})
	require.NoError(t, err)
	assert.Equal(t, "en-US", track.LanguageCode)
}

func TestGetTranscriptText(t *testing.T) {
	s := &transcriptServer{watchPage: ytPage("", nil, nil), player: playerWithTracks(m{"languageCode": "en"})}
	c := newTestClient(t, s.handler(t))

	text, err := c.GetTranscriptText(context.Background(), testVideoID, TranscriptOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Hi\nwelcome back", text)
}

func TestListTranscripts(t *testing.T) {
	s := &transcriptServer{
		watchPage: ytPage("", nil, nil),
		player:    playerWithTracks(m{"languageCode": "de", "isTranslatable": true}, m{"languageCode": "en", "kind": "asr"}),
	}
	c := newTestClient(t, s.handler(t))

	tracks, err := c.ListTranscripts(context.Background(), "https://www.youtube.com/watch?v="+testVideoID)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "de", tracks[0].LanguageCode)
	assert.True(t, tracks[0].IsTranslatable)
	assert.True(t, tracks[1].IsGenerated)
	assert.Empty(t, s.captions(), "listing fetches no caption body")
}

func TestGetTranscriptErrors(t *testing.T) {
	tests := []struct {
		name      string
		watchPage string
		player    func(string) m
		want      error
	}{
		{
			name:      "no captions",
			watchPage: ytPage("", nil, nil),
			player:    func(string) m { return m{"playabilityStatus": m{"status": "OK"}} },
			want:      engine.ErrTranscriptNotAvailable,
		},
		{
			name:      "empty track list",
			watchPage: ytPage("", nil, nil),
			player:    playerWithTracks(),
			want:      engine.ErrTranscriptNotAvailable,
		},
		{
			name:      "unplayable",
			watchPage: ytPage("", nil, nil),
			player: func(string) m {
				return m{"playabilityStatus": m{"status": "LOGIN_REQUIRED", "reason": "This video is private"}}
			},
			want: engine.ErrNotFound,
		},
		{
			name:      "bot check",
			watchPage: ytPage("", nil, nil),
			player: func(string) m {
				return m{"playabilityStatus": m{"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm you're not a bot"}}
			},
			want: engine.ErrRateLimited,
		},
		{
			name:      "captcha page",
			watchPage: `<html><body><div class="g-recaptcha"></div></body></html>`,
			want:      engine.ErrRateLimited,
		},
		{
			name:      "no api key",
			watchPage: `<html><body>changed layout</body></html>`,
			want:      engine.ErrParsing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &transcriptServer{watchPage: tt.watchPage, player: tt.player}
			c := newTestClient(t, s.handler(t))
			_, _, err := c.GetTranscript(context.Background(), testVideoID, TranscriptOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
