package sources

import (
	"context"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// Transcript retrieval: watch page → session API key → innertube player
// (ANDROID client) → caption track list → caption XML.

// TranscriptOptions selects the caption track.
type TranscriptOptions struct {
	Languages       []string // preference order; default ["en"]
	PreferGenerated bool     // rank auto-generated tracks before manual ones
}

func (o TranscriptOptions) languages() []string {
	var out []string
	for _, l := range o.Languages {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return []string{"en"}
	}
	return out
}

// ListTranscripts returns the caption tracks of a video without fetching
// any caption body. An empty list is not an error.
func (c *Client) ListTranscripts(ctx context.Context, video string) ([]engine.TranscriptTrack, error) {
	id, err := ParseVideoID(video)
	if err != nil {
		return nil, err
	}
	return c.captionTrackList(ctx, id)
}

// GetTranscript fetches the best caption track for opts and parses it into
// segments in playback order.
func (c *Client) GetTranscript(ctx context.Context, video string, opts TranscriptOptions) (engine.TranscriptTrack, []engine.TranscriptSegment, error) {
	id, err := ParseVideoID(video)
	if err != nil {
		return engine.TranscriptTrack{}, nil, err
	}
	engine.IncrTranscriptRequests()

	tracks, err := c.captionTrackList(ctx, id)
	if err != nil {
		return engine.TranscriptTrack{}, nil, err
	}
	langs := opts.languages()
	track, ok := selectTrack(tracks, langs, opts.PreferGenerated)
	if !ok {
		return engine.TranscriptTrack{}, nil, engine.NewError(engine.KindTranscriptNotAvailable,
			"no transcripts available for video %s", id)
	}
	slog.Debug("youtube: caption track selected",
		slog.String("video", id), slog.String("lang", track.LanguageCode), slog.Bool("generated", track.IsGenerated))

	body, err := c.fetch.FetchText(ctx, captionURL(track.BaseURL))
	if err != nil {
		return track, nil, err
	}
	segs := parseCaptions(body)
	if segs == nil {
		segs = []engine.TranscriptSegment{}
	}
	return track, segs, nil
}

// GetTranscriptText returns the transcript as plain text, one segment per
// line.
func (c *Client) GetTranscriptText(ctx context.Context, video string, opts TranscriptOptions) (string, error) {
	_, segs, err := c.GetTranscript(ctx, video, opts)
	if err != nil {
		return "", err
	}
	return FormatTranscript(segs, FormatText)
}

// captionTrackList runs the watch page → player exchange for one video.
func (c *Client) captionTrackList(ctx context.Context, id string) ([]engine.TranscriptTrack, error) {
	page, err := c.fetch.FetchText(ctx, watchURL(c.base, id))
	if err != nil {
		return nil, notFoundOn404(err, "video %s not found", id)
	}
	apiKey := extractAPIKey(page)
	if apiKey == "" {
		if isCaptchaPage(page) {
			return nil, engine.NewError(engine.KindRateLimited, "blocked by YouTube (captcha required)")
		}
		return nil, engine.NewError(engine.KindParsing, "innertube API key not found in watch page")
	}

	player, err := c.postPlayer(ctx, apiKey, id)
	if err != nil {
		return nil, err
	}
	if err := playabilityError(player, id); err != nil {
		return nil, err
	}

	if dig(player, "captions", "playerCaptionsTracklistRenderer", "captionTracks") == nil {
		return nil, engine.NewError(engine.KindTranscriptNotAvailable, "no transcripts available for video %s", id)
	}
	return captionTracks(player), nil
}

// playabilityError maps a non-OK playability status. Bot checks surface as
// rate limiting; everything else means the video cannot be served.
func playabilityError(player map[string]any, id string) error {
	status := textOf(dig(player, "playabilityStatus", "status"))
	if status == "" || status == "OK" {
		return nil
	}
	reason := firstNonEmpty(textOf(dig(player, "playabilityStatus", "reason")), "video unavailable")
	if strings.Contains(strings.ToLower(reason), "bot") {
		return engine.NewError(engine.KindRateLimited, "video %s: %s", id, reason)
	}
	return engine.NewError(engine.KindNotFound, "video %s not playable: %s", id, reason)
}
