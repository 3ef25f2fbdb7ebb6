package sources

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

var (
	videoIDRe   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	channelIDRe = regexp.MustCompile(`^UC[\w-]{22}$`)

	// Ordered URL shapes carrying a video id.
	videoURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/watch\?(?:[^#]*&)?v=([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube(?:-nocookie)?\.com/embed/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/v/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/live/([A-Za-z0-9_-]{11})`),
	}
)

// ParseVideoID normalizes a bare id or any common video URL into the
// 11-character video id.
func ParseVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", engine.NewError(engine.KindInvalidInput, "video ID or URL is required")
	}
	if videoIDRe.MatchString(s) {
		return s, nil
	}
	for _, re := range videoURLPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1], nil
		}
	}
	return "", engine.NewError(engine.KindInvalidInput,
		"invalid YouTube URL or video ID %q: expected an 11-character ID or a YouTube URL", s)
}

// ChannelKind tags how a channel reference should be turned into a URL.
type ChannelKind string

const (
	ChannelByID     ChannelKind = "id"
	ChannelByHandle ChannelKind = "handle"
	ChannelByCustom ChannelKind = "custom"
	ChannelByURL    ChannelKind = "url"
)

// ChannelRef is a resolved channel identifier. Value is the id, the handle
// without "@", the custom name, or an absolute channel URL for ChannelByURL.
type ChannelRef struct {
	Kind  ChannelKind
	Value string
}

// ParseChannel resolves a channel id, @handle, custom name or channel URL.
// It never performs I/O.
func ParseChannel(input string) (ChannelRef, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return ChannelRef{}, engine.NewError(engine.KindInvalidInput, "channel ID, handle or URL is required")
	}
	if channelIDRe.MatchString(s) {
		return ChannelRef{Kind: ChannelByID, Value: s}, nil
	}
	if strings.HasPrefix(s, "@") {
		return ChannelRef{Kind: ChannelByHandle, Value: strings.TrimPrefix(s, "@")}, nil
	}

	if ref, ok := parseChannelURL(s); ok {
		return ref, nil
	}
	if strings.ContainsAny(s, "/?# ") {
		return ChannelRef{}, engine.NewError(engine.KindInvalidInput, "unrecognized channel reference %q", s)
	}
	return ChannelRef{Kind: ChannelByCustom, Value: s}, nil
}

func parseChannelURL(s string) (ChannelRef, bool) {
	raw := s
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(strings.ToLower(u.Hostname()), "youtube.com") {
		return ChannelRef{}, false
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return ChannelRef{}, false
	}

	switch {
	case segs[0] == "channel" && len(segs) > 1 && channelIDRe.MatchString(segs[1]):
		return ChannelRef{Kind: ChannelByID, Value: segs[1]}, true
	case strings.HasPrefix(segs[0], "@") && len(segs[0]) > 1:
		handle, _ := url.PathUnescape(segs[0][1:])
		return ChannelRef{Kind: ChannelByHandle, Value: handle}, true
	case segs[0] == "c" && len(segs) > 1:
		return ChannelRef{Kind: ChannelByCustom, Value: segs[1]}, true
	case segs[0] == "user" && len(segs) > 1:
		return ChannelRef{Kind: ChannelByURL, Value: "https://www.youtube.com/user/" + segs[1]}, true
	}
	return ChannelRef{}, false
}

// pageURL builds the channel page URL under base. ChannelByURL refs keep
// their path but are re-rooted at base.
func (r ChannelRef) pageURL(base string) string {
	switch r.Kind {
	case ChannelByID:
		return base + "/channel/" + r.Value
	case ChannelByHandle:
		return base + "/@" + url.PathEscape(r.Value)
	case ChannelByURL:
		if u, err := url.Parse(r.Value); err == nil {
			return base + strings.TrimRight(u.Path, "/")
		}
		return strings.TrimRight(r.Value, "/")
	default:
		return base + "/c/" + url.PathEscape(r.Value)
	}
}

func watchURL(base, videoID string) string {
	return base + "/watch?v=" + videoID
}
