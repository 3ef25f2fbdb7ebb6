package sources

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

var trackLanguage = chain{
	at("name", "runs", 0, "text"),
	at("name", "simpleText"),
	at("languageCode"),
}

// captionTracks maps playerCaptionsTracklistRenderer.captionTracks into
// TranscriptTracks. Tracks without a base URL are dropped.
func captionTracks(player map[string]any) []engine.TranscriptTrack {
	raw := list(player, "captions", "playerCaptionsTracklistRenderer", "captionTracks")
	tracks := make([]engine.TranscriptTrack, 0, len(raw))
	for _, t := range raw {
		base := textOf(dig(t, "baseUrl"))
		if base == "" {
			continue
		}
		translatable, _ := dig(t, "isTranslatable").(bool)
		tracks = append(tracks, engine.TranscriptTrack{
			LanguageCode:   textOf(dig(t, "languageCode")),
			Language:       trackLanguage.first(t),
			BaseURL:        base,
			IsGenerated:    textOf(dig(t, "kind")) == "asr",
			IsTranslatable: translatable,
		})
	}
	return tracks
}

// selectTrack picks the caption track to fetch. Manual tracks rank first
// unless preferGenerated; within that order the first track matching the
// earliest requested language wins ("en" also matches "en-US"). Without any
// language match the first ranked track is used. ok is false only for an
// empty list.
func selectTrack(tracks []engine.TranscriptTrack, languages []string, preferGenerated bool) (engine.TranscriptTrack, bool) {
	if len(tracks) == 0 {
		return engine.TranscriptTrack{}, false
	}
	ranked := make([]engine.TranscriptTrack, len(tracks))
	copy(ranked, tracks)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].IsGenerated == ranked[j].IsGenerated {
			return false
		}
		if preferGenerated {
			return ranked[i].IsGenerated
		}
		return !ranked[i].IsGenerated
	})

	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		for _, t := range ranked {
			if strings.EqualFold(t.LanguageCode, lang) ||
				strings.HasPrefix(strings.ToLower(t.LanguageCode), strings.ToLower(lang)+"-") {
				return t, true
			}
		}
	}
	return ranked[0], true
}

// captionURL strips the server-format override so the classic
// <text start dur> body is served. Other parameters keep their order.
func captionURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return strings.Replace(baseURL, "&fmt=srv3", "", 1)
	}
	parts := strings.Split(u.RawQuery, "&")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || strings.HasPrefix(p, "fmt=") {
			continue
		}
		kept = append(kept, p)
	}
	u.RawQuery = strings.Join(kept, "&")
	return u.String()
}

var (
	captionWithDurRe = regexp.MustCompile(`<text\s+start="([^"]+)"\s+dur="([^"]*)"[^>]*>([^<]*)</text>`)
	captionStartRe   = regexp.MustCompile(`<text\s+start="([^"]+)"[^>]*>([^<]*)</text>`)
	captionSrv3Re    = regexp.MustCompile(`<p\s+t="(\d+)"(?:\s+d="(\d+)")?[^>]*>([\s\S]*?)</p>`)
	tagRe            = regexp.MustCompile(`<[^>]+>`)
)

// parseCaptions turns a caption XML body into ordered segments. Strategies
// run in order and the first producing any segment wins: <text start dur>,
// <text start> with zero duration, then srv3 <p t d> in milliseconds.
// Cues whose text decodes to empty are skipped.
func parseCaptions(body string) []engine.TranscriptSegment {
	var segs []engine.TranscriptSegment

	for _, m := range captionWithDurRe.FindAllStringSubmatch(body, -1) {
		segs = appendSegment(segs, m[1], m[2], m[3], 1)
	}
	if len(segs) > 0 {
		return segs
	}

	for _, m := range captionStartRe.FindAllStringSubmatch(body, -1) {
		segs = appendSegment(segs, m[1], "", m[2], 1)
	}
	if len(segs) > 0 {
		return segs
	}

	for _, m := range captionSrv3Re.FindAllStringSubmatch(body, -1) {
		segs = appendSegment(segs, m[1], m[2], tagRe.ReplaceAllString(m[3], ""), 1000)
	}
	return segs
}

func appendSegment(segs []engine.TranscriptSegment, start, dur, text string, unit float64) []engine.TranscriptSegment {
	s, err := strconv.ParseFloat(start, 64)
	if err != nil {
		return segs
	}
	d, _ := strconv.ParseFloat(dur, 64)
	text = strings.TrimSpace(engine.DecodeEntities(text))
	if text == "" {
		return segs
	}
	return append(segs, engine.TranscriptSegment{Start: s / unit, Duration: d / unit, Text: text})
}
