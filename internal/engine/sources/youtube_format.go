package sources

import (
	"fmt"
	"math"
	"strings"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// TranscriptFormat names a textual transcript rendering.
type TranscriptFormat string

const (
	FormatText TranscriptFormat = "text"
	FormatSRT  TranscriptFormat = "srt"
	FormatVTT  TranscriptFormat = "vtt"
)

// ParseTranscriptFormat accepts text, srt and vtt (case-insensitive).
func ParseTranscriptFormat(s string) (TranscriptFormat, error) {
	switch f := TranscriptFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatSRT, FormatVTT:
		return f, nil
	}
	return "", engine.NewError(engine.KindInvalidInput, "unknown transcript format %q", s)
}

// FormatTranscript renders segments as plain text (one line each), SRT or
// WebVTT.
func FormatTranscript(segs []engine.TranscriptSegment, format TranscriptFormat) (string, error) {
	var sb strings.Builder
	switch format {
	case FormatText:
		for i, s := range segs {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(s.Text)
		}
	case FormatSRT:
		for i, s := range segs {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n", i+1,
				cueTime(s.Start, ','), cueTime(s.Start+s.Duration, ','), s.Text)
		}
	case FormatVTT:
		sb.WriteString("WEBVTT\n")
		for _, s := range segs {
			fmt.Fprintf(&sb, "\n%s --> %s\n%s\n",
				cueTime(s.Start, '.'), cueTime(s.Start+s.Duration, '.'), s.Text)
		}
	default:
		return "", engine.NewError(engine.KindInvalidInput, "unknown transcript format %q", format)
	}
	return sb.String(), nil
}

// cueTime renders seconds as HH:MM:SS<sep>mmm.
func cueTime(sec float64, sep byte) string {
	ms := int64(math.Round(sec * 1000))
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms%1000)
}
