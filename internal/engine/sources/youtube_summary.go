package sources

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// SummarizeVideo fetches a transcript and asks the configured LLM for a
// summary. The transcript is truncated to the client's character budget.
func (c *Client) SummarizeVideo(ctx context.Context, video string, opts TranscriptOptions) (engine.SummaryOutput, error) {
	if c.llm == nil {
		return engine.SummaryOutput{}, engine.NewError(engine.KindInvalidInput, "summaries need an LLM; set LLM_API_KEY")
	}
	id, err := ParseVideoID(video)
	if err != nil {
		return engine.SummaryOutput{}, err
	}

	track, segs, err := c.GetTranscript(ctx, id, opts)
	if err != nil {
		return engine.SummaryOutput{}, err
	}
	text, _ := FormatTranscript(segs, FormatText)
	if text == "" {
		return engine.SummaryOutput{}, engine.NewError(engine.KindTranscriptNotAvailable, "transcript of %s is empty", id)
	}

	out := engine.SummaryOutput{VideoID: id, Language: track.LanguageCode}
	// Title is context only; a failed oEmbed lookup does not block the summary.
	if v, err := c.GetBasicVideoInfo(ctx, id); err == nil {
		out.Title = v.Title
	} else {
		slog.Debug("youtube: summary without title", slog.String("video", id), slog.Any("error", err))
	}

	note := ""
	if c.summaryMaxChars > 0 && utf8.RuneCountInString(text) > c.summaryMaxChars {
		text = engine.TruncateRunes(text, c.summaryMaxChars, "…")
		out.Truncated = true
		note = "Note: the transcript was cut short; summarize only what is shown.\n"
	}

	prompt := fmt.Sprintf(engine.SummaryPrompt, orDefault(out.Title, id), out.Language, note, text)
	summary, err := c.llm.Complete(ctx, engine.SummarySystemPrompt, prompt)
	if err != nil {
		return engine.SummaryOutput{}, fmt.Errorf("summarize %s: %w", id, err)
	}
	out.Summary = summary
	return out, nil
}
