package ytserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/engine"
	"github.com/anatolykoptev/go_youtube/internal/engine/sources"
	"github.com/anatolykoptev/go_youtube/internal/toolutil"
)

func registerTranscriptTools(server *mcp.Server, yt *sources.Client) int {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_youtube_transcript",
		Description: "Get the transcript of a YouTube video. Picks the best caption track for the requested languages (manual tracks before auto-generated ones unless prefer_generated is set). Returns timed segments as JSON, or the whole transcript as plain text, SRT or WebVTT.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, handler("get_youtube_transcript", func(ctx context.Context, in engine.TranscriptInput) (engine.TranscriptOutput, error) {
		return transcript(ctx, yt, in)
	}))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_youtube_transcript_text",
		Description: "Get the transcript of a YouTube video as plain text, one caption per line, without timestamps.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, handler("get_youtube_transcript_text", func(ctx context.Context, in engine.TranscriptTextInput) (engine.TranscriptTextOutput, error) {
		id, err := sources.ParseVideoID(in.VideoID)
		if err != nil {
			return engine.TranscriptTextOutput{}, err
		}
		text, err := yt.GetTranscriptText(ctx, id, sources.TranscriptOptions{Languages: toolutil.NormLangs(nil, in.Language)})
		if err != nil {
			return engine.TranscriptTextOutput{}, err
		}
		return engine.TranscriptTextOutput{VideoID: id, Text: text}, nil
	}))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_youtube_transcripts",
		Description: "List the caption tracks available for a YouTube video: language code, name, whether auto-generated and whether translatable.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, handler("list_youtube_transcripts", func(ctx context.Context, in engine.ListTranscriptsInput) (engine.ListTranscriptsOutput, error) {
		id, err := sources.ParseVideoID(in.VideoID)
		if err != nil {
			return engine.ListTranscriptsOutput{}, err
		}
		tracks, err := yt.ListTranscripts(ctx, id)
		if err != nil {
			return engine.ListTranscriptsOutput{}, err
		}
		return engine.ListTranscriptsOutput{VideoID: id, Tracks: tracks}, nil
	}))

	if !yt.HasLLM() {
		return 3
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_youtube_video",
		Description: "Summarize a YouTube video from its transcript: a short overview, the key points in order, and who would find it useful. Long transcripts are truncated first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, handler("summarize_youtube_video", func(ctx context.Context, in engine.SummaryInput) (engine.SummaryOutput, error) {
		return yt.SummarizeVideo(ctx, in.VideoID, sources.TranscriptOptions{Languages: toolutil.NormLangs(nil, in.Language)})
	}))
	return 4
}

func transcript(ctx context.Context, yt *sources.Client, in engine.TranscriptInput) (engine.TranscriptOutput, error) {
	format := sources.TranscriptFormat("")
	if f := strings.ToLower(strings.TrimSpace(in.Format)); f != "" && f != "json" {
		f, err := sources.ParseTranscriptFormat(in.Format)
		if err != nil {
			return engine.TranscriptOutput{}, err
		}
		format = f
	}
	id, err := sources.ParseVideoID(in.VideoID)
	if err != nil {
		return engine.TranscriptOutput{}, err
	}

	track, segs, err := yt.GetTranscript(ctx, id, sources.TranscriptOptions{
		Languages:       toolutil.NormLangs(in.Languages, in.Language),
		PreferGenerated: in.PreferGenerated,
	})
	if err != nil {
		return engine.TranscriptOutput{}, err
	}

	out := engine.TranscriptOutput{VideoID: id, Track: &track, Format: "json"}
	if format == "" {
		out.Segments = segs
		return out, nil
	}
	text, err := sources.FormatTranscript(segs, format)
	if err != nil {
		return engine.TranscriptOutput{}, err
	}
	out.Format = string(format)
	out.Text = text
	return out, nil
}
