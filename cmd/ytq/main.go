// Command ytq queries YouTube from the terminal using the same client as the
// MCP server. Output is indented JSON unless a transcript text format is
// requested.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_youtube/internal/engine"
	"github.com/anatolykoptev/go_youtube/internal/engine/sources"
	"github.com/anatolykoptev/go_youtube/internal/toolutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries the lazily built client shared by subcommands.
type app struct {
	out     io.Writer
	verbose bool
	build   func(ctx context.Context) (*sources.Client, error)
	yt      *sources.Client
}

func (a *app) client(cmd *cobra.Command) (*sources.Client, error) {
	if a.yt != nil {
		return a.yt, nil
	}
	yt, err := a.build(cmd.Context())
	if err != nil {
		return nil, err
	}
	a.yt = yt
	return yt, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}
	a.build = func(ctx context.Context) (*sources.Client, error) {
		cfg := engine.LoadConfig()
		if a.verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
		yt, _, err := toolutil.BuildClient(ctx, cfg)
		return yt, err
	}
	return buildCommands(a)
}

func buildCommands(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "ytq",
		Short:        "Query YouTube channels, videos, search results and transcripts",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")
	root.SetOut(a.out)

	root.AddCommand(
		transcriptCmd(a),
		tracksCmd(a),
		videoCmd(a),
		channelCmd(a),
		videosCmd(a),
		searchCmd(a),
	)
	return root
}

func transcriptCmd(a *app) *cobra.Command {
	var (
		langs     []string
		generated bool
		format    string
	)
	cmd := &cobra.Command{
		Use:   "transcript <video>",
		Short: "Fetch a video transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f sources.TranscriptFormat
			if format != "json" {
				var err error
				if f, err = sources.ParseTranscriptFormat(format); err != nil {
					return err
				}
			}
			yt, err := a.client(cmd)
			if err != nil {
				return err
			}
			id, err := sources.ParseVideoID(args[0])
			if err != nil {
				return err
			}
			opts := sources.TranscriptOptions{Languages: toolutil.NormLangs(langs, ""), PreferGenerated: generated}
			track, segs, err := yt.GetTranscript(cmd.Context(), id, opts)
			if err != nil {
				return err
			}
			if format == "json" {
				return a.printJSON(engine.TranscriptOutput{VideoID: id, Track: &track, Format: format, Segments: segs})
			}
			text, err := sources.FormatTranscript(segs, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, text)
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "preferred languages in order (default en)")
	cmd.Flags().BoolVar(&generated, "prefer-generated", false, "prefer auto-generated captions")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "json, text, srt or vtt")
	return cmd
}

func tracksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks <video>",
		Short: "List available caption tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yt, err := a.client(cmd)
			if err != nil {
				return err
			}
			tracks, err := yt.ListTranscripts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(tracks)
		},
	}
}

func videoCmd(a *app) *cobra.Command {
	var basic bool
	cmd := &cobra.Command{
		Use:   "video <video>",
		Short: "Show video metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yt, err := a.client(cmd)
			if err != nil {
				return err
			}
			get := yt.GetVideoInfo
			if basic {
				get = yt.GetBasicVideoInfo
			}
			v, err := get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(v)
		},
	}
	cmd.Flags().BoolVar(&basic, "basic", false, "title and channel only, via oEmbed")
	return cmd
}

func channelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "channel <channel>",
		Short: "Show channel metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yt, err := a.client(cmd)
			if err != nil {
				return err
			}
			ch, err := yt.GetChannelInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(ch)
		},
	}
}

func videosCmd(a *app) *cobra.Command {
	var opts sources.ChannelVideosOptions
	cmd := &cobra.Command{
		Use:   "videos <channel>",
		Short: "List channel videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yt, err := a.client(cmd)
			if err != nil {
				return err
			}
			opts.Limit = toolutil.ClampLimit(opts.Limit, 15, 500)
			videos, err := yt.GetChannelVideos(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return a.printJSON(videos)
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 15, "max videos (1-500)")
	cmd.Flags().StringVar(&opts.SortBy, "sort", "newest", "newest, popular or oldest")
	cmd.Flags().StringVar(&opts.ContentType, "type", "videos", "videos, shorts or streams")
	return cmd
}

func searchCmd(a *app) *cobra.Command {
	var opts sources.SearchOptions
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yt, err := a.client(cmd)
			if err != nil {
				return err
			}
			opts.Limit = toolutil.ClampLimit(opts.Limit, 10, 50)
			videos, err := yt.SearchVideos(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return a.printJSON(videos)
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "max results (1-50)")
	cmd.Flags().StringVar(&opts.SortBy, "sort", "relevance", "relevance, date, viewCount or rating")
	return cmd
}
