// go_youtube: YouTube channels, videos, search and transcripts over MCP.
//
// Serves HTTP MCP (with a metrics endpoint) or stdio, selected by
// MCP_TRANSPORT. All configuration comes from the environment.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/engine"
	"github.com/anatolykoptev/go_youtube/internal/toolutil"
	"github.com/anatolykoptev/go_youtube/internal/ytserver"
)

var version = "dev"

func main() {
	cfg := engine.LoadConfig()
	// stderr keeps stdout free for the stdio transport.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	yt, fetcher, err := toolutil.BuildClient(ctx, cfg)
	if err != nil {
		slog.Error("client init failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting go_youtube",
		slog.String("transport", cfg.Transport),
		slog.String("port", cfg.Port),
		slog.String("http_client", cfg.HTTPClient),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_youtube",
		Version: version,
	}, nil)

	n := ytserver.RegisterTools(server, yt)
	slog.Info("tools registered", slog.Int("count", n))

	if cfg.Transport == "stdio" {
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("stdio server failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_youtube",
		Version:      version,
		Port:         cfg.Port,
		WriteTimeout: 300 * time.Second,
		Metrics:      func() string { return engine.FormatMetrics(fetcher.Cache()) },
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
