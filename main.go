// go_notebooklm — NotebookLM automation MCP server.
//
// Manages a local library of NotebookLM notebooks, persists Google
// authentication for a stealth browser profile, and drives the
// NotebookLM UI to create notebooks from YouTube sources.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/nlmserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	engine.InitFromEnv()

	slog.Info("starting go_notebooklm",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_notebooklm",
		Version: version,
	}, nil)

	nlmserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 19))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_notebooklm",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
