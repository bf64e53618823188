package nlmserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/notebooks"
)

// CleanupInput configures a data cleanup.
type CleanupInput struct {
	PreserveLibrary bool `json:"preserve_library,omitempty" jsonschema:"Keep the library snapshot, delete everything else"`
	DryRun          bool `json:"dry_run,omitempty" jsonschema:"Report what would be deleted without deleting"`
}

func registerCleanupTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cleanup_preview",
		Description: "List everything a cleanup would delete, grouped by category (browser state, sessions, library, auth, history, other) with per-item sizes.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input CleanupInput) (*mcp.CallToolResult, *notebooks.CleanupPreview, error) {
		m := notebooks.NewCleanupManager(engine.Cfg.DataDir)
		return wrapResult(m.Preview(input.PreserveLibrary))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cleanup_run",
		Description: "Delete stored skill data: browser state, sessions, auth info, usage history and (unless preserved) the library snapshot. Supports dry run.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input CleanupInput) (*mcp.CallToolResult, *notebooks.CleanupResult, error) {
		m := notebooks.NewCleanupManager(engine.Cfg.DataDir)
		return wrapResult(m.Run(input.PreserveLibrary, input.DryRun))
	})
}
