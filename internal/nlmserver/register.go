// Package nlmserver exposes the notebook library, authentication and
// browser automation as MCP tools.
package nlmserver

import (
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/notebooks"
)

// RegisterTools registers all NotebookLM tools on the given MCP
// server: library CRUD and search, notebook creation from YouTube,
// source preview, auth management and data cleanup.
func RegisterTools(server *mcp.Server) {
	registerLibraryTools(server)
	registerCreateTools(server)
	registerAuthTools(server)
	registerCleanupTools(server)
}

var (
	libraryOnce sync.Once
	libraryInst *notebooks.Library
	libraryErr  error
)

// library opens the shared library singleton backed by the configured
// snapshot file.
func library() (*notebooks.Library, error) {
	libraryOnce.Do(func() {
		libraryInst, libraryErr = notebooks.Open(notebooks.NewFileStore(engine.Cfg.LibraryFile))
		if libraryErr != nil {
			slog.Error("library open failed", slog.Any("error", libraryErr))
		}
	})
	return libraryInst, libraryErr
}

// authManager builds an auth manager rooted at the configured data dir.
func authManager() (*notebooks.AuthManager, error) {
	return notebooks.NewAuthManager(engine.Cfg.DataDir)
}
