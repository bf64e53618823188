// nlm — command-line interface for the NotebookLM automation toolkit.
//
// Manages the local notebook library, Google authentication and
// notebook creation from YouTube sources, sharing its data layout
// with the MCP server.
package main

import (
	"github.com/joho/godotenv"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
)

func main() {
	godotenv.Load() //nolint:errcheck // .env is optional
	engine.InitFromEnv()
	Execute()
}
