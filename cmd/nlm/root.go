package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/notebooks"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nlm",
		Short: "NotebookLM library and automation toolkit",
		Long: `Manage a local library of NotebookLM notebooks, keep Google
authentication alive for browser automation, and create notebooks
from YouTube sources.

Examples:
  nlm add --url https://notebooklm.google.com/notebook/abc123 --name "Go Notes" --description "Language research" --topics go,concurrency
  nlm list
  nlm search --query concurrency
  nlm auth setup
  nlm create --youtube-url https://youtu.be/dQw4w9WgXcQ`,
	}

	cmd.AddCommand(
		addCmd(),
		listCmd(),
		searchCmd(),
		activateCmd(),
		activeCmd(),
		removeCmd(),
		updateCmd(),
		useCmd(),
		statsCmd(),
		historyCmd(),
		authCmd(),
		createCmd(),
		previewCmd(),
		cleanupCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openLibrary opens the library at the configured snapshot path.
func openLibrary() (*notebooks.Library, error) {
	return notebooks.Open(notebooks.NewFileStore(engine.Cfg.LibraryFile))
}

// splitList turns a comma-separated flag value into trimmed parts.
// Empty input yields nil so the core sees "not supplied".
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
