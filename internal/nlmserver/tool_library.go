package nlmserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/notebooks"
)

// IDInput selects a notebook by id.
type IDInput struct {
	ID string `json:"id" jsonschema:"Notebook id"`
}

// UpdateToolInput pairs an id with the partial update.
type UpdateToolInput struct {
	ID string `json:"id" jsonschema:"Notebook id"`
	notebooks.UpdateInput
}

// SearchInput carries a library search query.
type SearchInput struct {
	Query string `json:"query" jsonschema:"Case-insensitive substring matched against name, description, topics, tags and use cases"`
}

// ListOutput is the result of notebook_list and notebook_search.
type ListOutput struct {
	Notebooks []*notebooks.Notebook `json:"notebooks"`
	Total     int                   `json:"total"`
}

// RemoveOutput reports whether a record was removed.
type RemoveOutput struct {
	Removed bool   `json:"removed"`
	ID      string `json:"id"`
}

// ActiveOutput wraps the possibly-unset active notebook.
type ActiveOutput struct {
	Notebook *notebooks.Notebook `json:"notebook"`
	Set      bool                `json:"set"`
}

func registerLibraryTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_add",
		Description: "Add a NotebookLM notebook to the local library. The URL is validated against the NotebookLM origin before anything is stored. The first notebook added becomes the active one.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input notebooks.AddInput) (*mcp.CallToolResult, *notebooks.Notebook, error) {
		if input.URL == "" || input.Name == "" {
			return nil, nil, errors.New("url and name are required")
		}
		lib, err := library()
		if err != nil {
			return nil, nil, err
		}
		n, err := lib.Add(input)
		if err != nil {
			return nil, nil, err
		}
		engine.IncrLibraryMutations()
		recordUsage(ctx, n.ID, notebooks.ActionCreated, "added to library")
		return nil, n, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_update",
		Description: "Update notebook metadata. Omitted fields keep their current value; a supplied URL is re-validated before any field changes.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input UpdateToolInput) (*mcp.CallToolResult, *notebooks.Notebook, error) {
		if input.ID == "" {
			return nil, nil, errors.New("id is required")
		}
		lib, err := library()
		if err != nil {
			return nil, nil, err
		}
		n, err := lib.Update(input.ID, input.UpdateInput)
		if err != nil {
			return nil, nil, err
		}
		engine.IncrLibraryMutations()
		recordUsage(ctx, n.ID, notebooks.ActionUpdated, "")
		return nil, n, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_remove",
		Description: "Remove a notebook from the library. Removing the active notebook promotes the oldest remaining one. Unknown ids report removed=false rather than an error.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, RemoveOutput, error) {
		if input.ID == "" {
			return nil, RemoveOutput{}, errors.New("id is required")
		}
		lib, err := library()
		if err != nil {
			return nil, RemoveOutput{}, err
		}
		removed, err := lib.Remove(input.ID)
		if err != nil {
			return nil, RemoveOutput{}, err
		}
		if removed {
			engine.IncrLibraryMutations()
			recordUsage(ctx, input.ID, notebooks.ActionRemoved, "")
		}
		return nil, RemoveOutput{Removed: removed, ID: input.ID}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_get",
		Description: "Fetch one notebook by id.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, *notebooks.Notebook, error) {
		lib, err := library()
		if err != nil {
			return nil, nil, err
		}
		n := lib.Get(input.ID)
		if n == nil {
			return nil, nil, fmt.Errorf("%w: %s", notebooks.ErrNotFound, input.ID)
		}
		return nil, n, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_list",
		Description: "List every notebook in the library in insertion order.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ListOutput, error) {
		lib, err := library()
		if err != nil {
			return nil, ListOutput{}, err
		}
		all := lib.List()
		return nil, ListOutput{Notebooks: all, Total: len(all)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_search",
		Description: "Search notebooks by case-insensitive substring across name, description, topics, tags and use cases.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, ListOutput, error) {
		if input.Query == "" {
			return nil, ListOutput{}, errors.New("query is required")
		}
		lib, err := library()
		if err != nil {
			return nil, ListOutput{}, err
		}
		hits := lib.Search(input.Query)
		return nil, ListOutput{Notebooks: hits, Total: len(hits)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_select",
		Description: "Mark a notebook as active. Subsequent operations without an explicit notebook act on the active one.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, *notebooks.Notebook, error) {
		if input.ID == "" {
			return nil, nil, errors.New("id is required")
		}
		lib, err := library()
		if err != nil {
			return nil, nil, err
		}
		n, err := lib.Select(input.ID)
		if err != nil {
			return nil, nil, err
		}
		engine.IncrLibraryMutations()
		recordUsage(ctx, n.ID, notebooks.ActionActivated, "")
		return nil, n, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_active",
		Description: "Return the currently active notebook, if any.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ActiveOutput, error) {
		lib, err := library()
		if err != nil {
			return nil, ActiveOutput{}, err
		}
		n := lib.Active()
		return nil, ActiveOutput{Notebook: n, Set: n != nil}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_use",
		Description: "Record a use of a notebook: bumps its use counter and last-used timestamp.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, *notebooks.Notebook, error) {
		if input.ID == "" {
			return nil, nil, errors.New("id is required")
		}
		lib, err := library()
		if err != nil {
			return nil, nil, err
		}
		n, err := lib.IncrementUse(input.ID)
		if err != nil {
			return nil, nil, err
		}
		engine.IncrLibraryMutations()
		recordUsage(ctx, n.ID, notebooks.ActionUsed, "")
		return nil, n, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_stats",
		Description: "Library statistics: totals, distinct topics, the active notebook and the most-used one.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, notebooks.Stats, error) {
		lib, err := library()
		if err != nil {
			return nil, notebooks.Stats{}, err
		}
		return nil, lib.GetStats(), nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_history",
		Description: "Usage history, newest first. Filter by notebook id or list across the whole library.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input notebooks.HistoryListInput) (*mcp.CallToolResult, *notebooks.HistoryListResult, error) {
		return wrapResult(notebooks.ListHistory(ctx, input))
	})
}

// recordUsage appends to the audit trail. The library mutation already
// succeeded, so history failures are only logged.
func recordUsage(ctx context.Context, id, action, detail string) {
	if err := notebooks.RecordUsage(ctx, id, action, detail); err != nil {
		slog.Warn("usage history write failed", slog.Any("error", err))
	}
}

func wrapResult[T any](out T, err error) (*mcp.CallToolResult, T, error) {
	if err != nil {
		var zero T
		return nil, zero, err
	}
	return nil, out, nil
}
