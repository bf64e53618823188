package nlmserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/notebooks"
)

// CreateInput configures notebook creation from a YouTube video.
type CreateInput struct {
	YouTubeURL    string `json:"youtube_url" jsonschema:"YouTube video URL (watch or youtu.be form)"`
	ResearchText  string `json:"research_text,omitempty" jsonschema:"Optional text source added alongside the video"`
	GenerateAudio bool   `json:"generate_audio,omitempty" jsonschema:"Start an audio overview, best effort"`
	AddToLibrary  string `json:"add_to_library,omitempty" jsonschema:"When set, register the created notebook in the library under this name"`
}

// CreateOutput reports the created notebook.
type CreateOutput struct {
	NotebookURL string              `json:"notebook_url"`
	VideoID     string              `json:"video_id"`
	Library     *notebooks.Notebook `json:"library_record,omitempty"`
}

func registerCreateTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_create_from_youtube",
		Description: "Create a NotebookLM notebook with a YouTube video as its source. Drives the NotebookLM UI through a stealth browser session; requires stored authentication. Optionally adds a research text source, starts an audio overview, and registers the result in the library.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CreateInput) (*mcp.CallToolResult, CreateOutput, error) {
		if input.YouTubeURL == "" {
			return nil, CreateOutput{}, errors.New("youtube_url is required")
		}

		auth, err := authManager()
		if err != nil {
			return nil, CreateOutput{}, err
		}

		res, err := notebooks.CreateFromYouTube(ctx, auth, notebooks.CreateOptions{
			YouTubeURL:    input.YouTubeURL,
			ResearchText:  input.ResearchText,
			GenerateAudio: input.GenerateAudio,
		})
		if err != nil {
			return nil, CreateOutput{}, err
		}

		out := CreateOutput{NotebookURL: res.NotebookURL, VideoID: res.VideoID}

		if input.AddToLibrary != "" {
			lib, err := library()
			if err != nil {
				return nil, CreateOutput{}, err
			}
			record, err := lib.Add(notebooks.AddInput{
				URL:          res.NotebookURL,
				Name:         input.AddToLibrary,
				Description:  "Created from YouTube video " + res.VideoID,
				Topics:       []string{},
				ContentTypes: []string{"youtube"},
			})
			if err != nil {
				// The notebook exists either way; report it with the error.
				return nil, out, err
			}
			engine.IncrLibraryMutations()
			recordUsage(ctx, record.ID, notebooks.ActionCreated, "youtube "+res.VideoID)
			out.Library = record
		}
		return nil, out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_preview",
		Description: "Fetch title and description for a YouTube video without opening a browser. Useful for checking a source before creating a notebook. Results are cached.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.PreviewInput) (*mcp.CallToolResult, engine.PreviewOutput, error) {
		if input.URL == "" {
			return nil, engine.PreviewOutput{}, errors.New("url is required")
		}
		videoID, err := notebooks.ExtractVideoID(input.URL)
		if err != nil {
			return nil, engine.PreviewOutput{}, err
		}
		out, err := engine.PreviewYouTube(ctx, input.URL, videoID)
		if err != nil {
			return nil, engine.PreviewOutput{}, err
		}
		if input.MaxLength > 0 && len(out.Content) > input.MaxLength {
			out.Content = out.Content[:input.MaxLength] + "..."
			out.Truncated = true
		}
		return nil, out, nil
	})
}
