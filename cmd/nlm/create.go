package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/notebooks"
)

func createCmd() *cobra.Command {
	var youtubeURL, research, addToLibrary string
	var generateAudio, showBrowser bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a NotebookLM notebook from a YouTube video",
		Long: `Drives the NotebookLM UI through a stealth browser session: creates a
notebook, adds the video as a source, and optionally adds research
text and starts an audio overview. Requires stored authentication
(nlm auth setup).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := newAuthManager()
			if err != nil {
				return err
			}

			res, err := notebooks.CreateFromYouTube(cmd.Context(), auth, notebooks.CreateOptions{
				YouTubeURL:    youtubeURL,
				ResearchText:  research,
				GenerateAudio: generateAudio,
				ShowBrowser:   showBrowser,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Notebook created: %s\n", res.NotebookURL)

			if addToLibrary != "" {
				lib, err := openLibrary()
				if err != nil {
					return err
				}
				record, err := lib.Add(notebooks.AddInput{
					URL:          res.NotebookURL,
					Name:         addToLibrary,
					Description:  "Created from YouTube video " + res.VideoID,
					Topics:       []string{},
					ContentTypes: []string{"youtube"},
				})
				if err != nil {
					return fmt.Errorf("notebook created but not added to library: %w", err)
				}
				fmt.Printf("Added to library as: %s\n", record.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&youtubeURL, "youtube-url", "", "YouTube video URL")
	cmd.Flags().StringVar(&research, "research", "", "additional research text source")
	cmd.Flags().StringVar(&addToLibrary, "add-to-library", "", "register the notebook in the library under this name")
	cmd.Flags().BoolVar(&generateAudio, "generate-audio", false, "start an audio overview (best effort)")
	cmd.Flags().BoolVar(&showBrowser, "show-browser", false, "run the browser headful")
	cmd.MarkFlagRequired("youtube-url") //nolint:errcheck
	return cmd
}

func previewCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Fetch title and description for a YouTube video",
		RunE: func(cmd *cobra.Command, _ []string) error {
			videoID, err := notebooks.ExtractVideoID(url)
			if err != nil {
				return err
			}
			out, err := engine.PreviewYouTube(cmd.Context(), url, videoID)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "YouTube video URL")
	cmd.MarkFlagRequired("url") //nolint:errcheck
	return cmd
}
