package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// PreviewYouTube fetches title/description metadata for a YouTube video
// page so callers can inspect a source before committing it to a
// notebook. Results are cached. videoID is informational and comes from
// the caller's URL validation.
func PreviewYouTube(ctx context.Context, videoURL, videoID string) (PreviewOutput, error) {
	metrics.PreviewRequests.Add(1)

	cacheKey := CacheKey("youtube_preview", videoURL)
	if out, ok := CacheLoadJSON[PreviewOutput](ctx, cacheKey); ok {
		return out, nil
	}

	out := PreviewOutput{URL: videoURL, VideoID: videoID}

	// Stealth TLS client first: YouTube serves full metadata to
	// Chrome-fingerprinted requests more reliably.
	if cfg.BrowserClient != nil {
		body, _, status, err := cfg.BrowserClient.Do(http.MethodGet, videoURL, ChromeHeaders(), nil)
		if err == nil && status == http.StatusOK {
			out.Title, out.Description = parseVideoMeta(body)
		}
	}

	if out.Title == "" {
		title, content, err := FetchURLContent(ctx, videoURL)
		if err != nil {
			return PreviewOutput{}, fmt.Errorf("youtube preview: %w", err)
		}
		out.Title = title
		out.Content = content
	}

	if cfg.MaxContentChars > 0 && len(out.Content) > cfg.MaxContentChars {
		out.Content = out.Content[:cfg.MaxContentChars] + "..."
		out.Truncated = true
	}

	CacheStoreJSON(ctx, cacheKey, out)
	return out, nil
}

// parseVideoMeta pulls <title> and description meta tags out of a video
// watch page.
func parseVideoMeta(body []byte) (title, description string) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", ""
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				var name, property, content string
				for _, a := range n.Attr {
					switch a.Key {
					case "name":
						name = a.Val
					case "property":
						property = a.Val
					case "content":
						content = a.Val
					}
				}
				if title == "" && property == "og:title" {
					title = content
				}
				if description == "" && (name == "description" || property == "og:description") {
					description = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	title = strings.TrimSuffix(title, " - YouTube")
	return strings.TrimSpace(title), strings.TrimSpace(description)
}
