package notebooks

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"

	"github.com/playwright-community/playwright-go"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
)

// NotebookLM UI selectors. These are text- and placeholder-anchored
// rather than class-anchored because Google rotates generated class
// names between deploys.
const (
	selNewNotebook   = "button:has-text('New notebook')"
	selAddSource     = "button:has-text('Add source')"
	selURLInput      = "textarea[placeholder='Paste any links']"
	selTextInput     = "textarea[placeholder='Paste text here']"
	selInsert        = "button:has-text('Insert')"
	selAudioOverview = "button:has-text('Audio Overview')"
	selGenerate      = "button:has-text('Generate')"
)

// UI timing, in milliseconds where playwright wants them.
const (
	pageLoadTimeoutMS   = 30000
	dialogOpenWaitMS    = 2000
	youtubeProcessingMS = 10000
	textProcessingMS    = 5000
)

var (
	videoIDRe     = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	shortPathRe   = regexp.MustCompile(`^/([A-Za-z0-9_-]{11})/?$`)
	youtubeDomain = map[string]bool{
		"youtube.com":     true,
		"www.youtube.com": true,
		"m.youtube.com":   true,
		"youtu.be":        true,
	}
)

// ExtractVideoID validates a YouTube URL and returns its 11-character
// video id. Only https URLs on known YouTube hosts are accepted, and
// the id must match the exact YouTube id alphabet, so nothing
// attacker-shaped reaches the browser.
func ExtractVideoID(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", &ValidationError{Reason: fmt.Sprintf("URL could not be parsed: %v", err)}
	}
	if u.Scheme != "https" {
		return "", &ValidationError{Reason: fmt.Sprintf("scheme must be https, got %q", u.Scheme)}
	}
	if !youtubeDomain[u.Host] {
		return "", &ValidationError{Reason: fmt.Sprintf("host %q is not a YouTube domain", u.Host)}
	}

	if u.Host == "youtu.be" {
		if m := shortPathRe.FindStringSubmatch(u.Path); m != nil {
			return m[1], nil
		}
		return "", &ValidationError{Reason: "short link has no valid video id"}
	}

	if id := u.Query().Get("v"); videoIDRe.MatchString(id) {
		return id, nil
	}
	return "", &ValidationError{Reason: "no valid video id in URL"}
}

// IsValidYouTubeURL reports whether raw carries an extractable video id.
func IsValidYouTubeURL(raw string) bool {
	_, err := ExtractVideoID(raw)
	return err == nil
}

// CreateOptions configures notebook creation.
type CreateOptions struct {
	YouTubeURL    string
	ResearchText  string // extra text source added after the video, optional
	GenerateAudio bool   // kick off an audio overview, best effort
	ShowBrowser   bool   // run headful for debugging
}

// CreateResult reports where the new notebook landed.
type CreateResult struct {
	NotebookURL string `json:"notebook_url"`
	VideoID     string `json:"video_id"`
}

// CreateFromYouTube drives the NotebookLM UI: new notebook, add the
// video as a source, optionally add research text and start an audio
// overview, then report the resulting notebook URL. Requires stored
// authentication.
func CreateFromYouTube(ctx context.Context, auth *AuthManager, opts CreateOptions) (*CreateResult, error) {
	engine.IncrCreateRequests()

	videoID, err := ExtractVideoID(opts.YouTubeURL)
	if err != nil {
		engine.IncrCreateErrors()
		return nil, err
	}

	if !auth.IsAuthenticated() {
		engine.IncrCreateErrors()
		return nil, fmt.Errorf("not authenticated, run auth setup first")
	}

	session, err := LaunchBrowser(LaunchOptions{
		Headless:         engine.Cfg.Headless && !opts.ShowBrowser,
		ProfileDir:       auth.ProfileDir(),
		StateFile:        auth.StateFile(),
		ActionsPerSecond: engine.Cfg.ActionsPerSecond,
	})
	if err != nil {
		engine.IncrCreateErrors()
		return nil, err
	}
	defer session.Close()

	// The full UI flow takes tens of seconds; track it so slow runs
	// show up in the logs.
	var result *CreateResult
	err = engine.TrackOperation(ctx, "create_from_youtube", func(ctx context.Context) error {
		r, err := driveCreateFlow(ctx, session, videoID, opts)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		engine.IncrCreateErrors()
		return nil, err
	}
	return result, nil
}

func driveCreateFlow(ctx context.Context, session *BrowserSession, videoID string, opts CreateOptions) (*CreateResult, error) {
	page, err := session.NewPage()
	if err != nil {
		return nil, err
	}

	slog.Info("creating notebook", slog.String("video_id", videoID))

	if _, err := page.Goto(NotebookLMBaseURL+"/", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(pageLoadTimeoutMS),
	}); err != nil {
		return nil, fmt.Errorf("open notebooklm: %w", err)
	}

	if !onNotebookLM(page.URL()) {
		return nil, fmt.Errorf("redirected to login, authentication expired")
	}

	if err := session.Pace(ctx); err != nil {
		return nil, err
	}
	if err := RealisticClick(page, page.Locator(selNewNotebook)); err != nil {
		return nil, fmt.Errorf("new notebook button: %w", err)
	}
	page.WaitForTimeout(dialogOpenWaitMS)

	if err := session.Pace(ctx); err != nil {
		return nil, err
	}
	if err := RealisticClick(page, page.Locator(selAddSource)); err != nil {
		return nil, fmt.Errorf("add source button: %w", err)
	}
	page.WaitForTimeout(dialogOpenWaitMS)

	urlInput := page.Locator(selURLInput)
	if err := urlInput.WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(pageLoadTimeoutMS),
	}); err != nil {
		return nil, fmt.Errorf("url input: %w", err)
	}
	if err := HumanType(urlInput, opts.YouTubeURL); err != nil {
		return nil, fmt.Errorf("type video url: %w", err)
	}

	if err := RealisticClick(page, page.Locator(selInsert)); err != nil {
		return nil, fmt.Errorf("insert button: %w", err)
	}
	// NotebookLM pulls the transcript server-side; give it room.
	page.WaitForTimeout(youtubeProcessingMS)

	if opts.ResearchText != "" {
		if err := addTextSource(ctx, session, page, opts.ResearchText); err != nil {
			// The notebook already exists with the video source, so a
			// failed text source is reported but not fatal.
			slog.Warn("research text source failed", slog.Any("error", err))
		}
	}

	if opts.GenerateAudio {
		startAudioOverview(page)
	}

	result := &CreateResult{NotebookURL: page.URL(), VideoID: videoID}
	slog.Info("notebook created", slog.String("url", result.NotebookURL))
	return result, nil
}

func addTextSource(ctx context.Context, session *BrowserSession, page playwright.Page, text string) error {
	if err := session.Pace(ctx); err != nil {
		return err
	}
	if err := RealisticClick(page, page.Locator(selAddSource)); err != nil {
		return err
	}
	page.WaitForTimeout(dialogOpenWaitMS)

	textInput := page.Locator(selTextInput)
	if err := textInput.WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(dialogOpenWaitMS),
	}); err != nil {
		return err
	}
	if err := textInput.Fill(text); err != nil {
		return err
	}
	if err := RealisticClick(page, page.Locator(selInsert)); err != nil {
		return err
	}
	page.WaitForTimeout(textProcessingMS)
	return nil
}

// startAudioOverview clicks through the audio overview flow. Best
// effort only: the buttons move around and generation takes minutes,
// so failures are logged and the notebook URL is still returned.
func startAudioOverview(page playwright.Page) {
	if err := page.Locator(selAudioOverview).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(dialogOpenWaitMS),
	}); err != nil {
		slog.Warn("audio overview button not found", slog.Any("error", err))
		return
	}
	page.WaitForTimeout(dialogOpenWaitMS)

	if err := page.Locator(selGenerate).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(dialogOpenWaitMS),
	}); err != nil {
		slog.Warn("audio generate button not found", slog.Any("error", err))
		return
	}
	slog.Info("audio overview generation started")
}
