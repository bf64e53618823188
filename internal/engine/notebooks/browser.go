package notebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
)

const (
	NotebookLMBaseURL = "https://notebooklm.google.com"

	// Matches a real Chrome UA prefix; the full version suffix is
	// filled in by the browser itself via the persistent profile.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Flags that strip the obvious automation signals from Chrome.
var stealthArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--no-first-run",
	"--no-default-browser-check",
}

// LaunchOptions configures a browser session.
type LaunchOptions struct {
	Headless   bool
	ProfileDir string // persistent user data dir, keeps the fingerprint stable
	StateFile  string // state.json for cookie injection; empty skips it
	UserAgent  string

	// ActionsPerSecond paces UI interactions. Zero disables pacing.
	ActionsPerSecond float64
}

// BrowserSession wraps a persistent Chromium context plus a rate
// limiter that paces UI actions so automation stays under detection
// thresholds.
type BrowserSession struct {
	pw      *playwright.Playwright
	Context playwright.BrowserContext
	pacer   *rate.Limiter
}

var (
	driverOnce sync.Once
	driverErr  error
)

// installDriver fetches the playwright driver on first use. Browsers
// are not downloaded: sessions run the system Chrome via the "chrome"
// channel.
func installDriver() error {
	driverOnce.Do(func() {
		driverErr = playwright.Install(&playwright.RunOptions{
			SkipInstallBrowsers: true,
		})
	})
	return driverErr
}

// LaunchBrowser starts a persistent-context Chrome with the stealth
// flags applied. Session cookies from state.json are injected manually:
// the persistent profile alone does not retain them across restarts.
func LaunchBrowser(opts LaunchOptions) (*BrowserSession, error) {
	if err := installDriver(); err != nil {
		return nil, fmt.Errorf("install playwright driver: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	browserCtx, err := pw.Chromium.LaunchPersistentContext(opts.ProfileDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Channel:           playwright.String("chrome"),
			Headless:          playwright.Bool(opts.Headless),
			NoViewport:        playwright.Bool(true),
			IgnoreDefaultArgs: []string{"--enable-automation"},
			UserAgent:         playwright.String(ua),
			Args:              stealthArgs,
		})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch browser context: %w", err)
	}

	if opts.StateFile != "" {
		if err := injectCookies(browserCtx, opts.StateFile); err != nil {
			slog.Warn("cookie injection failed", slog.Any("error", err))
		}
	}

	var pacer *rate.Limiter
	if opts.ActionsPerSecond > 0 {
		pacer = rate.NewLimiter(rate.Limit(opts.ActionsPerSecond), 1)
	}

	engine.IncrBrowserSessions()
	slog.Info("browser session started",
		slog.Bool("headless", opts.Headless),
		slog.String("profile", opts.ProfileDir))

	return &BrowserSession{pw: pw, Context: browserCtx, pacer: pacer}, nil
}

// NewPage opens a page in the session context.
func (s *BrowserSession) NewPage() (playwright.Page, error) {
	page, err := s.Context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return page, nil
}

// Pace blocks until the next UI action is allowed.
func (s *BrowserSession) Pace(ctx context.Context) error {
	if s.pacer == nil {
		return nil
	}
	return s.pacer.Wait(ctx)
}

// SaveState writes cookies and local storage to path.
func (s *BrowserSession) SaveState(path string) error {
	if _, err := s.Context.StorageState(path); err != nil {
		return fmt.Errorf("save browser state: %w", err)
	}
	return nil
}

// Close shuts down the context and the playwright driver. Errors are
// logged, not returned: close runs on every exit path.
func (s *BrowserSession) Close() {
	if err := s.Context.Close(); err != nil {
		slog.Debug("browser context close", slog.Any("error", err))
	}
	if err := s.pw.Stop(); err != nil {
		slog.Debug("playwright stop", slog.Any("error", err))
	}
}

// storedCookie mirrors the cookie entries in a storage-state file.
type storedCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// injectCookies loads cookies out of a saved state.json and adds them
// to the context. Session cookies carry expires=-1 and are exactly the
// ones the persistent profile loses, so this runs on every launch.
func injectCookies(browserCtx playwright.BrowserContext, stateFile string) error {
	data, err := os.ReadFile(stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var state struct {
		Cookies []storedCookie `json:"cookies"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parse state file: %w", err)
	}
	if len(state.Cookies) == 0 {
		return nil
	}

	cookies := make([]playwright.OptionalCookie, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		oc := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			Expires:  playwright.Float(c.Expires),
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
		}
		switch c.SameSite {
		case "Strict":
			oc.SameSite = playwright.SameSiteAttributeStrict
		case "Lax":
			oc.SameSite = playwright.SameSiteAttributeLax
		case "None":
			oc.SameSite = playwright.SameSiteAttributeNone
		}
		cookies = append(cookies, oc)
	}

	if err := browserCtx.AddCookies(cookies); err != nil {
		return fmt.Errorf("add cookies: %w", err)
	}
	slog.Debug("cookies injected", slog.Int("count", len(cookies)))
	return nil
}

// RandomDelay sleeps a random interval, breaking up the cadence of
// scripted actions.
func RandomDelay(minMS, maxMS int) {
	d := time.Duration(minMS+rand.IntN(maxMS-minMS+1)) * time.Millisecond
	time.Sleep(d)
}

// HumanType types into the locator with per-character delays and
// occasional longer pauses.
func HumanType(locator playwright.Locator, text string) error {
	if err := locator.Click(); err != nil {
		return err
	}
	for _, r := range text {
		delay := 25 + rand.Float64()*50
		if err := locator.Type(string(r), playwright.LocatorTypeOptions{
			Delay: playwright.Float(delay),
		}); err != nil {
			return err
		}
		if rand.Float64() < 0.05 {
			RandomDelay(150, 400)
		}
	}
	return nil
}

// RealisticClick moves toward the element before clicking and pads the
// click with short delays.
func RealisticClick(page playwright.Page, locator playwright.Locator) error {
	if box, err := locator.BoundingBox(); err == nil && box != nil {
		x := box.X + box.Width/2
		y := box.Y + box.Height/2
		if err := page.Mouse().Move(x, y, playwright.MouseMoveOptions{
			Steps: playwright.Int(5),
		}); err != nil {
			slog.Debug("mouse move", slog.Any("error", err))
		}
	}
	RandomDelay(100, 300)
	if err := locator.Click(); err != nil {
		return err
	}
	RandomDelay(100, 300)
	return nil
}
