package notebooks

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
)

// Browser state older than this still works sometimes, but Google
// tends to force a fresh login past a week.
const authStaleAfter = 7 * 24 * time.Hour

var notebookLMURLRe = regexp.MustCompile(`^https://notebooklm\.google\.com/`)

// AuthManager owns the hybrid auth layout on disk: a persistent
// browser profile for fingerprint consistency plus a state.json whose
// session cookies are re-injected on every launch (the profile alone
// drops them).
type AuthManager struct {
	dataDir         string
	browserStateDir string
	stateFile       string
	authInfoFile    string
	profileDir      string
}

// NewAuthManager creates the on-disk layout under dataDir.
func NewAuthManager(dataDir string) (*AuthManager, error) {
	m := &AuthManager{
		dataDir:         dataDir,
		browserStateDir: filepath.Join(dataDir, "browser_state"),
	}
	m.stateFile = filepath.Join(m.browserStateDir, "state.json")
	m.authInfoFile = filepath.Join(dataDir, "auth_info.json")
	m.profileDir = filepath.Join(m.browserStateDir, "browser_profile")

	if err := os.MkdirAll(m.browserStateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create auth dirs: %w", err)
	}
	return m, nil
}

// StateFile returns the path to the saved browser state.
func (m *AuthManager) StateFile() string { return m.stateFile }

// ProfileDir returns the persistent browser profile directory.
func (m *AuthManager) ProfileDir() string { return m.profileDir }

// AuthStatus describes the stored credentials.
type AuthStatus struct {
	Authenticated   bool    `json:"authenticated"`
	StateFile       string  `json:"state_file"`
	StateExists     bool    `json:"state_exists"`
	StateAgeHours   float64 `json:"state_age_hours,omitempty"`
	Stale           bool    `json:"stale,omitempty"`
	AuthenticatedAt string  `json:"authenticated_at,omitempty"`
	CookieCount     int     `json:"cookies_count,omitempty"`
	HasStorage      bool    `json:"has_storage,omitempty"`
}

type authInfo struct {
	AuthenticatedAt time.Time `json:"authenticated_at"`
}

// IsAuthenticated reports whether saved browser state exists. Stale
// state still counts but is logged.
func (m *AuthManager) IsAuthenticated() bool {
	fi, err := os.Stat(m.stateFile)
	if err != nil {
		return false
	}
	if age := time.Since(fi.ModTime()); age > authStaleAfter {
		slog.Warn("browser state is stale, re-authentication may be needed",
			slog.Float64("age_days", age.Hours()/24))
	}
	return true
}

// Status collects everything known about the stored auth.
func (m *AuthManager) Status() AuthStatus {
	engine.IncrAuthChecks()

	st := AuthStatus{StateFile: m.stateFile}

	fi, err := os.Stat(m.stateFile)
	if err == nil {
		st.StateExists = true
		st.Authenticated = true
		age := time.Since(fi.ModTime())
		st.StateAgeHours = age.Hours()
		st.Stale = age > authStaleAfter
	}

	if data, err := os.ReadFile(m.authInfoFile); err == nil {
		var info authInfo
		if json.Unmarshal(data, &info) == nil && !info.AuthenticatedAt.IsZero() {
			st.AuthenticatedAt = info.AuthenticatedAt.Format(time.RFC3339)
		}
	}

	if data, err := os.ReadFile(m.stateFile); err == nil {
		var state struct {
			Cookies []json.RawMessage `json:"cookies"`
			Origins []json.RawMessage `json:"origins"`
		}
		if json.Unmarshal(data, &state) == nil {
			st.CookieCount = len(state.Cookies)
			st.HasStorage = len(state.Origins) > 0
		}
	}
	return st
}

// Setup runs the interactive login: opens NotebookLM in a visible (or
// headless, for already-valid profiles) browser and waits for the URL
// to land back on the NotebookLM origin, then saves state.
func (m *AuthManager) Setup(headless bool, timeout time.Duration) error {
	slog.Info("starting authentication setup", slog.Duration("timeout", timeout))

	session, err := LaunchBrowser(LaunchOptions{
		Headless:   headless,
		ProfileDir: m.profileDir,
		StateFile:  m.stateFile,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	page, err := session.NewPage()
	if err != nil {
		return err
	}

	if _, err := page.Goto(NotebookLMBaseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("open notebooklm: %w", err)
	}

	if onNotebookLM(page.URL()) {
		slog.Info("already authenticated")
		if err := session.SaveState(m.stateFile); err != nil {
			return err
		}
		return m.saveAuthInfo()
	}

	slog.Info("waiting for manual login", slog.Duration("timeout", timeout))
	if err := page.WaitForURL(notebookLMURLRe, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("login timed out: %w", err)
	}

	slog.Info("login successful")
	if err := session.SaveState(m.stateFile); err != nil {
		return err
	}
	return m.saveAuthInfo()
}

// Validate opens NotebookLM headless with the stored state and checks
// it is not redirected to the Google login page.
func (m *AuthManager) Validate() (bool, error) {
	engine.IncrAuthChecks()

	if !m.IsAuthenticated() {
		return false, nil
	}

	session, err := LaunchBrowser(LaunchOptions{
		Headless:   true,
		ProfileDir: m.profileDir,
		StateFile:  m.stateFile,
	})
	if err != nil {
		return false, err
	}
	defer session.Close()

	page, err := session.NewPage()
	if err != nil {
		return false, err
	}

	if _, err := page.Goto(NotebookLMBaseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return false, fmt.Errorf("open notebooklm: %w", err)
	}

	ok := onNotebookLM(page.URL())
	if !ok {
		slog.Info("stored authentication rejected", slog.String("url", page.URL()))
	}
	return ok, nil
}

// Clear removes all stored auth: state file, auth info, and the whole
// browser state directory including the profile.
func (m *AuthManager) Clear() error {
	for _, f := range []string{m.stateFile, m.authInfoFile} {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear auth: %w", err)
		}
	}
	if err := os.RemoveAll(m.browserStateDir); err != nil {
		return fmt.Errorf("clear browser state: %w", err)
	}
	if err := os.MkdirAll(m.browserStateDir, 0o755); err != nil {
		return fmt.Errorf("recreate browser state dir: %w", err)
	}
	slog.Info("authentication cleared")
	return nil
}

// Reauth clears stored auth and runs a fresh setup.
func (m *AuthManager) Reauth(headless bool, timeout time.Duration) error {
	if err := m.Clear(); err != nil {
		return err
	}
	return m.Setup(headless, timeout)
}

func (m *AuthManager) saveAuthInfo() error {
	data, err := json.MarshalIndent(authInfo{AuthenticatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}
	// Metadata only; a write failure here does not invalidate the
	// saved browser state.
	if err := os.WriteFile(m.authInfoFile, data, 0o600); err != nil {
		slog.Warn("auth info write failed", slog.Any("error", err))
	}
	return nil
}

func onNotebookLM(url string) bool {
	return strings.Contains(url, "notebooklm.google.com") &&
		!strings.Contains(url, "accounts.google.com")
}
