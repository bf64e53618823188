package notebooks

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAuthManagerLayout(t *testing.T) {
	dir := t.TempDir()
	m, err := NewAuthManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if m.StateFile() != filepath.Join(dir, "browser_state", "state.json") {
		t.Errorf("state file = %q", m.StateFile())
	}
	if m.ProfileDir() != filepath.Join(dir, "browser_state", "browser_profile") {
		t.Errorf("profile dir = %q", m.ProfileDir())
	}
	if _, err := os.Stat(filepath.Join(dir, "browser_state")); err != nil {
		t.Errorf("browser_state dir not created: %v", err)
	}
}

func TestIsAuthenticated(t *testing.T) {
	m, err := NewAuthManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if m.IsAuthenticated() {
		t.Error("no state file, expected not authenticated")
	}

	if err := os.WriteFile(m.StateFile(), []byte(`{"cookies":[]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if !m.IsAuthenticated() {
		t.Error("state file present, expected authenticated")
	}
}

func TestStatusReadsStateAndInfo(t *testing.T) {
	dir := t.TempDir()
	m, err := NewAuthManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	state := `{"cookies":[{"name":"a","value":"1"},{"name":"b","value":"2"}],"origins":[{"origin":"https://notebooklm.google.com"}]}`
	if err := os.WriteFile(m.StateFile(), []byte(state), 0o600); err != nil {
		t.Fatal(err)
	}
	info := `{"authenticated_at":"2026-08-20T10:00:00Z"}`
	if err := os.WriteFile(filepath.Join(dir, "auth_info.json"), []byte(info), 0o600); err != nil {
		t.Fatal(err)
	}

	st := m.Status()
	if !st.Authenticated || !st.StateExists {
		t.Errorf("status = %+v, want authenticated", st)
	}
	if st.CookieCount != 2 {
		t.Errorf("cookie count = %d, want 2", st.CookieCount)
	}
	if !st.HasStorage {
		t.Error("expected has_storage")
	}
	if st.AuthenticatedAt == "" {
		t.Error("expected authenticated_at from info file")
	}
	if st.Stale {
		t.Error("fresh state must not be stale")
	}
}

func TestStatusStale(t *testing.T) {
	m, err := NewAuthManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(m.StateFile(), []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-8 * 24 * time.Hour)
	if err := os.Chtimes(m.StateFile(), old, old); err != nil {
		t.Fatal(err)
	}

	st := m.Status()
	if !st.Stale {
		t.Errorf("8-day-old state must be stale: %+v", st)
	}
	if st.StateAgeHours < 7*24 {
		t.Errorf("age hours = %f", st.StateAgeHours)
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	m, err := NewAuthManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(m.StateFile(), []byte(`{}`), 0o600)
	os.WriteFile(filepath.Join(dir, "auth_info.json"), []byte(`{}`), 0o600)
	os.MkdirAll(m.ProfileDir(), 0o755)

	if err := m.Clear(); err != nil {
		t.Fatal(err)
	}
	if m.IsAuthenticated() {
		t.Error("state must be gone after clear")
	}
	if _, err := os.Stat(filepath.Join(dir, "auth_info.json")); !os.IsNotExist(err) {
		t.Error("auth info must be gone after clear")
	}
	// Directory is recreated empty so the next setup can write into it.
	if _, err := os.Stat(filepath.Join(dir, "browser_state")); err != nil {
		t.Errorf("browser_state dir missing after clear: %v", err)
	}
}

func TestOnNotebookLM(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://notebooklm.google.com/notebook/abc", true},
		{"https://notebooklm.google.com/", true},
		{"https://accounts.google.com/signin?continue=https://notebooklm.google.com", false},
		{"https://example.com/", false},
	}
	for _, tt := range tests {
		if got := onNotebookLM(tt.url); got != tt.want {
			t.Errorf("onNotebookLM(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
