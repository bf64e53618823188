package engine

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	stealth "github.com/anatolykoptev/go-stealth"
)

// InitFromEnv assembles the engine configuration from environment
// variables and initializes the engine and cache. Shared by the MCP
// server entry point and the nlm CLI.
func InitFromEnv() {
	c := Config{
		DataDir:              env.Str("NLM_DATA_DIR", defaultDataDir()),
		LibraryFile:          env.Str("NLM_LIBRARY_FILE", ""),
		Headless:             parseBool(env.Str("NLM_HEADLESS", "true"), true),
		LoginTimeout:         env.Duration("NLM_LOGIN_TIMEOUT", 10*time.Minute),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 10*time.Second),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 6000),
		ActionsPerSecond:     env.Float("NLM_ACTIONS_PER_SECOND", 2.0),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 500),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	bc, err := stealth.NewClient(stealth.WithTimeout(15))
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	Init(c)

	InitCache(env.Str("REDIS_URL", ""), CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".go_notebooklm"
	}
	return filepath.Join(home, ".go_notebooklm")
}

// parseBool parses a string as boolean with a default value.
// Accepts "true", "1", "yes" as true; empty returns the default.
func parseBool(s string, defaultVal bool) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return defaultVal
	}
	return s == "true" || s == "1" || s == "yes"
}
