package engine

import (
	"net/http"
	"path/filepath"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	DataDir              string // root for library.json, browser_state/, history.db
	LibraryFile          string // defaults to DataDir/library.json
	Headless             bool
	LoginTimeout         time.Duration
	FetchTimeout         time.Duration
	MaxContentChars      int
	ActionsPerSecond     float64 // browser UI action pacing
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = previews fall back to plain HTTP
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (notebooks, nlmserver).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.LibraryFile == "" && c.DataDir != "" {
		c.LibraryFile = filepath.Join(c.DataDir, "library.json")
	}
	cfg = c
	Cfg = &cfg
}
