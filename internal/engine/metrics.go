package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	FetchRequests    atomic.Int64
	FetchErrors      atomic.Int64
	PreviewRequests  atomic.Int64
	BrowserSessions  atomic.Int64
	CreateRequests   atomic.Int64
	CreateErrors     atomic.Int64
	AuthChecks       atomic.Int64
	LibraryMutations atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"fetch_requests":    metrics.FetchRequests.Load(),
		"fetch_errors":      metrics.FetchErrors.Load(),
		"preview_requests":  metrics.PreviewRequests.Load(),
		"browser_sessions":  metrics.BrowserSessions.Load(),
		"create_requests":   metrics.CreateRequests.Load(),
		"create_errors":     metrics.CreateErrors.Load(),
		"auth_checks":       metrics.AuthChecks.Load(),
		"library_mutations": metrics.LibraryMutations.Load(),
		"cache_hits":        hits,
		"cache_misses":      misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"fetch_requests", "fetch_errors",
		"preview_requests",
		"browser_sessions", "create_requests", "create_errors",
		"auth_checks", "library_mutations",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the notebooks sub-package.
func IncrBrowserSessions()  { metrics.BrowserSessions.Add(1) }
func IncrCreateRequests()   { metrics.CreateRequests.Add(1) }
func IncrCreateErrors()     { metrics.CreateErrors.Add(1) }
func IncrAuthChecks()       { metrics.AuthChecks.Add(1) }
func IncrLibraryMutations() { metrics.LibraryMutations.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
