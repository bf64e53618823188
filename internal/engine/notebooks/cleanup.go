package notebooks

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Cleanup categories, in deletion order.
const (
	CategoryBrowserState = "browser_state"
	CategorySessions     = "sessions"
	CategoryLibrary      = "library"
	CategoryAuth         = "auth"
	CategoryOther        = "other"
	CategoryHistory      = "history"
)

// PathInfo describes one candidate for deletion.
type PathInfo struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"` // "file" or "dir"
}

// CleanupPreview lists everything a cleanup would remove, grouped by
// category.
type CleanupPreview struct {
	Categories map[string][]PathInfo `json:"categories"`
	TotalSize  int64                 `json:"total_size"`
	TotalItems int                   `json:"total_items"`
}

// CleanupResult reports what a cleanup actually did.
type CleanupResult struct {
	DryRun       bool         `json:"dry_run"`
	DeletedItems []string     `json:"deleted_items,omitempty"`
	FailedItems  []FailedItem `json:"failed_items,omitempty"`
	DeletedSize  int64        `json:"deleted_size"`
	DeletedCount int          `json:"deleted_count"`
	FailedCount  int          `json:"failed_count"`
}

type FailedItem struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// CleanupManager removes local skill data: browser state, session
// files, the library snapshot, auth metadata and the usage history.
type CleanupManager struct {
	dataDir string
}

func NewCleanupManager(dataDir string) *CleanupManager {
	return &CleanupManager{dataDir: dataDir}
}

// wellKnown are the data-dir entries with their own category; anything
// else falls into "other".
var wellKnown = map[string]bool{
	"browser_state":  true,
	"sessions.json":  true,
	"library.json":   true,
	"auth_info.json": true,
	"history.db":     true,
}

// Preview gathers everything cleanup would delete, with sizes. With
// preserveLibrary the library snapshot is excluded.
func (m *CleanupManager) Preview(preserveLibrary bool) (*CleanupPreview, error) {
	p := &CleanupPreview{Categories: map[string][]PathInfo{}}

	if _, err := os.Stat(m.dataDir); os.IsNotExist(err) {
		return p, nil
	}

	browserStateDir := filepath.Join(m.dataDir, "browser_state")
	if entries, err := os.ReadDir(browserStateDir); err == nil {
		for _, e := range entries {
			p.add(CategoryBrowserState, filepath.Join(browserStateDir, e.Name()), e.IsDir())
		}
	}

	p.addIfFile(CategorySessions, filepath.Join(m.dataDir, "sessions.json"))
	if !preserveLibrary {
		p.addIfFile(CategoryLibrary, filepath.Join(m.dataDir, "library.json"))
	}
	p.addIfFile(CategoryAuth, filepath.Join(m.dataDir, "auth_info.json"))
	p.addIfFile(CategoryHistory, filepath.Join(m.dataDir, "history.db"))

	if entries, err := os.ReadDir(m.dataDir); err == nil {
		for _, e := range entries {
			if !wellKnown[e.Name()] {
				p.add(CategoryOther, filepath.Join(m.dataDir, e.Name()), e.IsDir())
			}
		}
	}

	return p, nil
}

// Run deletes everything Preview reports. With dryRun it only reports
// the would-be effect. Individual failures are collected, not fatal.
func (m *CleanupManager) Run(preserveLibrary, dryRun bool) (*CleanupResult, error) {
	preview, err := m.Preview(preserveLibrary)
	if err != nil {
		return nil, err
	}

	if dryRun {
		return &CleanupResult{
			DryRun:       true,
			DeletedCount: preview.TotalItems,
			DeletedSize:  preview.TotalSize,
		}, nil
	}

	res := &CleanupResult{}
	for _, category := range []string{
		CategoryBrowserState, CategorySessions, CategoryLibrary,
		CategoryAuth, CategoryHistory, CategoryOther,
	} {
		for _, item := range preview.Categories[category] {
			if err := os.RemoveAll(item.Path); err != nil {
				res.FailedItems = append(res.FailedItems, FailedItem{
					Path: item.Path, Error: err.Error(),
				})
				continue
			}
			res.DeletedItems = append(res.DeletedItems, item.Path)
			res.DeletedSize += item.Size
			slog.Debug("cleanup deleted", slog.String("path", item.Path))
		}
	}
	res.DeletedCount = len(res.DeletedItems)
	res.FailedCount = len(res.FailedItems)

	// Leave the layout usable for the next auth setup.
	if res.FailedCount == 0 {
		if err := os.MkdirAll(filepath.Join(m.dataDir, "browser_state"), 0o755); err != nil {
			return res, fmt.Errorf("recreate browser_state: %w", err)
		}
	}

	slog.Info("cleanup complete",
		slog.Int("deleted", res.DeletedCount),
		slog.Int("failed", res.FailedCount),
		slog.String("freed", FormatSize(res.DeletedSize)))
	return res, nil
}

func (p *CleanupPreview) add(category, path string, isDir bool) {
	info := PathInfo{Path: path, Size: pathSize(path), Type: "file"}
	if isDir {
		info.Type = "dir"
	}
	p.Categories[category] = append(p.Categories[category], info)
	p.TotalSize += info.Size
	p.TotalItems++
}

func (p *CleanupPreview) addIfFile(category, path string) {
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		p.add(category, path, false)
	}
}

// pathSize returns the file size, or the recursive total for a
// directory. Unreadable entries count as zero.
func pathSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !fi.IsDir() {
		return fi.Size()
	}

	var total int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error { //nolint:errcheck
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// FormatSize renders a byte count for humans.
func FormatSize(size int64) string {
	s := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if s < 1024 {
			return fmt.Sprintf("%.1f %s", s, unit)
		}
		s /= 1024
	}
	return fmt.Sprintf("%.1f TB", s)
}
