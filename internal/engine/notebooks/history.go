package notebooks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
)

// Usage actions recorded in history.
const (
	ActionCreated     = "created"
	ActionActivated   = "activated"
	ActionUsed        = "used"
	ActionUpdated     = "updated"
	ActionRemoved     = "removed"
	ActionAuthRefresh = "auth_refresh"
)

// UsageEvent is one row of notebook usage history.
type UsageEvent struct {
	ID         int64  `json:"id"`
	NotebookID string `json:"notebook_id"`
	Action     string `json:"action"`
	Detail     string `json:"detail,omitempty"`
	At         string `json:"at"`
}

// HistoryListInput filters history queries.
type HistoryListInput struct {
	NotebookID string `json:"notebook_id,omitempty" jsonschema:"Filter to one notebook"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Max rows (default 50, cap 200)"`
}

// HistoryListResult is the output of a history query.
type HistoryListResult struct {
	Events []UsageEvent `json:"events"`
	Total  int          `json:"total"`
}

var (
	historyDB   *sql.DB
	historyOnce sync.Once
	historyErr  error
)

// openHistoryDB opens (or creates) the SQLite history database under
// the configured data dir.
func openHistoryDB() (*sql.DB, error) {
	historyOnce.Do(func() {
		dir := engine.Cfg.DataDir
		if err := os.MkdirAll(dir, 0750); err != nil {
			historyErr = fmt.Errorf("history: mkdir %s: %w", dir, err)
			return
		}
		dbPath := filepath.Join(dir, "history.db")
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			historyErr = fmt.Errorf("history: open db: %w", err)
			return
		}
		db.SetMaxOpenConns(1) // SQLite: single writer
		if err := initHistorySchema(db); err != nil {
			historyErr = fmt.Errorf("history: init schema: %w", err)
			return
		}
		historyDB = db
	})
	return historyDB, historyErr
}

func initHistorySchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS usage_history (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		notebook_id TEXT NOT NULL,
		action      TEXT NOT NULL,
		detail      TEXT,
		at          TEXT NOT NULL
	)`)
	return err
}

// RecordUsage appends one event. History is an audit trail, not part
// of library consistency, so callers treat failures as best effort.
func RecordUsage(_ context.Context, notebookID, action, detail string) error {
	if notebookID == "" || action == "" {
		return errors.New("history: notebook_id and action are required")
	}

	db, err := openHistoryDB()
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.Exec(
		`INSERT INTO usage_history (notebook_id, action, detail, at) VALUES (?, ?, ?, ?)`,
		notebookID, action, detail, now,
	); err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// ListHistory returns events newest first, optionally filtered to one
// notebook.
func ListHistory(_ context.Context, input HistoryListInput) (*HistoryListResult, error) {
	db, err := openHistoryDB()
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows *sql.Rows
	if input.NotebookID != "" {
		rows, err = db.Query(
			`SELECT id, notebook_id, action, detail, at
			 FROM usage_history WHERE notebook_id = ? ORDER BY id DESC LIMIT ?`,
			input.NotebookID, limit,
		)
	} else {
		rows, err = db.Query(
			`SELECT id, notebook_id, action, detail, at
			 FROM usage_history ORDER BY id DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var events []UsageEvent
	for rows.Next() {
		var e UsageEvent
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.NotebookID, &e.Action, &detail, &e.At); err != nil {
			continue
		}
		e.Detail = detail.String
		events = append(events, e)
	}

	var total int
	if input.NotebookID != "" {
		db.QueryRow(`SELECT COUNT(*) FROM usage_history WHERE notebook_id = ?`, input.NotebookID).Scan(&total) //nolint:errcheck
	} else {
		db.QueryRow(`SELECT COUNT(*) FROM usage_history`).Scan(&total) //nolint:errcheck
	}

	if events == nil {
		events = []UsageEvent{}
	}
	return &HistoryListResult{Events: events, Total: total}, nil
}
