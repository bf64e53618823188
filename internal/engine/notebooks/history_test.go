package notebooks

import (
	"context"
	"sync"
	"testing"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
)

// resetHistory points the singleton at a fresh database under dir.
func resetHistory(t *testing.T, dir string) {
	t.Helper()
	if historyDB != nil {
		historyDB.Close()
	}
	historyDB = nil
	historyErr = nil
	historyOnce = sync.Once{}
	engine.Init(engine.Config{DataDir: dir})
}

func TestRecordAndListHistory(t *testing.T) {
	resetHistory(t, t.TempDir())
	ctx := context.Background()

	if err := RecordUsage(ctx, "go-notes", ActionCreated, "from youtube"); err != nil {
		t.Fatal(err)
	}
	if err := RecordUsage(ctx, "go-notes", ActionUsed, ""); err != nil {
		t.Fatal(err)
	}
	if err := RecordUsage(ctx, "cooking", ActionCreated, ""); err != nil {
		t.Fatal(err)
	}

	all, err := ListHistory(ctx, HistoryListInput{})
	if err != nil {
		t.Fatal(err)
	}
	if all.Total != 3 || len(all.Events) != 3 {
		t.Fatalf("total = %d, events = %d", all.Total, len(all.Events))
	}
	// Newest first.
	if all.Events[0].NotebookID != "cooking" {
		t.Errorf("first event = %+v, want cooking", all.Events[0])
	}

	filtered, err := ListHistory(ctx, HistoryListInput{NotebookID: "go-notes"})
	if err != nil {
		t.Fatal(err)
	}
	if filtered.Total != 2 {
		t.Errorf("filtered total = %d, want 2", filtered.Total)
	}
	for _, e := range filtered.Events {
		if e.NotebookID != "go-notes" {
			t.Errorf("unexpected notebook in filtered results: %+v", e)
		}
	}
}

func TestRecordUsageValidation(t *testing.T) {
	resetHistory(t, t.TempDir())
	ctx := context.Background()

	if err := RecordUsage(ctx, "", ActionUsed, ""); err == nil {
		t.Error("empty notebook_id must fail")
	}
	if err := RecordUsage(ctx, "id", "", ""); err == nil {
		t.Error("empty action must fail")
	}
}

func TestListHistoryLimit(t *testing.T) {
	resetHistory(t, t.TempDir())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := RecordUsage(ctx, "nb", ActionUsed, ""); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ListHistory(ctx, HistoryListInput{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Events) != 2 {
		t.Errorf("events = %d, want 2", len(got.Events))
	}
	if got.Total != 5 {
		t.Errorf("total = %d, want 5", got.Total)
	}
}
