package notebooks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testURL = "https://notebooklm.google.com/notebook/a1b2c3d4"

func newTestLibrary(t *testing.T) (*Library, *MemStore) {
	t.Helper()
	store := NewMemStore()
	l, err := Open(store)
	if err != nil {
		t.Fatal(err)
	}
	return l, store
}

func mustAdd(t *testing.T, l *Library, name string) *Notebook {
	t.Helper()
	n, err := l.Add(AddInput{
		URL:         testURL,
		Name:        name,
		Description: "desc",
		Topics:      []string{"go"},
	})
	if err != nil {
		t.Fatalf("Add(%q): %v", name, err)
	}
	return n
}

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"My Research Notes", "my-research-notes"},
		{"my_research_notes", "my-research-notes"},
		{"Simple", "simple"},
		{"Mixed_Case Name", "mixed-case-name"},
	}
	for _, tt := range tests {
		if got := DeriveID(tt.name); got != tt.want {
			t.Errorf("DeriveID(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAddFirstBecomesActive(t *testing.T) {
	l, store := newTestLibrary(t)

	n := mustAdd(t, l, "First")
	if n.ID != "first" {
		t.Errorf("id = %q", n.ID)
	}
	if n.UseCount != 0 || n.LastUsed != nil {
		t.Errorf("new record should have zero usage: %+v", n)
	}
	if active := l.Active(); active == nil || active.ID != "first" {
		t.Errorf("first record should be active, got %+v", active)
	}
	if store.Saves != 1 {
		t.Errorf("expected 1 snapshot write, got %d", store.Saves)
	}

	mustAdd(t, l, "Second")
	if active := l.Active(); active.ID != "first" {
		t.Errorf("second add must not steal active, got %q", active.ID)
	}
}

func TestAddDuplicateID(t *testing.T) {
	l, _ := newTestLibrary(t)
	mustAdd(t, l, "My Notes")

	_, err := l.Add(AddInput{URL: testURL, Name: "my_notes", Topics: []string{"x"}})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	if len(l.List()) != 1 {
		t.Errorf("failed add must not mutate library")
	}
}

func TestAddRejectsBadURL(t *testing.T) {
	l, store := newTestLibrary(t)

	_, err := l.Add(AddInput{URL: "https://evil.com/notebook/abc", Name: "Bad"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if store.Saves != 0 {
		t.Error("failed add must not persist")
	}
}

func TestUpdatePartial(t *testing.T) {
	l, _ := newTestLibrary(t)
	mustAdd(t, l, "Notes")

	desc := "new description"
	got, err := l.Update("notes", UpdateInput{Description: &desc, Tags: []string{"a", "b"}})
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != desc {
		t.Errorf("description = %q", got.Description)
	}
	if got.Name != "Notes" {
		t.Errorf("omitted name must be kept, got %q", got.Name)
	}
	if len(got.Tags) != 2 {
		t.Errorf("tags = %v", got.Tags)
	}
	if len(got.Topics) != 1 || got.Topics[0] != "go" {
		t.Errorf("omitted topics must be kept, got %v", got.Topics)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("updated_at must be refreshed")
	}
}

func TestUpdateBadURLLeavesRecordUntouched(t *testing.T) {
	l, _ := newTestLibrary(t)
	mustAdd(t, l, "Notes")

	badURL := "http://notebooklm.google.com/notebook/abc"
	name := "Renamed"
	_, err := l.Update("notes", UpdateInput{URL: &badURL, Name: &name})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if got := l.Get("notes"); got.Name != "Notes" {
		t.Errorf("partial update applied despite URL failure: %+v", got)
	}
}

func TestUpdateCopiesCallerSlices(t *testing.T) {
	l, _ := newTestLibrary(t)
	mustAdd(t, l, "Notes")

	tags := []string{"keep"}
	topics := []string{"stable"}
	if _, err := l.Update("notes", UpdateInput{Tags: tags, Topics: topics}); err != nil {
		t.Fatal(err)
	}
	tags[0] = "mutated"
	topics[0] = "mutated"

	got := l.Get("notes")
	if got.Tags[0] != "keep" {
		t.Errorf("record shares the caller's tags slice: %v", got.Tags)
	}
	if got.Topics[0] != "stable" {
		t.Errorf("record shares the caller's topics slice: %v", got.Topics)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	l, _ := newTestLibrary(t)
	if _, err := l.Update("ghost", UpdateInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	l, _ := newTestLibrary(t)
	mustAdd(t, l, "One")
	mustAdd(t, l, "Two")
	mustAdd(t, l, "Three")

	ok, err := l.Remove("ghost")
	if err != nil || ok {
		t.Errorf("removing unknown id: ok=%v err=%v, want false nil", ok, err)
	}

	// "one" is active; removing it promotes the first remaining record.
	ok, err = l.Remove("one")
	if err != nil || !ok {
		t.Fatalf("Remove = %v, %v", ok, err)
	}
	if active := l.Active(); active == nil || active.ID != "two" {
		t.Errorf("active after removal = %+v, want two", active)
	}

	l.Remove("two")
	l.Remove("three")
	if active := l.Active(); active != nil {
		t.Errorf("empty library must have no active record, got %+v", active)
	}
}

func TestIncrementUse(t *testing.T) {
	l, _ := newTestLibrary(t)
	mustAdd(t, l, "Notes")

	var last *Notebook
	for i := 0; i < 3; i++ {
		n, err := l.IncrementUse("notes")
		if err != nil {
			t.Fatal(err)
		}
		last = n
	}
	if last.UseCount != 3 {
		t.Errorf("use_count = %d, want 3", last.UseCount)
	}
	if last.LastUsed == nil {
		t.Error("last_used must be set")
	}

	if _, err := l.IncrementUse("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	l, _ := newTestLibrary(t)
	l.Add(AddInput{URL: testURL, Name: "Go Notes", Description: "language research", Topics: []string{"golang"}})
	l.Add(AddInput{URL: testURL, Name: "Cooking", Description: "recipes", Topics: []string{"food"}, Tags: []string{"weekend"}})

	if got := l.Search("GOLANG"); len(got) != 1 || got[0].ID != "go-notes" {
		t.Errorf("case-insensitive topic search failed: %v", got)
	}
	// Tag-only match: "weekend" appears in no other field.
	if got := l.Search("weekend"); len(got) != 1 || got[0].ID != "cooking" {
		t.Errorf("tag search failed: %v", got)
	}
	if got := l.Search("nomatch"); len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}

func TestSelect(t *testing.T) {
	l, _ := newTestLibrary(t)
	mustAdd(t, l, "One")
	mustAdd(t, l, "Two")

	n, err := l.Select("two")
	if err != nil || n.ID != "two" {
		t.Fatalf("Select = %+v, %v", n, err)
	}
	if l.Active().ID != "two" {
		t.Error("active not updated")
	}

	if _, err := l.Select("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetStats(t *testing.T) {
	l, _ := newTestLibrary(t)
	l.Add(AddInput{URL: testURL, Name: "One", Topics: []string{"a", "b"}})
	l.Add(AddInput{URL: testURL, Name: "Two", Topics: []string{"b", "c"}})
	l.IncrementUse("two")
	l.IncrementUse("two")
	l.IncrementUse("one")

	s := l.GetStats()
	if s.TotalNotebooks != 2 {
		t.Errorf("total = %d", s.TotalNotebooks)
	}
	if s.TotalTopics != 3 {
		t.Errorf("distinct topics = %d, want 3", s.TotalTopics)
	}
	if s.TotalUseCount != 3 {
		t.Errorf("total use count = %d, want 3", s.TotalUseCount)
	}
	if s.MostUsed == nil || s.MostUsed.ID != "two" {
		t.Errorf("most used = %+v, want two", s.MostUsed)
	}
	if s.Active == nil || s.Active.ID != "one" {
		t.Errorf("active = %+v, want one", s.Active)
	}
	if s.LibraryPath != l.Location() || s.LibraryPath == "" {
		t.Errorf("library path = %q, want %q", s.LibraryPath, l.Location())
	}
}

func TestGetStatsTieBreaksFirstInOrder(t *testing.T) {
	l, _ := newTestLibrary(t)
	mustAdd(t, l, "One")
	mustAdd(t, l, "Two")

	s := l.GetStats()
	if s.MostUsed == nil || s.MostUsed.ID != "one" {
		t.Errorf("tie must break toward first record, got %+v", s.MostUsed)
	}
}

func TestPersistErrorSurfaced(t *testing.T) {
	l, store := newTestLibrary(t)
	store.SaveErr = errors.New("disk full")

	if _, err := l.Add(AddInput{URL: testURL, Name: "Doomed"}); err == nil {
		t.Fatal("save failure must be surfaced")
	}
	if len(l.List()) != 0 || l.Active() != nil {
		t.Error("failed add must leave the library empty")
	}
}

func TestPersistErrorRollsBack(t *testing.T) {
	l, store := newTestLibrary(t)
	mustAdd(t, l, "One")
	mustAdd(t, l, "Two")
	if _, err := l.IncrementUse("one"); err != nil {
		t.Fatal(err)
	}

	store.SaveErr = errors.New("disk full")

	if _, err := l.Add(AddInput{URL: testURL, Name: "Three"}); err == nil {
		t.Fatal("expected add failure")
	}
	if len(l.List()) != 2 {
		t.Error("failed add left a resident record")
	}

	name := "Renamed"
	if _, err := l.Update("one", UpdateInput{Name: &name, Tags: []string{"x"}}); err == nil {
		t.Fatal("expected update failure")
	}
	if got := l.Get("one"); got.Name != "One" || len(got.Tags) != 0 {
		t.Errorf("failed update mutated the record: %+v", got)
	}

	if ok, err := l.Remove("one"); ok || err == nil {
		t.Fatalf("expected remove failure, got ok=%v err=%v", ok, err)
	}
	if l.Get("one") == nil {
		t.Error("failed remove dropped the record")
	}
	if active := l.Active(); active == nil || active.ID != "one" {
		t.Errorf("failed remove changed active: %+v", active)
	}

	if _, err := l.Select("two"); err == nil {
		t.Fatal("expected select failure")
	}
	if l.Active().ID != "one" {
		t.Error("failed select changed active")
	}

	if _, err := l.IncrementUse("one"); err == nil {
		t.Fatal("expected use failure")
	}
	if got := l.Get("one"); got.UseCount != 1 {
		t.Errorf("failed use changed use_count: %d", got.UseCount)
	}

	// A later successful save picks up the unchanged state.
	store.SaveErr = nil
	if _, err := l.Select("two"); err != nil {
		t.Fatal(err)
	}
	if l.Active().ID != "two" {
		t.Error("select after recovery failed")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")

	l, err := Open(NewFileStore(path))
	if err != nil {
		t.Fatal(err)
	}
	mustAdd(t, l, "One")
	mustAdd(t, l, "Two")
	if _, err := l.Select("two"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.IncrementUse("one"); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Open(NewFileStore(path))
	if err != nil {
		t.Fatal(err)
	}
	got := reloaded.List()
	if len(got) != 2 {
		t.Fatalf("reloaded %d records, want 2", len(got))
	}
	if got[0].ID != "one" || got[1].ID != "two" {
		t.Errorf("order not preserved: %q, %q", got[0].ID, got[1].ID)
	}
	if active := reloaded.Active(); active == nil || active.ID != "two" {
		t.Errorf("active after reload = %+v, want two", active)
	}
	if reloaded.Get("one").UseCount != 1 {
		t.Error("use_count lost in round trip")
	}
}

func TestFileStoreMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	l, err := Open(NewFileStore(filepath.Join(dir, "missing.json")))
	if err != nil {
		t.Fatalf("missing snapshot must load empty: %v", err)
	}
	if len(l.List()) != 0 {
		t.Error("expected empty library")
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err = Open(NewFileStore(corrupt))
	if err != nil {
		t.Fatalf("corrupt snapshot must load empty: %v", err)
	}
	if len(l.List()) != 0 {
		t.Error("expected empty library after corrupt read")
	}
}

func TestOpenClearsDanglingActiveID(t *testing.T) {
	store := NewMemStore()
	ghost := "ghost"
	store.snap = &Snapshot{
		Notebooks:        map[string]*Notebook{},
		ActiveNotebookID: &ghost,
	}

	l, err := Open(store)
	if err != nil {
		t.Fatal(err)
	}
	if l.Active() != nil {
		t.Error("dangling active id must resolve to nil")
	}
}
