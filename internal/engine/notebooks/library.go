package notebooks

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound  = errors.New("notebook not found")
	ErrDuplicate = errors.New("notebook already exists")
)

// Notebook is one cataloged NotebookLM workspace.
type Notebook struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Topics       []string   `json:"topics"`
	ContentTypes []string   `json:"content_types"`
	UseCases     []string   `json:"use_cases"`
	Tags         []string   `json:"tags"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	UseCount     int        `json:"use_count"`
	LastUsed     *time.Time `json:"last_used"`
}

func (n *Notebook) clone() *Notebook {
	c := *n
	c.Topics = append([]string(nil), n.Topics...)
	c.ContentTypes = append([]string(nil), n.ContentTypes...)
	c.UseCases = append([]string(nil), n.UseCases...)
	c.Tags = append([]string(nil), n.Tags...)
	if n.LastUsed != nil {
		t := *n.LastUsed
		c.LastUsed = &t
	}
	return &c
}

// AddInput holds the fields for a new record. URL, Name, Description
// and Topics are required by callers; the rest default to empty.
type AddInput struct {
	URL          string   `json:"url" jsonschema:"NotebookLM notebook URL"`
	Name         string   `json:"name" jsonschema:"Display name, also the source of the record id"`
	Description  string   `json:"description" jsonschema:"What the notebook contains"`
	Topics       []string `json:"topics" jsonschema:"Topics covered"`
	ContentTypes []string `json:"content_types,omitempty" jsonschema:"Types of content"`
	UseCases     []string `json:"use_cases,omitempty" jsonschema:"When to use this notebook"`
	Tags         []string `json:"tags,omitempty" jsonschema:"Extra tags for organization"`
}

// UpdateInput carries partial updates: nil means keep the existing
// value, non-nil (including an empty slice) replaces it.
type UpdateInput struct {
	URL          *string  `json:"url,omitempty" jsonschema:"New URL, re-validated before applying"`
	Name         *string  `json:"name,omitempty" jsonschema:"New display name (id stays unchanged)"`
	Description  *string  `json:"description,omitempty" jsonschema:"New description"`
	Topics       []string `json:"topics,omitempty" jsonschema:"Replacement topics"`
	ContentTypes []string `json:"content_types,omitempty" jsonschema:"Replacement content types"`
	UseCases     []string `json:"use_cases,omitempty" jsonschema:"Replacement use cases"`
	Tags         []string `json:"tags,omitempty" jsonschema:"Replacement tags"`
}

// Stats summarizes the library.
type Stats struct {
	TotalNotebooks int       `json:"total_notebooks"`
	TotalTopics    int       `json:"total_topics"`
	TotalUseCount  int       `json:"total_use_count"`
	Active         *Notebook `json:"active_notebook"`
	MostUsed       *Notebook `json:"most_used_notebook"`
	LibraryPath    string    `json:"library_path"`
}

// Library is the aggregate: a keyed set of records plus the active
// selection. Every mutation rewrites the full snapshot through the
// store; when the write fails the in-memory change is rolled back so
// memory never diverges from disk. Safe for concurrent use within one
// process; concurrent writers from separate processes race (last
// writer wins).
type Library struct {
	mu       sync.Mutex
	store    Store
	records  map[string]*Notebook
	order    []string // insertion order, rebuilt from created_at on load
	activeID string
}

// Open loads the persisted snapshot into a Library. A missing or
// corrupt snapshot starts empty; a dangling active id is cleared.
func Open(store Store) (*Library, error) {
	snap, err := store.Load()
	if err != nil {
		return nil, err
	}

	l := &Library{store: store, records: snap.Notebooks}
	if l.records == nil {
		l.records = map[string]*Notebook{}
	}

	for id := range l.records {
		l.order = append(l.order, id)
	}
	sort.Slice(l.order, func(i, j int) bool {
		a, b := l.records[l.order[i]], l.records[l.order[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if snap.ActiveNotebookID != nil {
		if _, ok := l.records[*snap.ActiveNotebookID]; ok {
			l.activeID = *snap.ActiveNotebookID
		} else {
			slog.Warn("active notebook id not in library, clearing",
				slog.String("id", *snap.ActiveNotebookID))
		}
	}

	slog.Info("library loaded",
		slog.Int("notebooks", len(l.records)),
		slog.String("path", store.Location()))
	return l, nil
}

// DeriveID turns a display name into a record id: lowercased, spaces
// and underscores become hyphens. Stable across updates.
func DeriveID(name string) string {
	id := strings.ToLower(name)
	id = strings.ReplaceAll(id, " ", "-")
	id = strings.ReplaceAll(id, "_", "-")
	return id
}

// Add validates the URL, creates the record and persists. The first
// record added to an empty library becomes active.
func (l *Library) Add(in AddInput) (*Notebook, error) {
	validated, err := ValidateNotebookURL(in.URL)
	if err != nil {
		return nil, err
	}

	id := DeriveID(in.Name)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.records[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, id)
	}

	now := time.Now().UTC()
	n := &Notebook{
		ID:           id,
		URL:          validated,
		Name:         in.Name,
		Description:  in.Description,
		Topics:       orEmpty(in.Topics),
		ContentTypes: orEmpty(in.ContentTypes),
		UseCases:     orEmpty(in.UseCases),
		Tags:         orEmpty(in.Tags),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	prevActive := l.activeID
	l.records[id] = n
	l.order = append(l.order, id)
	if len(l.records) == 1 {
		l.activeID = id
	}

	if err := l.persist(); err != nil {
		delete(l.records, id)
		l.order = l.order[:len(l.order)-1]
		l.activeID = prevActive
		return nil, err
	}
	slog.Info("notebook added", slog.String("id", id), slog.String("name", in.Name))
	return n.clone(), nil
}

// Update applies a partial update. A supplied URL is re-validated
// before any field changes, so a bad URL leaves the record untouched.
func (l *Library) Update(id string, in UpdateInput) (*Notebook, error) {
	var validated string
	if in.URL != nil {
		v, err := ValidateNotebookURL(*in.URL)
		if err != nil {
			return nil, err
		}
		validated = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prev := n.clone()

	if in.URL != nil {
		n.URL = validated
	}
	if in.Name != nil {
		n.Name = *in.Name
	}
	if in.Description != nil {
		n.Description = *in.Description
	}
	// Slices are copied so a caller mutating its input afterwards
	// cannot reach into the stored record.
	if in.Topics != nil {
		n.Topics = orEmpty(in.Topics)
	}
	if in.ContentTypes != nil {
		n.ContentTypes = orEmpty(in.ContentTypes)
	}
	if in.UseCases != nil {
		n.UseCases = orEmpty(in.UseCases)
	}
	if in.Tags != nil {
		n.Tags = orEmpty(in.Tags)
	}
	n.UpdatedAt = time.Now().UTC()

	if err := l.persist(); err != nil {
		l.records[id] = prev
		return nil, err
	}
	return n.clone(), nil
}

// Remove deletes a record. Returns false (no error) when the id is
// unknown. Removing the active record promotes the first remaining
// record, if any.
func (l *Library) Remove(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.records[id]
	if !ok {
		return false, nil
	}

	prevOrder := append([]string(nil), l.order...)
	prevActive := l.activeID

	delete(l.records, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}

	if l.activeID == id {
		l.activeID = ""
		if len(l.order) > 0 {
			l.activeID = l.order[0]
		}
	}

	if err := l.persist(); err != nil {
		l.records[id] = n
		l.order = prevOrder
		l.activeID = prevActive
		return false, err
	}
	slog.Info("notebook removed", slog.String("id", id))
	return true, nil
}

// Get returns the record or nil when absent.
func (l *Library) Get(id string) *Notebook {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n, ok := l.records[id]; ok {
		return n.clone()
	}
	return nil
}

// List returns all records in insertion order.
func (l *Library) List() []*Notebook {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Notebook, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.records[id].clone())
	}
	return out
}

// Search returns records whose name, description, topics, tags or use
// cases contain the query, case-insensitive. Order follows List.
func (l *Library) Search(query string) []*Notebook {
	q := strings.ToLower(query)

	l.mu.Lock()
	defer l.mu.Unlock()

	var out []*Notebook
	for _, id := range l.order {
		n := l.records[id]
		haystack := strings.ToLower(strings.Join([]string{
			n.Name,
			n.Description,
			strings.Join(n.Topics, " "),
			strings.Join(n.Tags, " "),
			strings.Join(n.UseCases, " "),
		}, " "))
		if strings.Contains(haystack, q) {
			out = append(out, n.clone())
		}
	}
	return out
}

// Select marks a record as active.
func (l *Library) Select(id string) (*Notebook, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prevActive := l.activeID
	l.activeID = id
	if err := l.persist(); err != nil {
		l.activeID = prevActive
		return nil, err
	}
	slog.Info("notebook activated", slog.String("id", id))
	return n.clone(), nil
}

// Active returns the active record, or nil when none is set.
func (l *Library) Active() *Notebook {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.activeID == "" {
		return nil
	}
	if n, ok := l.records[l.activeID]; ok {
		return n.clone()
	}
	return nil
}

// IncrementUse bumps use_count and stamps last_used.
func (l *Library) IncrementUse(id string) (*Notebook, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prevCount, prevUsed := n.UseCount, n.LastUsed
	n.UseCount++
	now := time.Now().UTC()
	n.LastUsed = &now

	if err := l.persist(); err != nil {
		n.UseCount, n.LastUsed = prevCount, prevUsed
		return nil, err
	}
	return n.clone(), nil
}

// GetStats summarizes the library. Most-used ties break toward the
// earlier record in insertion order.
func (l *Library) GetStats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	topics := map[string]struct{}{}
	totalUse := 0
	var mostUsed *Notebook
	for _, id := range l.order {
		n := l.records[id]
		for _, t := range n.Topics {
			topics[t] = struct{}{}
		}
		totalUse += n.UseCount
		if mostUsed == nil || n.UseCount > mostUsed.UseCount {
			mostUsed = n
		}
	}

	s := Stats{
		TotalNotebooks: len(l.records),
		TotalTopics:    len(topics),
		TotalUseCount:  totalUse,
		LibraryPath:    l.Location(),
	}
	if mostUsed != nil {
		s.MostUsed = mostUsed.clone()
	}
	if n, ok := l.records[l.activeID]; ok && l.activeID != "" {
		s.Active = n.clone()
	}
	return s
}

// Location reports where the library is persisted.
func (l *Library) Location() string { return l.store.Location() }

// persist writes the full snapshot. Callers hold l.mu.
func (l *Library) persist() error {
	snap := &Snapshot{
		Notebooks: l.records,
		UpdatedAt: time.Now().UTC(),
	}
	if l.activeID != "" {
		id := l.activeID
		snap.ActiveNotebookID = &id
	}
	if err := l.store.Save(snap); err != nil {
		slog.Error("library save failed", slog.Any("error", err))
		return fmt.Errorf("persist library: %w", err)
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
