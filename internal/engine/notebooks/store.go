package notebooks

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Snapshot is the whole library as persisted: every record plus which
// one is active. Written wholesale after every mutation.
type Snapshot struct {
	Notebooks        map[string]*Notebook `json:"notebooks"`
	ActiveNotebookID *string              `json:"active_notebook_id"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// Store persists library snapshots. Load returns an empty snapshot
// when nothing has been saved yet.
type Store interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
	Location() string
}

// FileStore keeps the snapshot as a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Location() string { return s.path }

// Load reads the snapshot file. A missing file yields an empty
// library. A corrupt file is logged and also yields an empty library
// rather than failing startup.
func (s *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptySnapshot(), nil
		}
		return nil, fmt.Errorf("read library snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("library snapshot corrupt, starting empty",
			slog.String("path", s.path),
			slog.Any("error", err))
		return emptySnapshot(), nil
	}
	if snap.Notebooks == nil {
		snap.Notebooks = map[string]*Notebook{}
	}
	return &snap, nil
}

// Save writes the snapshot atomically: temp file in the same directory,
// then rename. Write failures are returned so data loss is never
// silent.
func (s *FileStore) Save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode library snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create library dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".library-*.json")
	if err != nil {
		return fmt.Errorf("write library snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write library snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write library snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write library snapshot: %w", err)
	}
	return nil
}

// MemStore keeps the snapshot in memory. Used in tests and anywhere a
// throwaway library is needed.
type MemStore struct {
	snap    *Snapshot
	SaveErr error // when set, Save fails with this error
	Saves   int
}

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Location() string { return "memory" }

func (s *MemStore) Load() (*Snapshot, error) {
	if s.snap == nil {
		return emptySnapshot(), nil
	}
	return s.snap, nil
}

func (s *MemStore) Save(snap *Snapshot) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saves++
	s.snap = snap
	return nil
}

func emptySnapshot() *Snapshot {
	return &Snapshot{Notebooks: map[string]*Notebook{}}
}
