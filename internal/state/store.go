package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/comicvault/internal/config"
	"github.com/five82/comicvault/internal/job"
)

var (
	// ErrLocked means another process holds the journal.
	ErrLocked = errors.New("another comicvault process is tracking a job")
	// ErrNotAcquired means Update was called without holding the lock.
	ErrNotAcquired = errors.New("journal lock not held")
)

// Snapshot is the journal's record of the most recent job.
type Snapshot struct {
	BlobReference string    `toml:"blob_reference"`
	State         string    `toml:"state"`
	Attempts      int       `toml:"attempts"`
	ComicID       string    `toml:"comic_id,omitempty"`
	Title         string    `toml:"title,omitempty"`
	Message       string    `toml:"message,omitempty"`
	StartedAt     time.Time `toml:"started_at"`
	UpdatedAt     time.Time `toml:"updated_at"`
}

// Resumable reports whether watching the job again can still observe an
// outcome: it was being polled, or polling gave up before the backend did.
func (s Snapshot) Resumable() bool {
	if s.BlobReference == "" {
		return false
	}
	st, err := job.ParseState(s.State)
	if err != nil {
		return false
	}
	return st == job.Polling || st == job.TimedOut
}

// FromJob converts a tracker transition into a snapshot.
func FromJob(st job.State, j job.Job) Snapshot {
	snap := Snapshot{
		BlobReference: j.BlobReference,
		State:         st.String(),
		Attempts:      j.Attempts,
		Title:         j.Title(),
		Message:       j.Message,
		StartedAt:     j.StartedAt.UTC(),
		UpdatedAt:     j.UpdatedAt.UTC(),
	}
	if j.Comic != nil {
		snap.ComicID = j.Comic.ID
	}
	return snap
}

// Store persists the latest job snapshot to a TOML file. A sibling lock file
// keeps a second process from tracking jobs into the same journal.
type Store struct {
	mu       sync.RWMutex
	path     string
	lock     *flock.Flock
	held     bool
	snapshot Snapshot
	has      bool
}

// Open loads the journal at path, if any. It does not take the lock.
func Open(path string) (*Store, error) {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve journal path: %w", err)
	}
	s := &Store{path: resolved, lock: flock.New(resolved + ".lock")}
	snap, ok, err := read(resolved)
	if err != nil {
		return nil, err
	}
	s.snapshot, s.has = snap, ok
	return s, nil
}

// Path returns the journal file path.
func (s *Store) Path() string {
	return s.path
}

// Acquire takes the journal lock without blocking.
func (s *Store) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire journal lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	s.held = true
	return nil
}

// Release drops the journal lock.
func (s *Store) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		return nil
	}
	s.held = false
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("release journal lock: %w", err)
	}
	return nil
}

// Update records a tracker transition. Transitions without a blob reference
// (an upload still in flight) keep the previous record.
func (s *Store) Update(st job.State, j job.Job) error {
	if j.BlobReference == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		return ErrNotAcquired
	}
	snap := FromJob(st, j)
	if err := write(s.path, snap); err != nil {
		return err
	}
	s.snapshot, s.has = snap, true
	return nil
}

// Snapshot returns the latest record.
func (s *Store) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.has
}

// Last reads the journal at path without locking it.
func Last(path string) (Snapshot, bool, error) {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("resolve journal path: %w", err)
	}
	return read(resolved)
}

func read(path string) (Snapshot, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("read journal: %w", err)
	}
	var snap Snapshot
	if err := toml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("parse journal: %w", err)
	}
	return snap, snap.BlobReference != "", nil
}

func write(path string, snap Snapshot) error {
	data, err := toml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}
