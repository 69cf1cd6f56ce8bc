package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/leaderreps/testcenter/internal/schema"
)

// Document is everything a store holds: the most recent run and the
// bounded history it belongs to.
type Document struct {
	Current *Entry  `json:"current,omitempty" yaml:"current,omitempty"`
	History []Entry `json:"history" yaml:"history"`
}

// Store reads and writes the run document.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// Updater is a Store that can apply a read-modify-write atomically.
type Updater interface {
	Update(ctx context.Context, fn func(*Document) error) error
}

// MemoryStore keeps the document in memory.
type MemoryStore struct {
	mu  sync.Mutex
	doc Document
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored document.
func (s *MemoryStore) Load(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.clone(), nil
}

// Save replaces the stored document.
func (s *MemoryStore) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.clone()
	s.doc.History = truncate(s.doc.History)
	return nil
}

// Update applies fn to the document under the store mutex.
func (s *MemoryStore) Update(ctx context.Context, fn func(*Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc.clone()
	if err := fn(&doc); err != nil {
		return err
	}
	s.doc = doc
	s.doc.History = truncate(s.doc.History)
	return nil
}

func (d Document) clone() Document {
	out := Document{History: make([]Entry, len(d.History))}
	copy(out.History, d.History)
	if d.Current != nil {
		current := *d.Current
		out.Current = &current
	}
	return out
}

const (
	currentFile = "current.json"
	historyFile = "history.json"
	lockFile    = "lock"

	lockRetryDelay = 50 * time.Millisecond
)

// ErrLocked is returned when the store lock cannot be obtained before the
// context is done.
var ErrLocked = errors.New("store is locked by another process")

// FileStore keeps the document as two JSON files in a directory.
//
//	<dir>/current.json  the most recent run
//	<dir>/history.json  up to Capacity runs, newest first
//
// Reads and writes are serialized across processes with an advisory lock
// on <dir>/lock. Files are replaced atomically.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// CurrentFile returns the path of the current run document.
func (s *FileStore) CurrentFile() string {
	return filepath.Join(s.Dir, currentFile)
}

// HistoryFile returns the path of the history document.
func (s *FileStore) HistoryFile() string {
	return filepath.Join(s.Dir, historyFile)
}

// LockFile returns the path to the lock file.
func (s *FileStore) LockFile() string {
	return filepath.Join(s.Dir, lockFile)
}

// Ensure creates the store directory if needed.
func (s *FileStore) Ensure() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("store dir: %w", err)
	}
	return nil
}

// Load reads the document. Missing files yield an empty document.
func (s *FileStore) Load(ctx context.Context) (Document, error) {
	var doc Document
	err := s.withLock(ctx, func() error {
		var err error
		doc, err = s.read()
		return err
	})
	return doc, err
}

// Save writes the document, truncating its history to Capacity.
func (s *FileStore) Save(ctx context.Context, doc Document) error {
	return s.withLock(ctx, func() error {
		return s.write(doc)
	})
}

// Update reads the document, applies fn and writes the result, all under
// one lock.
func (s *FileStore) Update(ctx context.Context, fn func(*Document) error) error {
	return s.withLock(ctx, func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		if err := fn(&doc); err != nil {
			return err
		}
		return s.write(doc)
	})
}

func (s *FileStore) withLock(ctx context.Context, fn func() error) error {
	if err := s.Ensure(); err != nil {
		return err
	}

	fileLock := flock.New(s.LockFile())
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("acquire lock: %w: %w", ErrLocked, ctx.Err())
		}
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire lock: %w", ErrLocked)
	}
	defer func() { _ = fileLock.Unlock() }()

	return fn()
}

func (s *FileStore) read() (Document, error) {
	doc := Document{History: []Entry{}}

	var current Entry
	found, err := readJSON(s.CurrentFile(), &current)
	if err != nil {
		return Document{}, fmt.Errorf("load current run: %w", err)
	}
	if found {
		doc.Current = &current
	}

	data, err := readFile(s.HistoryFile())
	if err != nil {
		return Document{}, fmt.Errorf("load history: %w", err)
	}
	if len(data) > 0 {
		if err := schema.ValidateHistory(data); err != nil {
			return Document{}, fmt.Errorf("load history: %s: %w", s.HistoryFile(), err)
		}
		if err := json.Unmarshal(data, &doc.History); err != nil {
			return Document{}, fmt.Errorf("load history: %w", err)
		}
	}
	doc.History = truncate(doc.History)
	return doc, nil
}

func (s *FileStore) write(doc Document) error {
	history := truncate(doc.History)
	if history == nil {
		history = []Entry{}
	}
	if err := validateEntries(history); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if doc.Current != nil {
		if err := validateEntries([]Entry{*doc.Current}); err != nil {
			return fmt.Errorf("save current run: %w", err)
		}
	}

	if doc.Current != nil {
		if err := writeJSON(s.CurrentFile(), doc.Current); err != nil {
			return fmt.Errorf("save current run: %w", err)
		}
	} else if err := os.Remove(s.CurrentFile()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("save current run: %w", err)
	}
	if err := writeJSON(s.HistoryFile(), history); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// validateEntries checks entries against the schema read() enforces, so
// a document that could not be loaded back is never written.
func validateEntries(entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return schema.ValidateHistory(data)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// readJSON decodes path into target. It reports false when the file is
// missing or empty.
func readJSON(path string, target any) (bool, error) {
	data, err := readFile(path)
	if err != nil || len(data) == 0 {
		return false, err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return err
	}

	cleaned := false
	defer func() {
		if cleaned {
			return
		}
		_ = os.Remove(tmp.Name())
	}()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	cleaned = true
	return nil
}
