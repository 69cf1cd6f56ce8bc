// Package history keeps a bounded, newest-first record of parsed test runs
// and persists it.
package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leaderreps/testcenter/internal/testparser"
)

// Capacity is the maximum number of runs kept in a history.
const Capacity = 10

// MinShortID is the shortest id suffix Find accepts.
const MinShortID = 4

// Entry is one recorded run.
type Entry struct {
	// ID is a UUIDv7, so it embeds the creation time and sorts by it.
	ID     string               `json:"id" yaml:"id"`
	Env    string               `json:"env" yaml:"env"`
	Result testparser.RunResult `json:"result" yaml:"result"`
}

// IDGenerator returns a fresh entry id.
type IDGenerator func() (string, error)

// NewID returns a time-ordered UUIDv7 string.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id.String(), nil
}

// History is a newest-first list of at most Capacity entries.
// The zero value is an empty history that generates ids with NewID.
// A History is not safe for concurrent use.
type History struct {
	entries []Entry
	newID   IDGenerator
}

// New returns a history holding entries, newest first. Entries beyond
// Capacity are dropped.
func New(entries []Entry) *History {
	h := &History{}
	h.entries = append(h.entries, truncate(entries)...)
	return h
}

// WithIDGenerator makes h use gen for new entry ids and returns h.
func (h *History) WithIDGenerator(gen IDGenerator) *History {
	h.newID = gen
	return h
}

// Record wraps result in a new entry tagged with env, prepends it and drops
// the oldest entries beyond Capacity. It returns the new entry.
func (h *History) Record(result testparser.RunResult, env string) (Entry, error) {
	gen := h.newID
	if gen == nil {
		gen = NewID
	}
	id, err := gen()
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{ID: id, Env: env, Result: result}
	entries := make([]Entry, 0, min(len(h.entries)+1, Capacity))
	entries = append(entries, entry)
	entries = append(entries, h.entries...)
	h.entries = truncate(entries)
	return entry, nil
}

// Entries returns a copy of the entries, newest first.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Latest returns the newest entry.
func (h *History) Latest() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[0], true
}

// Get returns the entry with the given id.
func (h *History) Get(id string) (Entry, bool) {
	for _, e := range h.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// ErrAmbiguousID is returned by Find when a short id matches several runs.
var ErrAmbiguousID = errors.New("ambiguous run id")

// Find returns the entry whose id equals ref, or whose id ends with ref
// when ref is at least MinShortID characters long. A suffix matching more
// than one entry yields ErrAmbiguousID.
func (h *History) Find(ref string) (Entry, bool, error) {
	if e, ok := h.Get(ref); ok {
		return e, true, nil
	}
	if len(ref) < MinShortID {
		return Entry{}, false, nil
	}

	var found []Entry
	for _, e := range h.entries {
		if strings.HasSuffix(e.ID, ref) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return Entry{}, false, nil
	case 1:
		return found[0], true, nil
	default:
		return Entry{}, false, fmt.Errorf("%w: %q matches %d runs", ErrAmbiguousID, ref, len(found))
	}
}

func truncate(entries []Entry) []Entry {
	if len(entries) > Capacity {
		return entries[:Capacity]
	}
	return entries
}
