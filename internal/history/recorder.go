package history

import (
	"context"

	"github.com/bitrise-io/go-utils/v2/log"

	"github.com/leaderreps/testcenter/internal/testparser"
)

// Recorder loads the stored document, records a run into it and saves it.
// Persistence errors are logged once and returned; they are never retried.
type Recorder struct {
	store  Store
	logger log.Logger
	newID  IDGenerator
}

// NewRecorder returns a recorder persisting to store.
func NewRecorder(store Store, logger log.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// WithIDGenerator makes r use gen for new entry ids and returns r.
func (r *Recorder) WithIDGenerator(gen IDGenerator) *Recorder {
	r.newID = gen
	return r
}

// Load returns the stored history.
func (r *Recorder) Load(ctx context.Context) (*History, error) {
	doc, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warnf("Failed to load test history: %s", err)
		return nil, err
	}
	return New(doc.History).WithIDGenerator(r.newID), nil
}

// Current returns the most recently recorded run, if any.
func (r *Recorder) Current(ctx context.Context) (*Entry, error) {
	doc, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warnf("Failed to load current test run: %s", err)
		return nil, err
	}
	return doc.Current, nil
}

// Record stores result as the current run and prepends it to the history.
func (r *Recorder) Record(ctx context.Context, result testparser.RunResult, env string) (Entry, error) {
	var entry Entry
	apply := func(doc *Document) error {
		h := New(doc.History).WithIDGenerator(r.newID)
		var err error
		entry, err = h.Record(result, env)
		if err != nil {
			return err
		}
		doc.Current = &entry
		doc.History = h.Entries()
		return nil
	}

	var err error
	if u, ok := r.store.(Updater); ok {
		err = u.Update(ctx, apply)
	} else {
		err = r.loadApplySave(ctx, apply)
	}
	if err != nil {
		r.logger.Warnf("Failed to save test run: %s", err)
		return Entry{}, err
	}

	r.logger.Debugf("Recorded run %s (%s): %d passed, %d failed, %d skipped",
		entry.ID, entry.Env, result.Summary.Passed, result.Summary.Failed, result.Summary.Skipped)
	return entry, nil
}

func (r *Recorder) loadApplySave(ctx context.Context, apply func(*Document) error) error {
	doc, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := apply(&doc); err != nil {
		return err
	}
	return r.store.Save(ctx, doc)
}
