// Package watch reports changes to a feature's planning documents.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/nibzard/codeloops-go/internal/codeloopsdir"
	"github.com/nibzard/codeloops-go/internal/planning"
)

// Op is the kind of change observed on a document file.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one observed change to a planning document.
type Change struct {
	Feature string
	Kind    planning.Kind
	Op      Op
	Path    string
}

// Watcher watches one feature directory. Only problem.json,
// technical.json and tasks.json produce changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	feature string
	dir     string
	logger  *log.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used for watcher errors.
func WithLogger(logger *log.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New starts watching <root>/<feature>. The directory must exist.
func New(root, feature string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		watcher: fw,
		feature: feature,
		dir:     codeloopsdir.ProjectPath(root, feature),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run calls fn for each document change until ctx is done or the watcher
// is closed. It closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, fn func(Change)) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if change, ok := w.classify(event); ok {
				w.logger.Debug("document changed", "feature", change.Feature, "kind", change.Kind, "op", change.Op)
				fn(change)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "dir", w.dir, "err", err)
		}
	}
}

// Close stops the watcher. Run returns once the event channels drain.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) classify(event fsnotify.Event) (Change, bool) {
	kind, ok := codeloopsdir.KindForFile(filepath.Base(event.Name))
	if !ok {
		return Change{}, false
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return Change{}, false
	}

	return Change{
		Feature: w.feature,
		Kind:    kind,
		Op:      op,
		Path:    event.Name,
	}, true
}
