// Package store persists planning documents under a .codeloops root.
//
// A Store is bound to one root directory and one filesystem. It keeps no
// document state between calls; the files are the only source of truth,
// so a Store may be shared between goroutines. Concurrent CreateOrUpdate
// calls on the same feature are not serialized: the last writer wins.
package store

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/nibzard/codeloops-go/internal/codeloopsdir"
	"github.com/nibzard/codeloops-go/internal/planning"
)

// Store reads and writes planning documents for features under root.
type Store struct {
	root   string
	fsys   afero.Fs
	logger *log.Logger
	now    func() time.Time
	strict bool
}

// Option configures a Store.
type Option func(*Store)

// WithFs sets the filesystem. Use afero.NewMemMapFs() in tests.
func WithFs(fsys afero.Fs) Option {
	return func(s *Store) {
		s.fsys = fsys
	}
}

// WithLogger sets the logger used for debug and warning output.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for metadata and backup names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStrictValidation enables deep validation on every write.
func WithStrictValidation(enabled bool) Option {
	return func(s *Store) {
		s.strict = enabled
	}
}

// New creates a Store rooted at root (normally <project>/.codeloops).
func New(root string, opts ...Option) *Store {
	s := &Store{
		root:   root,
		fsys:   afero.NewOsFs(),
		logger: log.New(io.Discard),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory holding all feature directories.
func (s *Store) Root() string {
	return s.root
}

// Fs returns the filesystem the store operates on.
func (s *Store) Fs() afero.Fs {
	return s.fsys
}

func (s *Store) projectPath(feature string) string {
	if codeloopsdir.EscapesRoot(feature) {
		s.logger.Warn("feature name resolves outside the planning root", "feature", feature, "root", s.root)
	}
	return codeloopsdir.ProjectPath(s.root, feature)
}

func (s *Store) documentPath(feature string, kind planning.Kind) string {
	return codeloopsdir.DocumentPath(s.root, feature, kind)
}
