package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/nibzard/codeloops-go/internal/codeloopsdir"
	"github.com/nibzard/codeloops-go/internal/planning"
)

// ProjectFiles reports which planning documents exist for a feature.
type ProjectFiles struct {
	Problem   bool `json:"problem"`
	Technical bool `json:"technical"`
	Tasks     bool `json:"tasks"`
}

// Has reports whether the document of the given kind exists.
func (f ProjectFiles) Has(kind planning.Kind) bool {
	switch kind {
	case planning.KindProblem:
		return f.Problem
	case planning.KindTechnical:
		return f.Technical
	case planning.KindTasks:
		return f.Tasks
	}
	return false
}

// Count returns how many of the three documents exist.
func (f ProjectFiles) Count() int {
	n := 0
	for _, ok := range []bool{f.Problem, f.Technical, f.Tasks} {
		if ok {
			n++
		}
	}
	return n
}

// ListProjects returns the names of the feature directories under the
// root, sorted. Plain files are ignored. A missing root yields an empty
// list.
func (s *Store) ListProjects() ([]string, error) {
	entries, err := afero.ReadDir(s.fsys, s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", s.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ProjectExists reports whether the feature's directory exists.
func (s *Store) ProjectExists(feature string) bool {
	ok, _ := s.exists(s.projectPath(feature))
	return ok
}

// GetProjectFiles checks the three document files concurrently. A file
// that cannot be stat'ed counts as absent; the failure is logged.
func (s *Store) GetProjectFiles(feature string) ProjectFiles {
	var files ProjectFiles
	if !s.ProjectExists(feature) {
		return files
	}

	check := func(kind planning.Kind, found *bool) func() error {
		return func() error {
			ok, err := s.exists(s.documentPath(feature, kind))
			*found = ok
			return err
		}
	}

	var g errgroup.Group
	g.Go(check(planning.KindProblem, &files.Problem))
	g.Go(check(planning.KindTechnical, &files.Technical))
	g.Go(check(planning.KindTasks, &files.Tasks))
	if err := g.Wait(); err != nil {
		s.logger.Warn("checking project files", "feature", feature, "err", err)
	}

	return files
}

// exists stats path. A missing file is false without an error.
func (s *Store) exists(path string) (bool, error) {
	_, err := s.fsys.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// BackupTimestamp formats t as planning.Timestamp does, with ':' and '.'
// replaced by '-', e.g. 2024-03-05T14-07-09-123Z.
func BackupTimestamp(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(planning.Timestamp(t))
}

// BackupProject copies the feature's regular files into a sibling
// directory named <feature>-backup-<timestamp> and returns that name.
// Subdirectories are not copied. The first copy failure aborts the
// backup; files already copied are left in place.
func (s *Store) BackupProject(feature string) (string, error) {
	src := s.projectPath(feature)
	entries, err := afero.ReadDir(s.fsys, src)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", feature, err)
	}

	name := codeloopsdir.BackupName(feature, BackupTimestamp(s.now()))
	dst := filepath.Join(s.root, name)
	if err := EnsureDir(s.fsys, dst); err != nil {
		return "", err
	}

	copied := 0
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		file := entry.Name()
		if err := copyFile(s.fsys, filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", fmt.Errorf("backup %s: %w", feature, err)
		}
		copied++
	}

	s.logger.Info("backed up project", "feature", feature, "path", dst, "files", copied)
	return name, nil
}

func copyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}
