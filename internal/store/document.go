package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// readFile returns the file content and whether the file exists. A
// missing file is not an error.
func readFile(fsys afero.Fs, path string) ([]byte, bool, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}

// ReadJSON decodes the JSON file at path into a new T. It returns nil, nil
// when the file does not exist; malformed JSON and other I/O failures are
// returned as errors.
func ReadJSON[T any](fsys afero.Fs, path string) (*T, error) {
	data, ok, err := readFile(fsys, path)
	if err != nil || !ok {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &v, nil
}

// WriteJSON writes v to path with 2-space indentation and a trailing
// newline, creating parent directories as needed. The file is replaced in
// a single write; it is not renamed into place.
func WriteJSON(fsys afero.Fs, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	data = append(data, '\n')

	if err := EnsureDir(fsys, filepath.Dir(path)); err != nil {
		return err
	}
	if err := afero.WriteFile(fsys, path, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// EnsureDir creates path and its parents if they do not exist.
func EnsureDir(fsys afero.Fs, path string) error {
	if err := fsys.MkdirAll(path, dirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// EnsureProjectDir creates the feature's directory if it is missing.
func (s *Store) EnsureProjectDir(feature string) error {
	return EnsureDir(s.fsys, s.projectPath(feature))
}
