// Package store persists classification artifacts between independent
// requests. Artifacts are keyed by an opaque name (the filename handed back
// to clients); handlers own the naming rules, the store just keeps bytes and
// datasets.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"defaulter-server-go/dataset"
)

// ErrNotFound is returned when a named artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// ArtifactStore is the narrow persistence contract between pipeline stages.
type ArtifactStore interface {
	SaveDataset(name string, ds *dataset.Dataset) error
	LoadDataset(name string) (*dataset.Dataset, error)
	Put(name string, data []byte) error
	Get(name string) ([]byte, error)
	Exists(name string) (bool, error)
}

// validName rejects anything that could escape the artifact namespace.
func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}

// extOf returns the extension of an artifact name without the dot.
func extOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// FileStore keeps artifacts as files in a single directory. This is the
// default backend; concurrent requests stay disjoint because artifact names
// are timestamp-qualified.
type FileStore struct {
	Dir string
}

// NewFileStore creates a file-backed artifact store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// SaveDataset serializes ds as an xlsx workbook named name.
func (s *FileStore) SaveDataset(name string, ds *dataset.Dataset) error {
	var buf bytes.Buffer
	if err := ds.WriteXLSX(&buf); err != nil {
		return fmt.Errorf("failed to serialize dataset %s: %w", name, err)
	}
	return s.Put(name, buf.Bytes())
}

// LoadDataset reads back a previously saved dataset.
func (s *FileStore) LoadDataset(name string) (*dataset.Dataset, error) {
	data, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Parse(bytes.NewReader(data), extOf(name))
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", name, err)
	}
	return ds, nil
}

// Put writes raw artifact bytes.
func (s *FileStore) Put(name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	return nil
}

// Get reads raw artifact bytes, returning ErrNotFound for missing names.
func (s *FileStore) Get(name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return data, nil
}

// Exists reports whether the named artifact is present.
func (s *FileStore) Exists(name string) (bool, error) {
	if err := validName(name); err != nil {
		return false, err
	}
	if _, err := os.Stat(filepath.Join(s.Dir, name)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat artifact %s: %w", name, err)
	}
	return true, nil
}
