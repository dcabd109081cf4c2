package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	tbjson "github.com/xyzj/toolbox/json"
)

// FileStorage keeps the document in a single JSON file.
//
// Characteristics:
//   - The file is rewritten wholesale on every save
//   - Writes go to a temporary file in the same directory which is synced and
//     then renamed over the target, so a crash never leaves a half written file
//   - Parent directories are created on first save
type FileStorage struct {
	f string // Path of the JSON document
}

// NewFileStorage creates a file backend for filename. Nothing is touched on
// disk until the first Load or Save.
func NewFileStorage(filename string) *FileStorage {
	return &FileStorage{f: filename}
}

// Path returns the document path.
func (s *FileStorage) Path() string {
	return s.f
}

// Load reads and decodes the document. A missing or empty file is an empty
// document.
func (s *FileStorage) Load() (Document, error) {
	b, err := os.ReadFile(s.f)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, nil
		}
		return nil, &StorageError{Backend: "file", Op: "load", Path: s.f, Err: err}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return Document{}, nil
	}
	doc := Document{}
	if err := tbjson.Unmarshal(b, &doc); err != nil {
		return nil, corrupt("file", s.f, err)
	}
	return doc, nil
}

// Save atomically replaces the file content with doc.
func (s *FileStorage) Save(doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	b, err := tbjson.MarshalIndent(doc, "", "\t")
	if err != nil {
		return &StorageError{Backend: "file", Op: "encode", Path: s.f, Err: err}
	}
	dir := filepath.Dir(s.f)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Backend: "file", Op: "save", Path: s.f, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.f)+".*.tmp")
	if err != nil {
		return &StorageError{Backend: "file", Op: "save", Path: s.f, Err: err}
	}
	tmpName := tmp.Name()
	if err := writeAndSync(tmp, b); err != nil {
		os.Remove(tmpName)
		return &StorageError{Backend: "file", Op: "save", Path: s.f, Err: err}
	}
	if err := os.Rename(tmpName, s.f); err != nil {
		os.Remove(tmpName)
		return &StorageError{Backend: "file", Op: "save", Path: s.f, Err: err}
	}
	return nil
}

func writeAndSync(f *os.File, b []byte) error {
	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close is a no-op, the file is not held open between calls.
func (s *FileStorage) Close() error {
	return nil
}
