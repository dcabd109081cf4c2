package storage

import (
	"github.com/xyzj/toolbox/db"
	tbjson "github.com/xyzj/toolbox/json"
)

// boltDocumentKey is the single Bolt key holding the serialized document.
const boltDocumentKey = "document"

// BoltStorage keeps the document in a BoltDB file.
//
// Characteristics:
//   - The whole document is one Bolt value, so every Save is one transaction
//   - Bolt holds an exclusive lock on the file until Close
type BoltStorage struct {
	f  string     // File path for the BoltDB database
	db *db.BoltDB // BoltDB instance for persistent storage
}

// NewBoltStorage opens (or creates) the BoltDB file at filename.
//
// Parameters:
//   - filename: Path to the BoltDB database file
//
// Returns:
//   - *BoltStorage: the opened backend
//   - error: Any error encountered during database initialization
func NewBoltStorage(filename string) (*BoltStorage, error) {
	d, err := db.NewBolt(filename)
	if err != nil {
		return nil, &StorageError{Backend: "bolt", Op: "load", Path: filename, Err: err}
	}
	return &BoltStorage{
		f:  filename,
		db: d,
	}, nil
}

// Load reads the stored document. A value that does not decode marks the
// document as corrupt.
func (s *BoltStorage) Load() (Document, error) {
	v := s.db.Read(boltDocumentKey)
	if v == "" {
		return Document{}, nil
	}
	doc := Document{}
	if err := tbjson.UnmarshalFromString(v, &doc); err != nil {
		return nil, corrupt("bolt", s.f, err)
	}
	return doc, nil
}

// Save replaces the stored document in a single write.
func (s *BoltStorage) Save(doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	v, err := tbjson.MarshalToString(doc)
	if err != nil {
		return &StorageError{Backend: "bolt", Op: "encode", Path: s.f, Err: err}
	}
	if err := s.db.Write(boltDocumentKey, v); err != nil {
		return &StorageError{Backend: "bolt", Op: "save", Path: s.f, Err: err}
	}
	return nil
}

// Close releases the Bolt handle and its file lock.
func (s *BoltStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return &StorageError{Backend: "bolt", Op: "close", Path: s.f, Err: err}
	}
	return nil
}
