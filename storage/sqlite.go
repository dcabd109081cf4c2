package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	tbjson "github.com/xyzj/toolbox/json"
	_ "modernc.org/sqlite"
)

const createStateTable = `CREATE TABLE IF NOT EXISTS state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStorage keeps the document in a single SQLite file, one row per record.
// Every save runs in one transaction.
type SQLiteStorage struct {
	path string
	db   *sql.DB
}

// NewSQLiteStorage opens the database at path and creates the state table.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "load", Path: path, Err: fmt.Errorf("failed to open database: %w", err)}
	}
	// one writer, and :memory: databases are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createStateTable); err != nil {
		db.Close()
		return nil, &StorageError{Backend: "sqlite", Op: "load", Path: path, Err: fmt.Errorf("failed to create table: %w", err)}
	}
	return &SQLiteStorage{path: path, db: db}, nil
}

// Load reads every row of the state table.
func (s *SQLiteStorage) Load() (Document, error) {
	rows, err := s.db.Query("SELECT key, value FROM state")
	if err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "load", Path: s.path, Err: fmt.Errorf("query failed: %w", err)}
	}
	defer rows.Close()

	doc := Document{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, &StorageError{Backend: "sqlite", Op: "load", Path: s.path, Err: fmt.Errorf("scan failed: %w", err)}
		}
		if !tbjson.Valid(tbjson.Bytes(v)) {
			return nil, corrupt("sqlite", s.path+"#"+k, errInvalidRecord)
		}
		doc[k] = json.RawMessage(v)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "load", Path: s.path, Err: fmt.Errorf("rows iteration error: %w", err)}
	}
	return doc, nil
}

// Save replaces the table content with doc.
func (s *SQLiteStorage) Save(doc Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &StorageError{Backend: "sqlite", Op: "save", Path: s.path, Err: err}
	}
	if _, err := tx.Exec("DELETE FROM state"); err != nil {
		tx.Rollback()
		return &StorageError{Backend: "sqlite", Op: "save", Path: s.path, Err: err}
	}
	for k, v := range doc {
		if _, err := tx.Exec("INSERT INTO state (key, value) VALUES (?, ?)", k, string(v)); err != nil {
			tx.Rollback()
			return &StorageError{Backend: "sqlite", Op: "save", Path: s.path, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Backend: "sqlite", Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
