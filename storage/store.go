package storage

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	tbjson "github.com/xyzj/toolbox/json"
)

type (
	// Opt contains options for a Store.
	Opt struct {
		logg zerolog.Logger
	}
	// Opts is a function type for configuring a Store.
	Opts func(opt *Opt)
)

// WithLogger sets the logger used to report load, decode and save failures.
func WithLogger(l zerolog.Logger) Opts {
	return func(opt *Opt) {
		opt.logg = l
	}
}

// Store is the durable key-value view over a backend.
//
// The document is loaded lazily on first access and kept in memory; every Put
// writes the whole document back through the backend. Store has no locking of
// its own: the owner must serialize calls.
type Store struct {
	backend Storage
	logg    zerolog.Logger
	doc     Document
	loaded  bool
}

// NewStore wraps backend. The backend is not touched until first use.
func NewStore(backend Storage, opts ...Opts) *Store {
	opt := &Opt{
		logg: zerolog.Nop(),
	}
	for _, o := range opts {
		o(opt)
	}
	return &Store{
		backend: backend,
		logg:    opt.logg,
	}
}

// load fills s.doc. A corrupt document is replaced by an empty one so the
// next write recovers the store; an unreachable backend is reported and
// retried on the next access.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}
	doc, err := s.backend.Load()
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			s.logg.Warn().Err(err).Msg("state document is corrupt, starting empty")
			s.doc = Document{}
			s.loaded = true
			return nil
		}
		return err
	}
	s.doc = doc
	s.loaded = true
	return nil
}

// Raw returns the stored body of key. It never fails: a backend error is
// logged and reported as an absent record.
func (s *Store) Raw(key Key) (json.RawMessage, bool) {
	if err := s.load(); err != nil {
		s.logg.Error().Err(err).Str("key", string(key)).Msg("state load failed")
		return nil, false
	}
	v, ok := s.doc[string(key)]
	return v, ok
}

// Has reports whether key holds a record.
func (s *Store) Has(key Key) bool {
	_, ok := s.Raw(key)
	return ok
}

// Get returns the record under key decoded with decode, or def when the
// record is absent, the backend fails or decode rejects the body.
func Get[T any](s *Store, key Key, def T, decode func([]byte) (T, error)) T {
	raw, ok := s.Raw(key)
	if !ok {
		return def
	}
	v, err := decode(raw)
	if err != nil {
		s.logg.Warn().Err(err).Str("key", string(key)).Msg("stored record rejected, using default")
		return def
	}
	return v
}

// Decode is a decode function for Get that only unmarshals.
func Decode[T any](raw []byte) (T, error) {
	var v T
	err := tbjson.Unmarshal(raw, &v)
	return v, err
}

// Put serializes value under key and persists the whole document.
// On failure the in-memory document is left unchanged.
func (s *Store) Put(key Key, value any) error {
	if err := s.load(); err != nil {
		return err
	}
	b, err := tbjson.Marshal(value)
	if err != nil {
		return &StorageError{Backend: "store", Op: "encode", Path: string(key), Err: err}
	}
	next := s.doc.Clone()
	next[string(key)] = json.RawMessage(b)
	return s.commit(next)
}

// Delete removes key from the document and persists it. Deleting an absent
// key writes nothing.
func (s *Store) Delete(key Key) error {
	if err := s.load(); err != nil {
		return err
	}
	if _, ok := s.doc[string(key)]; !ok {
		return nil
	}
	next := s.doc.Clone()
	delete(next, string(key))
	return s.commit(next)
}

func (s *Store) commit(next Document) error {
	if err := s.backend.Save(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// Set is Put reduced to a success flag; failures are logged.
func (s *Store) Set(key Key, value any) bool {
	if err := s.Put(key, value); err != nil {
		s.logg.Error().Err(err).Str("key", string(key)).Msg("state write failed")
		return false
	}
	return true
}

// Reload drops the cached document so the next access reads the backend again.
func (s *Store) Reload() {
	s.doc = nil
	s.loaded = false
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
