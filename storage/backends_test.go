package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, backend Storage) {
	t.Helper()
	doc, err := backend.Load()
	require.NoError(t, err)
	assert.Empty(t, doc)

	require.NoError(t, backend.Save(Document{
		"chatHistory": json.RawMessage(`[]`),
		"settings":    json.RawMessage(`{"theme":"dark"}`),
	}))
	doc, err = backend.Load()
	require.NoError(t, err)
	require.Len(t, doc, 2)
	assert.JSONEq(t, `{"theme":"dark"}`, string(doc["settings"]))

	// records missing from the new document disappear
	require.NoError(t, backend.Save(Document{"settings": json.RawMessage(`{}`)}))
	doc, err = backend.Load()
	require.NoError(t, err)
	assert.Len(t, doc, 1)
	assert.NotContains(t, doc, "chatHistory")
}

func TestMemoryStorage(t *testing.T) {
	exerciseBackend(t, NewMemoryStorage())
}

func TestFileStorageBackend(t *testing.T) {
	exerciseBackend(t, NewFileStorage(filepath.Join(t.TempDir(), "state.json")))
}

func TestSQLiteStorage(t *testing.T) {
	st, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer st.Close()
	exerciseBackend(t, st)
}

func TestSQLiteStorageCorruptRow(t *testing.T) {
	st, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer st.Close()
	_, err = st.db.Exec("INSERT INTO state (key, value) VALUES ('settings', '{')")
	require.NoError(t, err)
	_, err = st.Load()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBoltStorage(t *testing.T) {
	st, err := NewBoltStorage(filepath.Join(t.TempDir(), "state.bolt"))
	require.NoError(t, err)
	defer st.Close()
	exerciseBackend(t, st)
}

func TestBoltStorageReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bolt")
	st, err := NewBoltStorage(path)
	require.NoError(t, err)
	require.NoError(t, st.Save(Document{"settings": json.RawMessage(`{"theme":"dark"}`)}))
	require.NoError(t, st.Close())

	start := time.Now()
	st, err = NewBoltStorage(path)
	require.NoError(t, err)
	defer st.Close()
	assert.Less(t, time.Since(start), time.Second, "the file lock must be released by Close")

	doc, err := st.Load()
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(doc["settings"]))
}

func TestBoltStorageSaveReplacesDocument(t *testing.T) {
	st, err := NewBoltStorage(filepath.Join(t.TempDir(), "state.bolt"))
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Save(Document{
		"chatHistory": json.RawMessage(`[{"id":"a"}]`),
		"windowState": json.RawMessage(`{"x":1}`),
		"settings":    json.RawMessage(`{}`),
	}))
	want := Document{"settings": json.RawMessage(`{"theme":"light"}`)}
	require.NoError(t, st.Save(want))

	doc, err := st.Load()
	require.NoError(t, err)
	require.Len(t, doc, 1)
	assert.JSONEq(t, string(want["settings"]), string(doc["settings"]))
}

func TestBoltStorageCorruptValue(t *testing.T) {
	st, err := NewBoltStorage(filepath.Join(t.TempDir(), "state.bolt"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.db.Write(boltDocumentKey, "{"))
	_, err = st.Load()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestRedisStorageUnreachable(t *testing.T) {
	cli := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	st := NewRedisStorage(cli, WithNamespace("test"), WithTimeout(time.Second))
	defer st.Close()
	assert.Equal(t, "visionchat_state_test", st.Key())

	_, err := st.Load()
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "load", se.Op)
	assert.NotErrorIs(t, err, ErrCorrupt)

	err = st.Save(Document{"settings": json.RawMessage(`{}`)})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "save", se.Op)

	// the store treats it as unavailable, not corrupt
	s := NewStore(st)
	assert.False(t, s.Set(KeySettings, map[string]any{}))
}
