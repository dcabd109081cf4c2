package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyzj/visionchat/schema"
	"github.com/xyzj/visionchat/storage"
)

func newLog(t *testing.T, capacity int) (*Log, *storage.MemoryStorage) {
	t.Helper()
	mem := storage.NewMemoryStorage()
	return New(storage.NewStore(mem), capacity), mem
}

func msg(i int) schema.ChatMessage {
	role := schema.RoleUser
	if i%2 == 1 {
		role = schema.RoleAssistant
	}
	return schema.ChatMessage{ID: fmt.Sprintf("m%d", i), Role: role, Content: fmt.Sprintf("message %d", i), Timestamp: int64(1000 + i)}
}

func TestNewDefaultCapacity(t *testing.T) {
	l := New(storage.NewStore(storage.NewMemoryStorage()), 0)
	assert.Equal(t, DefaultCapacity, l.Capacity())
}

func TestAppendAndList(t *testing.T) {
	l, _ := newLog(t, 10)
	assert.NotNil(t, l.List())
	assert.Empty(t, l.List())

	require.NoError(t, l.Append([]byte(`{"id":"a","role":"user","content":"hi","timestamp":1000}`)))
	require.NoError(t, l.AppendMessage(schema.ChatMessage{ID: "b", Role: schema.RoleAssistant, Content: "hello", Timestamp: 1001}))

	got := l.List()
	require.Len(t, got, 2)
	assert.Equal(t, schema.ChatMessage{ID: "a", Role: schema.RoleUser, Content: "hi", Timestamp: 1000}, got[0])
	assert.Equal(t, "b", got[1].ID)

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.ID)
}

func TestAppendRejectsInvalid(t *testing.T) {
	l, mem := newLog(t, 10)
	require.NoError(t, l.AppendMessage(msg(0)))
	saves := mem.Saves()

	err := l.Append([]byte(`{"id":"x","role":"user","timestamp":1}`))
	var ve *schema.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, saves, mem.Saves(), "an invalid message must not trigger a write")

	err = l.AppendMessage(schema.ChatMessage{ID: "y", Role: "system", Content: "x"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, l.Len())
}

func TestBoundedGrowth(t *testing.T) {
	const capacity = 50
	l, _ := newLog(t, capacity)
	const n = capacity*2 + 7
	for i := 0; i < n; i++ {
		require.NoError(t, l.AppendMessage(msg(i)))
	}
	got := l.List()
	require.Len(t, got, capacity)
	for i, m := range got {
		assert.Equal(t, msg(n-capacity+i), m)
	}
}

func TestBoundedGrowthDefaultCapacity(t *testing.T) {
	mem := storage.NewMemoryStorage()
	s := storage.NewStore(mem)
	full := make([]schema.ChatMessage, DefaultCapacity)
	for i := range full {
		full[i] = msg(i)
	}
	require.NoError(t, s.Put(storage.KeyChatHistory, full))

	l := New(s, DefaultCapacity)
	for i := DefaultCapacity; i < DefaultCapacity+5; i++ {
		require.NoError(t, l.AppendMessage(msg(i)))
	}
	got := l.List()
	require.Len(t, got, DefaultCapacity)
	assert.Equal(t, "m5", got[0].ID)
	assert.Equal(t, fmt.Sprintf("m%d", DefaultCapacity+4), got[len(got)-1].ID)
}

func TestEvictionOrder(t *testing.T) {
	const capacity = 5
	l, _ := newLog(t, capacity)
	for i := 0; i < capacity; i++ {
		require.NoError(t, l.AppendMessage(msg(i)))
	}
	before := l.List()
	require.NoError(t, l.AppendMessage(msg(99)))
	after := l.List()
	require.Len(t, after, capacity)
	assert.Equal(t, before[1:], after[:capacity-1])
	assert.Equal(t, msg(99), after[capacity-1])
}

func TestDelete(t *testing.T) {
	l, mem := newLog(t, 10)
	require.NoError(t, l.AppendMessage(msg(0)))
	require.NoError(t, l.AppendMessage(msg(1)))
	dup := msg(2)
	dup.ID = "m0"
	require.NoError(t, l.AppendMessage(dup))

	require.NoError(t, l.Delete("m0"))
	got := l.List()
	require.Len(t, got, 1, "every message with the id is removed")
	assert.Equal(t, "m1", got[0].ID)

	saves := mem.Saves()
	require.NoError(t, l.Delete("m0"))
	require.NoError(t, l.Delete("missing"))
	assert.Equal(t, saves, mem.Saves())
	assert.Len(t, l.List(), 1)
}

func TestClear(t *testing.T) {
	l, _ := newLog(t, 10)
	require.NoError(t, l.AppendMessage(msg(0)))
	require.NoError(t, l.Clear())
	assert.Empty(t, l.List())
	_, ok := l.Last()
	assert.False(t, ok)
}

func TestWriteFailureIsReported(t *testing.T) {
	l, mem := newLog(t, 10)
	require.NoError(t, l.AppendMessage(msg(0)))
	mem.FailWith(storage.ErrInjected)
	assert.ErrorIs(t, l.AppendMessage(msg(1)), storage.ErrInjected)
	assert.ErrorIs(t, l.Clear(), storage.ErrInjected)
	assert.ErrorIs(t, l.Delete("m0"), storage.ErrInjected)
	mem.FailWith(nil)
	assert.Len(t, l.List(), 1)
}

func TestCorruptRecordReadsEmpty(t *testing.T) {
	mem := storage.NewMemoryStorage()
	s := storage.NewStore(mem)
	require.NoError(t, s.Put(storage.KeyChatHistory, []map[string]any{{"id": "a"}}))
	l := New(s, 10)
	assert.Empty(t, l.List())

	// the next append starts over from an empty history
	require.NoError(t, l.AppendMessage(msg(0)))
	assert.Len(t, l.List(), 1)
}
