package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid user", `{"id":"a","role":"user","content":"hi","timestamp":1000}`, false},
		{"valid assistant", `{"id":"b","role":"assistant","content":"","timestamp":1001}`, false},
		{"extra fields are ignored", `{"id":"c","role":"user","content":"x","timestamp":1,"image":"..."}`, false},
		{"missing content", `{"id":"a","role":"user","timestamp":1000}`, true},
		{"missing id", `{"role":"user","content":"hi","timestamp":1000}`, true},
		{"bad role", `{"id":"a","role":"system","content":"hi","timestamp":1000}`, true},
		{"timestamp as string", `{"id":"a","role":"user","content":"hi","timestamp":"1000"}`, true},
		{"id as number", `{"id":1,"role":"user","content":"hi","timestamp":1000}`, true},
		{"not json", `{"id":`, true},
		{"array", `[]`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				var ve *ValidationError
				assert.True(t, errors.As(err, &ve))
				assert.Equal(t, KindMessage, ve.Kind)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, msg.ID)
		})
	}
}

func TestDecodeMessageFields(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"id":"a","role":"user","content":"hi","timestamp":1000}`))
	require.NoError(t, err)
	assert.Equal(t, ChatMessage{ID: "a", Role: RoleUser, Content: "hi", Timestamp: 1000}, msg)
}

func TestDecodeFractionalNumbers(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"id":"a","role":"user","content":"hi","timestamp":1000.5}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), msg.Timestamp)

	msgs, err := DecodeHistory([]byte(`[{"id":"a","role":"user","content":"hi","timestamp":1},{"id":"b","role":"assistant","content":"yo","timestamp":1700000000000.25}]`))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(1700000000000), msgs[1].Timestamp)

	ws, err := DecodeWindowState([]byte(`{"x":10.4,"y":-3.6,"width":1280.5,"height":720,"isMaximized":true}`))
	require.NoError(t, err)
	assert.Equal(t, WindowState{X: 10, Y: -4, Width: 1281, Height: 720, IsMaximized: true}, ws)
}

func TestDecodeHistory(t *testing.T) {
	msgs, err := DecodeHistory([]byte(`[
		{"id":"a","role":"user","content":"hi","timestamp":1000},
		{"id":"b","role":"assistant","content":"hello","timestamp":1001}
	]`))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].ID)
	assert.Equal(t, "b", msgs[1].ID)

	msgs, err = DecodeHistory([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)

	// one corrupt entry spoils the record
	_, err = DecodeHistory([]byte(`[{"id":"a","role":"user","content":"hi","timestamp":1000},{"id":"b"}]`))
	assert.Error(t, err)

	_, err = DecodeHistory([]byte(`{"id":"a"}`))
	assert.Error(t, err)

	_, err = DecodeHistory([]byte(`null`))
	assert.Error(t, err)
}

func TestDecodeWindowState(t *testing.T) {
	ws, err := DecodeWindowState([]byte(`{"x":10,"y":20,"width":1024,"height":768,"isMaximized":true}`))
	require.NoError(t, err)
	assert.Equal(t, WindowState{X: 10, Y: 20, Width: 1024, Height: 768, IsMaximized: true}, ws)

	for _, raw := range []string{
		`{"x":10,"y":20,"width":1024,"height":768}`,
		`{"x":"10","y":20,"width":1024,"height":768,"isMaximized":false}`,
		`{"x":10,"y":20,"width":1024,"height":768,"isMaximized":"no"}`,
		`[]`,
	} {
		_, err := DecodeWindowState([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestDecodeSettings(t *testing.T) {
	s, err := DecodeSettings([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, s)

	s, err = DecodeSettings([]byte(`{"theme":"dark"}`))
	require.NoError(t, err)
	assert.Equal(t, "dark", s["theme"])

	_, err = DecodeSettings([]byte(`"dark"`))
	assert.Error(t, err)
	_, err = DecodeSettings([]byte(`null`))
	assert.Error(t, err)
}

func TestValidateUnknownKind(t *testing.T) {
	err := Validate(Kind("nope"), []byte(`{}`))
	assert.Error(t, err)
}

func TestNewMessage(t *testing.T) {
	a := NewMessage(RoleUser, "hi")
	b := NewMessage(RoleUser, "hi")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, RoleUser, a.Role)
	assert.Positive(t, a.Timestamp)
}
