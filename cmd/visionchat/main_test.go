package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyzj/visionchat/config"
	"github.com/xyzj/visionchat/schema"
	"github.com/xyzj/visionchat/storage"
)

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"file", "bolt", "sqlite", "memory"} {
		t.Run(backend, func(t *testing.T) {
			s, err := openBackend(config.StorageConfig{Backend: backend, Path: filepath.Join(dir, backend, "state")})
			require.NoError(t, err)
			defer s.Close()
			doc, err := s.Load()
			require.NoError(t, err)
			assert.Empty(t, doc)
		})
	}

	s, err := openBackend(config.StorageConfig{Backend: "redis", Path: "/profile", Redis: config.RedisConfig{Addr: "127.0.0.1:1"}})
	require.NoError(t, err)
	rs, ok := s.(*storage.RedisStorage)
	require.True(t, ok)
	assert.Len(t, rs.Key(), len("visionchat_state_")+12)
	rs.Close()

	_, err = openBackend(config.StorageConfig{Backend: "tape"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(config.LogConfig{Level: "warn", JSON: true}, false, &buf)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Contains(t, buf.String(), `"app":"visionchat"`)

	l = newLogger(config.LogConfig{Level: "bogus"}, true, &buf)
	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	assert.Contains(t, buf.String(), "No messages stored.")

	buf.Reset()
	printHistory(&buf, []schema.ChatMessage{
		{ID: "a", Role: schema.RoleUser, Content: "hi", Timestamp: 1},
		{ID: "b", Role: schema.RoleAssistant, Content: "line one\nline two", Timestamp: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "2 message(s)")
	assert.Contains(t, out, "line one\n  line two")
}

func TestImageMimeType(t *testing.T) {
	assert.Equal(t, "image/png", imageMimeType("cat.png", nil))
	assert.Equal(t, "image/jpeg", imageMimeType("cat.jpg", nil))
	gif := []byte("GIF89a")
	assert.Equal(t, "image/gif", imageMimeType("noext", gif))
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  backend: file\n  path: " + filepath.Join(dir, "state.json") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o644))

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
		err := rootCmd.Execute()
		return out.String(), err
	}

	_, err := run("settings", "set", `{"theme":"dark"}`)
	require.NoError(t, err)
	out, err := run("settings", "get")
	require.NoError(t, err)
	assert.Contains(t, out, `"theme":"dark"`)

	_, err = run("settings", "set", `[1]`)
	assert.Error(t, err)

	out, err = run("history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No messages stored.")

	_, err = run("history", "clear")
	require.NoError(t, err)

	out, err = run("window")
	require.NoError(t, err)
	assert.Contains(t, out, "No window state stored.")

	out, err = run("status")
	require.NoError(t, err)
	assert.Contains(t, out, `"hasApiKey":false`)
}

func TestWindowCommandUsesConfiguredDisplay(t *testing.T) {
	dir := t.TempDir()
	state := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(state, []byte(`{"windowState":{"x":-90000,"y":-90000,"width":100,"height":50,"isMaximized":false}}`), 0o644))
	cfg := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  backend: file\n  path: " + state + "\nwindow:\n  display:\n    width: 1920\n    height: 1080\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", cfg, "window"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "x=360 y=140 width=1200 height=800 maximized=false")
}
