package main

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abrezinsky/councilvote/internal/logger"
)

func newTestKeyboard() (*keyboard, *int, *[]string) {
	quits := 0
	var opened []string
	k := &keyboard{
		adminURL: "http://192.168.1.20:8080/admin",
		log:      logger.New(),
		quit:     func() { quits++ },
		open: func(url string) error {
			opened = append(opened, url)
			return nil
		},
	}
	return k, &quits, &opened
}

func TestKeyboard_OpenAdmin(t *testing.T) {
	k, _, opened := newTestKeyboard()
	assert.False(t, k.handle('a'))
	assert.False(t, k.handle('A'))
	assert.Equal(t, []string{k.adminURL, k.adminURL}, *opened)
}

func TestKeyboard_OpenErrorDoesNotStop(t *testing.T) {
	k, _, _ := newTestKeyboard()
	k.open = func(string) error { return errors.New("no display") }
	assert.False(t, k.handle('a'))
}

func TestKeyboard_ToggleHTTPLogging(t *testing.T) {
	k, _, _ := newTestKeyboard()
	assert.False(t, k.log.IsHTTPLoggingEnabled())
	k.handle('h')
	assert.True(t, k.log.IsHTTPLoggingEnabled())
	k.handle('h')
	assert.False(t, k.log.IsHTTPLoggingEnabled())
}

func TestKeyboard_CycleLogLevel(t *testing.T) {
	k, _, _ := newTestKeyboard()
	want := []slog.Level{slog.LevelWarn, slog.LevelError, slog.LevelDebug, slog.LevelInfo}
	for _, level := range want {
		k.handle('l')
		assert.Equal(t, level, k.log.GetLevel())
	}
}

func TestKeyboard_Quit(t *testing.T) {
	for _, key := range []byte{'q', 'Q', 0x03} {
		k, quits, _ := newTestKeyboard()
		assert.True(t, k.handle(key))
		assert.Equal(t, 1, *quits)
	}
}

func TestKeyboard_UnknownKeyIgnored(t *testing.T) {
	k, quits, opened := newTestKeyboard()
	assert.False(t, k.handle('z'))
	assert.False(t, k.handle('?'))
	assert.Zero(t, *quits)
	assert.Empty(t, *opened)
}
