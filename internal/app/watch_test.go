package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLogWatcherMatches(t *testing.T) {
	dir := t.TempDir()
	lw, err := NewLogWatcher(filepath.Join(dir, "classifications.db"), nil, nil)
	require.NoError(t, err)
	defer lw.Stop()

	assert.True(t, lw.matches(filepath.Join(dir, "classifications.db")))
	assert.True(t, lw.matches(filepath.Join(dir, "classifications.db-wal")))
	assert.False(t, lw.matches(filepath.Join(dir, "classifications.dbx")))
	assert.False(t, lw.matches(filepath.Join(dir, "other.log")))
}

func TestLogWatcherFiresOnAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classifications.log")
	fired := make(chan struct{}, 4)
	lw, err := NewLogWatcher(path, func() { fired <- struct{}{} }, zaptest.NewLogger(t))
	require.NoError(t, err)
	lw.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, lw.Start(ctx))
	defer lw.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("J0437-4715,alice,NA,PROFILE:SP \n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the log write")
	}
}
