package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string, calls *atomic.Int32) {
	t.Helper()

	w, err := NewWatcher(path, func() { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	var calls atomic.Int32
	startWatcher(t, path, &calls)

	// An editor save shows up as several writes in quick succession;
	// the whole burst must collapse into one reload.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("b"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(debounceDelay + 500*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	// A later save is a fresh change, not part of the old burst.
	require.NoError(t, os.WriteFile(path, []byte("c"), 0644))
	time.Sleep(debounceDelay + 500*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	var calls atomic.Int32
	startWatcher(t, path, &calls)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	time.Sleep(debounceDelay + 500*time.Millisecond)
	assert.Zero(t, calls.Load())
}
