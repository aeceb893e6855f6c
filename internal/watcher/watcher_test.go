package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: a\n"), 0644))

	var calls atomic.Int32
	w, err := New(path, func(string) { calls.Add(1) }, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("title: b\n"), 0644))
	}
	waitFor(t, func() bool { return calls.Load() >= 1 })

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: a\n"), 0644))

	var calls atomic.Int32
	w, err := New(path, func(string) { calls.Add(1) }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcherSeesReplacedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: a\n"), 0644))

	got := make(chan string, 4)
	w, err := New(path, func(p string) { got <- p }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	tmp := filepath.Join(dir, ".lesson.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("title: b\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case p := <-got:
		assert.Equal(t, w.Path(), p)
	case <-time.After(3 * time.Second):
		t.Fatal("no callback after rename")
	}
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "lesson.yaml"), nil)
	assert.Error(t, err)
}
