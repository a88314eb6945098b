package prefabs

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsSpecAndScriptEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	spec := filepath.Join(dir, "physics.yaml")
	script := filepath.Join(dir, "contacts.tengo")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(spec, []byte("iterations: 4\n"), 0o644))
	require.NoError(t, os.WriteFile(script, []byte("x := 1\n"), 0o644))

	var seen []string
	require.Eventually(t, func() bool {
		seen = append(seen, w.Poll()...)
		return slices.Contains(seen, spec) && slices.Contains(seen, script)
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, seen, other)
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWatcherCloseTwice(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
	assert.Empty(t, w.Poll())
}
