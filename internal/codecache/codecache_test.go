package codecache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheFailsOpenWithoutSnapshot(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "codes.gz"))
	require.NoError(t, c.Load())

	require.True(t, c.Contains("ANYTHING"), "empty cache must not reject codes")
}

func TestCacheAddAndContains(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "codes.gz"))
	require.NoError(t, c.Load())

	c.Add("HAPPYHRS")

	require.True(t, c.Contains("HAPPYHRS"))
	require.False(t, c.Contains("NOSUCHCODE"))
}

func TestCacheFlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.gz")

	c := New(path)
	require.NoError(t, c.Load())
	c.Add("FIFTYOFF")
	c.Add("OVER9000")
	require.NoError(t, c.FlushIfDirty())

	reloaded := New(path)
	require.NoError(t, reloaded.Load())

	require.True(t, reloaded.Contains("FIFTYOFF"))
	require.True(t, reloaded.Contains("OVER9000"))
	require.False(t, reloaded.Contains("NOSUCHCODE"))
}

func TestFlushSkipsWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.gz")

	c := New(path)
	require.NoError(t, c.FlushIfDirty())

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "clean cache must not write a snapshot")
}
