package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rbright/hark/internal/capture"
	"github.com/rbright/hark/internal/wav"
)

func testUtterance(t *testing.T) capture.Utterance {
	t.Helper()
	pcm := make([]byte, 640)
	return capture.Utterance{
		ID:        uuid.New(),
		WAV:       wav.DefaultFormat().Encode(pcm),
		Duration:  20 * time.Millisecond,
		StartedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestWriterSavesUtterance(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	require.NoError(t, err)
	require.Equal(t, dir, w.Dir())

	u := testUtterance(t)
	path, err := w.Save(u)
	require.NoError(t, err)
	require.Contains(t, filepath.Base(path), u.ID.String())
	require.Contains(t, filepath.Base(path), "20260314-090000")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, u.WAV, data)
}

func TestWriterDefaultsToStateDir(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	w, err := NewWriter("", nil)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(state, "hark", "utterances"), w.Dir())

	info, err := os.Stat(w.Dir())
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestDebugWriterUsesDebugDir(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	w, err := NewDebugWriter(nil)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(state, "hark", "debug"), w.Dir())
}

func TestWriterSaveFailsOnUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	_, err = w.Save(testUtterance(t))
	require.Error(t, err)
}
