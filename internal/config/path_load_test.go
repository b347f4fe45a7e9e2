package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathExplicitWins(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := ResolvePath("/etc/hark.conf")
	require.NoError(t, err)
	require.Equal(t, "/etc/hark.conf", path)
}

func TestResolvePathUsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/xdg", "hark", "config.conf"), path)
}

func TestResolvePathFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path, err := ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "hark", "config.conf"), path)
}

func TestLoadMissingFileUsesDefaultsWithWarning(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	require.NoError(t, err)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.Len(t, loaded.Warnings, 1)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadParsesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.conf")
	content := `{
	// quiet room
	"capture": { "threshold": 150 },
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, 150, loaded.Config.Capture.Threshold)
}

func TestLoadSurfacesParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.conf")
	require.NoError(t, os.WriteFile(path, []byte(`{"capture": {"threshold": 0}}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "capture.threshold")
}
