package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cheat_config.json")

	c, err := Load(path)
	require.NoError(t, err)
	require.True(t, c.CheatsEnabled)
	require.Equal(t, "Cheats/", c.SaveLastDirectory)
	require.FileExists(t, path)
}

func TestLoadPreservesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cheat_config.json")
	raw := `{"cheats_enabled": false, "log_level": 3, "save_last_directory": "Saved", "additional_search_paths": ["a", "b"], "future_feature": {"on": true}}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.False(t, c.CheatsEnabled)
	require.Equal(t, 3, c.LogLevel)
	require.Equal(t, "Saved/", c.SaveLastDirectory)
	require.Equal(t, []string{"a", "b"}, c.AdditionalSearchPaths)
	require.Contains(t, c.Extra, "future_feature")

	require.NoError(t, c.Save())
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Contains(t, reloaded.Extra, "future_feature")
}

func TestSearchPathsFoldsInSaveLastDir(t *testing.T) {
	c := Default()
	c.AdditionalSearchPaths = []string{"Scripts"}
	c.SaveLastDirectory = "Cheats/"

	require.Equal(t, []string{"Scripts", "Cheats/"}, c.SearchPaths())
}
