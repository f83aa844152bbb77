package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathsAllFields(t *testing.T) {
	t.Setenv("AGENTLINK_HOME", "")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".agentlink"), paths.Base)
	assert.Equal(t, filepath.Join(home, ".agentlink", "settings.yaml"), paths.Settings)
	assert.Equal(t, filepath.Join(home, ".agentlink", "history.db"), paths.History)
	assert.Equal(t, filepath.Join(home, ".agentlink", "logs"), paths.Logs)
}

func TestResolvePathsCustomHome(t *testing.T) {
	t.Setenv("AGENTLINK_HOME", "/tmp/testal")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/testal", paths.Base)
	assert.Equal(t, "/tmp/testal/settings.yaml", paths.Settings)
	assert.Equal(t, "/tmp/testal/history.db", paths.History)
	assert.Equal(t, "/tmp/testal/logs", paths.Logs)
}

func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()
	paths := Paths{
		Base: filepath.Join(tmpDir, "base"),
		Logs: filepath.Join(tmpDir, "base", "logs"),
	}

	require.NoError(t, paths.EnsureDirs())
	require.NoError(t, paths.EnsureDirs()) // second call should succeed

	for _, dir := range []string{paths.Base, paths.Logs} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
