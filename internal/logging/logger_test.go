package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initWorkspace(t *testing.T, loggingJSON string) string {
	t.Helper()
	ws := t.TempDir()
	if loggingJSON != "" {
		dir := filepath.Join(ws, ".dreamgate")
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "logging.json"), []byte(loggingJSON), 0644))
	}
	t.Cleanup(CloseAll)
	return ws
}

func TestInitializeProductionMode(t *testing.T) {
	ws := initWorkspace(t, "")
	require.NoError(t, Initialize(ws))

	// No config file means no log output at all.
	Get(CategoryDream).Info("should go nowhere")
	_, err := os.Stat(filepath.Join(ws, ".dreamgate", "logs"))
	assert.True(t, os.IsNotExist(err))
}

func TestInitializeDebugMode(t *testing.T) {
	ws := initWorkspace(t, `{"debug_mode": true, "level": "debug"}`)
	require.NoError(t, Initialize(ws))

	Get(CategoryCache).Info("warmed up")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(ws, ".dreamgate", "logs"))
	require.NoError(t, err)
	var found bool
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".log" {
			found = true
		}
	}
	assert.True(t, found, "debug mode writes category log files")
}

func TestCategoryToggle(t *testing.T) {
	ws := initWorkspace(t, `{"debug_mode": true, "categories": {"cache": false}}`)
	require.NoError(t, Initialize(ws))

	assert.False(t, IsCategoryEnabled(CategoryCache))
	assert.True(t, IsCategoryEnabled(CategoryDream))
}

func TestInitializeRequiresWorkspace(t *testing.T) {
	assert.Error(t, Initialize(""))
}
