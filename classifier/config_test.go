package classifier

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "tpa.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Log.Backend)
	assert.Equal(t, "classifications.log", cfg.Log.Path)
	assert.Equal(t, 900, cfg.Webshots.Width)
	assert.Equal(t, 600, cfg.Webshots.Height)
	assert.Equal(t, 30*time.Second, cfg.Webshots.Timeout)
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tpa.yaml", `
dataset: data/tpa.csv
catalogue: data/psrcat.csv
log:
  backend: SQLite
webshots:
  urlTemplate: https://example.org/{jname}.html
  timeout: 5s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "data/tpa.csv", cfg.Dataset)
	assert.Equal(t, BackendSQLite, cfg.Log.Backend)
	assert.Equal(t, "classifications.db", cfg.Log.Path)
	assert.Equal(t, 5*time.Second, cfg.Webshots.Timeout)
	assert.Equal(t, "https://example.org/J0437-4715.html", cfg.WebshotURL("J0437-4715"))
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tpa.yaml", "dataset: [unterminated\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "decode config")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "tpa.yaml")
	cfg := Config{Dataset: "a.csv", Username: "ann"}
	cfg.Webshots.Timeout = 12 * time.Second
	require.NoError(t, SaveConfig(path, cfg))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	back, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "a.csv", back.Dataset)
	assert.Equal(t, "ann", back.Username)
	assert.Equal(t, 12*time.Second, back.Webshots.Timeout)
}
