package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, types.FormatCSV, cfg.TargetFormat())
	assert.Equal(t, types.CleaningChoice{}, cfg.CleaningChoice())
	assert.Equal(t, 5, cfg.Preview.Rows)
	assert.Equal(t, 2, cfg.Chart.Columns)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sweeper"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sweeper", "config.yaml"), []byte("workers: 9\n"), 0o644))

	assert.Equal(t, filepath.Join(dir, "sweeper", "config.yaml"), DefaultPath())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Workers)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
output:
  dir: /tmp/out
  format: excel
cleaning:
  remove_duplicates: true
  fill_missing: true
preview:
  rows: 10
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, types.FormatExcel, cfg.TargetFormat())
	assert.Equal(t, types.CleaningChoice{RemoveDuplicates: true, FillMissingNumeric: true}, cfg.CleaningChoice())
	assert.Equal(t, 10, cfg.Preview.Rows)
	assert.Equal(t, "json", cfg.Log.Format)
	// Keys left out keep their defaults.
	assert.Equal(t, 2, cfg.Chart.Columns)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "output:\n  format: excel\nworkers: 2\n")
	t.Setenv("SWEEPER_OUTPUT_FORMAT", "csv")
	t.Setenv("SWEEPER_WORKERS", "8")
	t.Setenv("SWEEPER_FILL_FIRST", "true")
	t.Setenv("SWEEPER_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, types.FormatCSV, cfg.TargetFormat())
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Cleaning.FillFirst)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_BadEnv(t *testing.T) {
	path := writeConfig(t, "")

	t.Run("bool", func(t *testing.T) {
		t.Setenv("SWEEPER_REMOVE_DUPLICATES", "maybe")
		_, err := Load(path)
		assert.ErrorContains(t, err, "SWEEPER_REMOVE_DUPLICATES")
	})

	t.Run("int", func(t *testing.T) {
		t.Setenv("SWEEPER_PREVIEW_ROWS", "five")
		_, err := Load(path)
		assert.ErrorContains(t, err, "SWEEPER_PREVIEW_ROWS")
	})
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "workers: [1, 2\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "config parse")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = "pdf"
	cfg.Preview.Rows = -1
	cfg.Chart.Columns = 0
	cfg.Workers = 0
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"output.format", "preview.rows", "chart.columns", "workers", "log.level", "log.format"} {
		assert.ErrorContains(t, err, field)
	}
}
