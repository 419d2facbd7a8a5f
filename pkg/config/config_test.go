package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/qcreport/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "qcreport_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"."}, cfg.Search.Roots)
	assert.Equal(t, int64(1_000_000), cfg.Search.SizeLimitBytes())
	assert.Equal(t, config.DefaultCleanExts, cfg.Search.CleanExts)
	assert.Equal(t, 50, cfg.Plots.FlatThreshold)
	assert.Equal(t, config.BackendPayload, cfg.Plots.InteractiveBackend)
	assert.Equal(t, "tsv", cfg.Output.DataFormat)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
search:
  roots: ["/data/run1", "/data/run2"]
  ignore_files: ["*.tmp"]
  file_size_limit: "50MiB"
  clean_exts: [".log", "_R1"]
  prepend_dirs: true

plots:
  flat_threshold: 10
  interactive_backend: echarts

output:
  directory: "/tmp/out"
  data_format: yaml
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/data/run1", "/data/run2"}, cfg.Search.Roots)
	assert.Equal(t, []string{"*.tmp"}, cfg.Search.IgnoreFiles)
	assert.Equal(t, int64(50*1024*1024), cfg.Search.SizeLimitBytes())
	assert.Equal(t, []string{".log", "_R1"}, cfg.Search.CleanExts)
	assert.True(t, cfg.Search.PrependDirs)
	assert.Equal(t, 10, cfg.Plots.FlatThreshold)
	assert.Equal(t, config.BackendECharts, cfg.Plots.InteractiveBackend)
	assert.Equal(t, "/tmp/out", cfg.Output.Directory)
	assert.Equal(t, "yaml", cfg.Output.DataFormat)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("QCREPORT_PLOTS_FLAT_THRESHOLD", "75")
	t.Setenv("QCREPORT_SEARCH_FILE_SIZE_LIMIT", "2MB")
	t.Setenv("QCREPORT_LOGGING_LEVEL", "debug")

	cfg, err := config.LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.Plots.FlatThreshold)
	assert.Equal(t, int64(2_000_000), cfg.Search.SizeLimitBytes())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "size limit", content: "search:\n  file_size_limit: lots\n", wantErr: config.ErrInvalidSizeLimit},
		{name: "threshold", content: "plots:\n  flat_threshold: 0\n", wantErr: config.ErrInvalidThreshold},
		{name: "backend", content: "plots:\n  interactive_backend: flash\n", wantErr: config.ErrUnknownBackend},
		{name: "format", content: "output:\n  data_format: xls\n", wantErr: config.ErrUnknownFormat},
		{name: "log format", content: "logging:\n  format: xml\n", wantErr: config.ErrUnknownLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(1_000_000), cfg.Search.SizeLimitBytes())

	cfg.Search.CleanExts[0] = "changed"
	assert.Equal(t, ".gz", config.DefaultCleanExts[0])
}
