package logging_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factoryplan/aps-go/internal/infrastructure/config"
	"github.com/factoryplan/aps-go/internal/infrastructure/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("bogus"))
}

func TestNewLogger_FileOutputWritesToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aps.log")
	logger, err := logging.NewLogger(&config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Info("daemon started", "workers", 4)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"daemon started"`)
	assert.Contains(t, string(data), `"workers":4`)
}

func TestNewLogger_SuppressesBelowConfiguredLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aps.log")
	logger, err := logging.NewLogger(&config.LoggingConfig{
		Level:    "warn",
		Format:   "text",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Info("not recorded")
	logger.Warn("recorded")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "not recorded")
	assert.Contains(t, string(data), "recorded")
}

func TestNewLogger_FileOutputRequiresPath(t *testing.T) {
	_, err := logging.NewLogger(&config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "file",
	})
	assert.Error(t, err)
}
