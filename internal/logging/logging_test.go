package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/internal/config"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tutordash.log")
	logger, closeFn, err := New(config.Log{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("contacts fetched", zap.Int("count", 3))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "contacts fetched", entry["msg"])
	assert.Equal(t, float64(3), entry["count"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_RejectsBadLevelAndFormat(t *testing.T) {
	_, _, err := New(config.Log{Level: "loud", Format: "json"})
	assert.Error(t, err)

	_, _, err = New(config.Log{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNew_DevelopmentConsole(t *testing.T) {
	logger, closeFn, err := New(config.Log{Level: "debug", Format: "console", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
	assert.NoError(t, closeFn())
}
