/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logging_test.go
Description: Tests for the logging system. Covers logger creation, formats,
file output, cleanup and the validator formatter prefixes.
*/

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoggerCreation tests logger creation with different configurations
func TestLoggerCreation(t *testing.T) {
	logger, err := NewLogger(nil)
	require.NoError(t, err)
	assert.Empty(t, logger.FilePath())
	require.NoError(t, logger.Close())

	dir := t.TempDir()
	logger, err = NewLogger(&LoggerConfig{
		Level:     LogLevelDebug,
		Format:    LogFormatJSON,
		OutputDir: dir,
		MaxFiles:  5,
		Console:   &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(logger.FilePath()), "micval_"))
	assert.FileExists(t, logger.FilePath())
	require.NoError(t, logger.Close())
}

// TestLoggerConfigValidation tests invalid configurations
func TestLoggerConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config LoggerConfig
	}{
		{"bad format", LoggerConfig{Level: LogLevelInfo, Format: "xml"}},
		{"bad level", LoggerConfig{Level: "loud", Format: LogFormatText}},
		{"no max files", LoggerConfig{Level: LogLevelInfo, Format: LogFormatText, OutputDir: "logs"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLogger(&tt.config)
			assert.Error(t, err)
		})
	}
}

// TestJSONOutput tests structured comparison logging
func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: LogFormatJSON, Console: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.LogComparison("ds-1", 4, 1, 0, 2*time.Millisecond)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Comparison completed", entry["msg"])
	assert.Equal(t, "ds-1", entry["dataset_id"])
	assert.Equal(t, float64(4), entry["observations"])
	assert.Equal(t, "info", entry["level"])
}

// TestUnresolvedBreakpointsWarn tests that unclassifiable rows raise the level
func TestUnresolvedBreakpointsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: LogFormatJSON, Console: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.LogComparison("ds-2", 10, 0, 3, time.Millisecond)
	assert.Contains(t, buf.String(), `"level":"warning"`)
}

// TestLevelFiltering tests that debug output is dropped at info level
func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&LoggerConfig{Level: LogLevelWarning, Format: LogFormatText, Console: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.LogBreakpoints("table.yaml", 5, 2)
	assert.Empty(t, buf.String())

	logger.LogRejected(errors.New("tolerate_censoring must be one of strict gold_standard test both"))
	assert.Contains(t, buf.String(), "Comparison rejected")
}

// TestValidationFormatter tests prefixes and sorted fields
func TestValidationFormatter(t *testing.T) {
	f := &ValidationFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Message: "Export written",
		Data:    logrus.Fields{"records": 4, "format": "csv", "path": "out.csv"},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "INFO [EXPORT] Export written format=csv path=out.csv records=4\n", string(out))

	entry.Message = "Comparison rejected"
	entry.Data = logrus.Fields{}
	out, err = f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "INFO [REJECT] Comparison rejected\n", string(out))
}

// TestMessagePrefix tests prefix selection
func TestMessagePrefix(t *testing.T) {
	assert.Equal(t, "COMPARE", messagePrefix("Comparison completed"))
	assert.Equal(t, "BREAKPOINTS", messagePrefix("Breakpoints loaded"))
	assert.Equal(t, "PLOT", messagePrefix("Plot rendered"))
	assert.Equal(t, "STATS", messagePrefix("Validation metrics"))
	assert.Equal(t, "", messagePrefix("something else"))
}

// TestCleanup tests removal of the oldest log files
func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"micval_2024-01-01_00-00-00.log", "micval_2024-01-02_00-00-00.log", "micval_2024-01-03_00-00-00.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	logger, err := NewLogger(&LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatCustom,
		OutputDir: dir,
		MaxFiles:  2,
		Console:   &bytes.Buffer{},
	})
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	files, err := filepath.Glob(filepath.Join(dir, "micval_*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NoFileExists(t, filepath.Join(dir, "micval_2024-01-01_00-00-00.log"))
	assert.NoFileExists(t, filepath.Join(dir, "micval_2024-01-02_00-00-00.log"))
}
