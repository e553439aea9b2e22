package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, level, file string) (*Logger, string) {
	t.Helper()
	dir := t.TempDir()
	logger, err := New(Config{Level: level, Dir: dir, Filename: file})
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })
	return logger, filepath.Join(dir, file)
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	time.Sleep(10 * time.Millisecond)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := New(Config{
		Level:    "debug",
		Dir:      tmpDir,
		Filename: "test.log",
	})

	assert.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, logger.Close())
}

func TestLogger_CloseTwice(t *testing.T) {
	logger, _ := newTestLogger(t, "info", "twice.log")
	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestLogger_Info(t *testing.T) {
	logger, path := newTestLogger(t, "info", "info.log")

	logger.Info("test info message")

	assert.Contains(t, readLog(t, path), "test info message")
}

func TestLogger_FormatArgs(t *testing.T) {
	logger, path := newTestLogger(t, "debug", "args.log")

	logger.Info("generated %d icons in %s", 7, "12ms")

	content := readLog(t, path)
	assert.Contains(t, content, "generated 7 icons in 12ms")
}

func TestLogger_MapFields(t *testing.T) {
	logger, path := newTestLogger(t, "debug", "fields.log")

	logger.Info("icon request", map[string]interface{}{"size": 256, "client": "127.0.0.1"})

	content := readLog(t, path)
	assert.Contains(t, content, `"size":256`)
	assert.Contains(t, content, `"client":"127.0.0.1"`)
}

func TestLogger_Tags(t *testing.T) {
	logger, path := newTestLogger(t, "debug", "tags.log")

	logger.InfoTag("HTTP", "listening on %d", 8080)
	logger.WarnTag("限流", "client blocked")

	content := readLog(t, path)
	assert.Contains(t, content, "[HTTP] listening on 8080")
	assert.Contains(t, content, "[限流] client blocked")
}

func TestLogger_LogLevelFiltering(t *testing.T) {
	logger, path := newTestLogger(t, "error", "filter.log")

	logger.Debug("this should not appear")
	logger.Info("this should not appear either")
	logger.Warn("this should not appear")
	logger.Error("this should appear")

	content := readLog(t, path)
	assert.NotContains(t, content, "this should not appear")
	assert.Contains(t, content, "this should appear")
}

func TestLogger_DebugEnabledCaseInsensitive(t *testing.T) {
	logger, path := newTestLogger(t, "DEBUG", "debug.log")

	logger.Debug("debug line")

	assert.Contains(t, readLog(t, path), "debug line")
}

func TestFormatLog(t *testing.T) {
	assert.Equal(t, "[引导] 服务已启动", FormatLog("引导", "服务已启动"))
	assert.Equal(t, "plain", FormatLog("", "plain"))
	assert.Equal(t, "[HTTP] already tagged", FormatLog("图标", "[HTTP] already tagged"))
}

func TestContainsFormatPlaceholders(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"hello world", false},
		{"hello %s", true},
		{"value is %d", true},
		{"%[1]s argument", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, containsFormatPlaceholders(tt.input), "input: %s", tt.input)
	}
}

func TestCustomTextHandler_Enabled(t *testing.T) {
	handler := &CustomTextHandler{
		writer: &strings.Builder{},
		level:  slog.LevelInfo,
	}

	assert.True(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
}

func TestCustomTextHandler_ModuleFormat(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(&CustomTextHandler{writer: &sb, level: slog.LevelDebug})

	logger.Info("[图标] bundle ready")
	logger.Warn("plain warning")

	out := sb.String()
	assert.Contains(t, out, "[图标] bundle ready")
	assert.Contains(t, out, "[警告]")
}

func TestConfigLogLevelToSlogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, configLogLevelToSlogLevel(tt.input), "input: %s", tt.input)
	}
}

func TestLogger_ConcurrentLogging(t *testing.T) {
	logger, path := newTestLogger(t, "debug", "concurrent.log")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			logger.Info("concurrent message number", idx)
		}(i)
	}
	wg.Wait()

	content := readLog(t, path)
	assert.Equal(t, 10, strings.Count(content, "concurrent message number"))
}

func TestLogger_CleanOldLogs(t *testing.T) {
	logger, path := newTestLogger(t, "info", "server.log")
	dir := filepath.Dir(path)

	old := time.Now().AddDate(0, 0, -(LogRetentionDays + 2)).Format("2006-01-02")
	recent := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	oldFile := filepath.Join(dir, "server-"+old+".log")
	recentFile := filepath.Join(dir, "server-"+recent+".log")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(recentFile, []byte("recent"), 0o644))

	logger.cleanOldLogs()

	_, err := os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(recentFile)
	assert.NoError(t, err)
}

func TestLogger_NilSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.InfoTag("HTTP", "nothing")
		logger.Error("nothing")
	})
}
